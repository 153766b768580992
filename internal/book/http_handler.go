package book

import (
	"net/http"
	"strconv"
	"strings"

	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type importReq struct {
	ISBN string `json:"isbn" validate:"required,isbn"`
}

// List handles GET /v1/books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Genre:  strings.TrimSpace(query.Get("genre")),
		Search: strings.TrimSpace(query.Get("search")),
	}

	var details []httpx.ErrorDetail
	if raw := query.Get("min_rating"); raw != "" {
		if val, err := strconv.ParseFloat(raw, 64); err == nil {
			params.MinRating = &val
		} else {
			details = append(details, httpx.ErrorDetail{Field: "min_rating", Message: "min_rating must be a number"})
		}
	}
	if raw := query.Get("published_year"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			params.PublishedYear = &val
		} else {
			details = append(details, httpx.ErrorDetail{Field: "published_year", Message: "published_year must be an integer"})
		}
	}
	field, desc, err := ParseSort(query.Get("sort"))
	if err != nil {
		details = append(details, httpx.ErrorDetail{Field: "sort", Message: err.Error()})
	}
	if len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", details)
		return
	}
	params.SortField, params.Desc = field, desc

	page := httpx.ParsePage(r)
	params.Limit = page.Size
	params.Offset = page.Offset()

	books, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, httpx.PageMeta(page, total))
}

// Get handles GET /v1/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return Input{}, false
	}
	if details := httpx.ValidateStruct(in); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return Input{}, false
	}
	if in.ISBN != nil {
		isbn := httpx.NormalizeISBN(*in.ISBN)
		in.ISBN = &isbn
	}
	return in, true
}

// Create handles POST /v1/books (admin)
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}

// Update handles PUT /v1/books/{id} (admin)
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	b, err := h.service.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /v1/books/{id} (admin)
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// Import handles POST /v1/books/import (admin)
func (h *HTTPHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	b, err := h.service.Import(r.Context(), httpx.NormalizeISBN(req.ISBN))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}
