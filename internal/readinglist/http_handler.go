package readinglist

import (
	"net/http"

	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type addReq struct {
	BookID string `json:"book_id" validate:"required,uuid"`
}

type favoriteResponse struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
}

// Add handles POST /v1/users/{id}/favorites
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	userID := r.PathValue("id")
	if err := h.service.Add(r.Context(), userID, httpx.UserIDFrom(r), req.BookID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, favoriteResponse{UserID: userID, BookID: req.BookID})
}

// Remove handles DELETE /v1/users/{id}/favorites/{bookId}
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r), r.PathValue("bookId")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// List handles GET /v1/users/{id}/favorites
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page := httpx.ParsePage(r)
	entries, total, err := h.service.List(r.Context(), r.PathValue("id"), page.Number, page.Size)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSONSuccess(w, r, entries, httpx.PageMeta(page, total))
}
