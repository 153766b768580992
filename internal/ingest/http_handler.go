package ingest

import (
	"net/http"

	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type batchReq struct {
	ISBNs []string `json:"isbns" validate:"required,min=1,max=50,dive,isbn"`
}

// ImportBatch handles POST /v1/books/import/batch (admin)
func (h *HTTPHandler) ImportBatch(w http.ResponseWriter, r *http.Request) {
	var req batchReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	isbns := make([]string, len(req.ISBNs))
	for i, raw := range req.ISBNs {
		isbns[i] = httpx.NormalizeISBN(raw)
	}

	report, err := h.svc.Run(r.Context(), isbns)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, report, nil)
}
