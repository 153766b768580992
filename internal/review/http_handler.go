package review

import (
	"net/http"
	"strconv"
	"time"

	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createReviewReq struct {
	BookID string `json:"book_id" validate:"required,uuid"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Text   string `json:"text" validate:"notblank,min=10,max=5000"`
}

type updateReviewReq struct {
	Rating *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Text   *string `json:"text" validate:"omitempty,min=10,max=5000"`
}

type voteReq struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

type reviewResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	BookID          string    `json:"book_id"`
	Rating          int       `json:"rating"`
	Text            string    `json:"text"`
	HelpfulVotes    int       `json:"helpful_votes"`
	NotHelpfulVotes int       `json:"not_helpful_votes"`
	Author          AuthorRef `json:"author"`
	Book            BookRef   `json:"book"`
	MyVote          *bool     `json:"my_vote,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// toResponse renders a review for viewerID. my_vote is only set when the
// viewer has voted on it.
func toResponse(r *Review, viewerID string) reviewResponse {
	resp := reviewResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		BookID:          r.BookID,
		Rating:          r.Rating,
		Text:            r.Text,
		HelpfulVotes:    r.HelpfulVotes(),
		NotHelpfulVotes: r.NotHelpfulVotes(),
		Author:          r.Author,
		Book:            r.Book,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if viewerID != "" {
		if helpful, ok := r.Votes.VoteOf(viewerID); ok {
			resp.MyVote = &helpful
		}
	}
	return resp
}

func toResponses(reviews []Review, viewerID string) []reviewResponse {
	out := make([]reviewResponse, len(reviews))
	for i := range reviews {
		out[i] = toResponse(&reviews[i], viewerID)
	}
	return out
}

// Create handles POST /v1/reviews
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReviewReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	created, err := h.service.Create(r.Context(), CreateInput{
		AuthorID: httpx.UserIDFrom(r),
		BookID:   req.BookID,
		Rating:   req.Rating,
		Text:     req.Text,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, toResponse(created, httpx.UserIDFrom(r)))
}

// Get handles GET /v1/reviews/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	rev, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResponse(rev, httpx.UserIDFrom(r)), nil)
}

// Update handles PUT and PATCH /v1/reviews/{id}. Omitted fields keep their
// current value.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateReviewReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	updated, err := h.service.Update(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r), UpdateInput{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResponse(updated, httpx.UserIDFrom(r)), nil)
}

// Delete handles DELETE /v1/reviews/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r)); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// Vote handles POST /v1/reviews/{id}/vote
func (h *HTTPHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req voteReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	voted, err := h.service.Vote(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r), *req.Helpful)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResponse(voted, httpx.UserIDFrom(r)), nil)
}

// ListByBook handles GET /v1/books/{id}/reviews
func (h *HTTPHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	page := httpx.ParsePage(r)
	reviews, total, err := h.service.ListByBook(r.Context(), r.PathValue("id"), page.Number, page.Size)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResponses(reviews, httpx.UserIDFrom(r)), httpx.PageMeta(page, total))
}

// ListByUser handles GET /v1/users/{id}/reviews
func (h *HTTPHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	page := httpx.ParsePage(r)
	reviews, total, err := h.service.ListByUser(r.Context(), r.PathValue("id"), page.Number, page.Size)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResponses(reviews, httpx.UserIDFrom(r)), httpx.PageMeta(page, total))
}

// ListLatest handles GET /v1/reviews/latest. A missing or unparsable limit
// means DefaultLatestLimit.
func (h *HTTPHandler) ListLatest(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	reviews, err := h.service.ListLatest(r.Context(), limit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, toResponses(reviews, httpx.UserIDFrom(r)), nil)
}
