package user

import (
	"net/http"
	"strings"
	"time"

	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,password_strength"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileReq struct {
	Username       *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email          *string `json:"email" validate:"omitempty,email"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,url,max=2048"`
}

// Register handles POST /v1/users/register
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	u, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, u)
}

// Login handles POST /v1/users/login
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	token, u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(h.service.tokenTTL / time.Second),
		"user":         u,
	}, nil)
}

// Me handles GET /v1/me
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetByID(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// Profile handles GET /v1/users/{id}
func (h *HTTPHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u.Public(), nil)
}

// UpdateProfile handles PUT /v1/users/{id}. Unknown fields are rejected.
func (h *HTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r), httpx.RoleFrom(r), ProfileUpdate{
		Username:       req.Username,
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}
