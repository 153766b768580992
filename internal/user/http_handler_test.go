package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/httpx"
	"bookreview/internal/platform/apperr"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/testutil"
)

func TestHTTPHandler_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/users/register",
			strings.NewReader(`{"email":"reader@example.com","username":"reader","password":"Sup3r$ecret"}`))
		NewHTTPHandler(svc).Register(w, r)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
		assert.Contains(t, w.Body.String(), testUserID)
	})

	t.Run("weak password", func(t *testing.T) {
		svc, _ := newTestService(t)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(t, http.MethodPost, "/v1/users/register",
			`{"email":"reader@example.com","username":"reader","password":"weak"}`, "")
		NewHTTPHandler(svc).Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "password", env.Error.Details[0].Field)
	})

	t.Run("duplicate", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperr.Conflict("email is already registered"))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/users/register",
			strings.NewReader(`{"email":"reader@example.com","username":"reader","password":"Sup3r$ecret"}`))
		NewHTTPHandler(svc).Register(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHTTPHandler_Login(t *testing.T) {
	hash, err := crypto.HashPassword("Sup3r$ecret")
	require.NoError(t, err)

	svc, repo := newTestService(t)
	repo.EXPECT().GetByEmail(gomock.Any(), "reader@example.com").
		Return(User{ID: testUserID, Email: "reader@example.com", PasswordHash: hash, Role: crypto.RoleUser}, nil)

	w := httptest.NewRecorder()
	r := testutil.NewRequest(t, http.MethodPost, "/v1/users/login",
		map[string]string{"email": "reader@example.com", "password": "Sup3r$ecret"}, "")
	NewHTTPHandler(svc).Login(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	testutil.DecodeData(t, w, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
}

func TestHTTPHandler_Me(t *testing.T) {
	svc, repo := newTestService(t)
	repo.EXPECT().GetByID(gomock.Any(), testUserID).Return(sampleUser(), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	r = r.WithContext(httpx.ContextWithUser(r.Context(), testUserID, crypto.RoleUser))
	NewHTTPHandler(svc).Me(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reader@example.com")
}

func TestHTTPHandler_ProfileHidesEmail(t *testing.T) {
	svc, repo := newTestService(t)
	repo.EXPECT().GetByID(gomock.Any(), testUserID).Return(sampleUser(), nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/users/{id}", NewHTTPHandler(svc).Profile)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/users/"+testUserID, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"reader"`)
	assert.NotContains(t, w.Body.String(), "reader@example.com")
}

func TestHTTPHandler_UpdateProfile(t *testing.T) {
	mux := func(svc *Service) *http.ServeMux {
		m := http.NewServeMux()
		m.HandleFunc("PUT /v1/users/{id}", NewHTTPHandler(svc).UpdateProfile)
		return m
	}
	asUser := func(r *http.Request, id, role string) *http.Request {
		return r.WithContext(httpx.ContextWithUser(r.Context(), id, role))
	}

	t.Run("updates picture", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), testUserID).Return(sampleUser(), nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(t, http.MethodPut, "/v1/users/"+testUserID,
			map[string]string{"profile_picture": "https://img.example.com/me.png"}, "")
		mux(svc).ServeHTTP(w, asUser(r, testUserID, crypto.RoleUser))

		require.Equal(t, http.StatusOK, w.Code)
		var got User
		testutil.DecodeData(t, w, &got)
		assert.Equal(t, "https://img.example.com/me.png", got.ProfilePicture)
	})

	t.Run("unknown field", func(t *testing.T) {
		svc, _ := newTestService(t)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(t, http.MethodPut, "/v1/users/"+testUserID, `{"role":"ADMIN"}`, "")
		mux(svc).ServeHTTP(w, asUser(r, testUserID, crypto.RoleUser))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc, _ := newTestService(t)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(t, http.MethodPut, "/v1/users/"+testUserID, `{"email":"nope"}`, "")
		mux(svc).ServeHTTP(w, asUser(r, testUserID, crypto.RoleUser))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("someone else's profile", func(t *testing.T) {
		svc, _ := newTestService(t)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(t, http.MethodPut, "/v1/users/"+testUserID, `{"username":"hijack"}`, "")
		mux(svc).ServeHTTP(w, asUser(r, "3c9a1f20-2222-4333-8444-000000000002", crypto.RoleUser))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
