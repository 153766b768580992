// Package testutil holds helpers shared by HTTP tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"bookreview/internal/platform/crypto"
)

// Token signs a valid one-hour access token.
func Token(t testing.TB, secret, userID, role string) string {
	t.Helper()
	token, err := crypto.GenerateToken(secret, userID, role, time.Hour)
	require.NoError(t, err)
	return token
}

// ExpiredToken signs a token that expired an hour ago.
func ExpiredToken(t testing.TB, secret, userID, role string) string {
	t.Helper()
	c := crypto.Claims{
		Sub:  userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// NewRequest builds a request with body encoded as JSON. A string body is
// sent as is. token is sent as a bearer credential when non-empty.
func NewRequest(t testing.TB, method, path string, body any, token string) *http.Request {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	r := httptest.NewRequest(method, path, rd)
	if rd != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// Envelope mirrors the response envelope with the payload left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

func DecodeEnvelope(t testing.TB, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// DecodeData unmarshals the envelope's data into dst.
func DecodeData(t testing.TB, w *httptest.ResponseRecorder, dst any) Envelope {
	t.Helper()
	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
	return env
}
