package httpx

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	roleKey      contextKey = "role"
	requestIDKey contextKey = "requestID"
	loggerKey    contextKey = "logger"
)

// Identity is what the identity provider vouches for on a request.
type Identity struct {
	UserID string
	Role   string
}

// UserIDFrom retrieves the user ID from the request context.
func UserIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// RoleFrom retrieves the user role from the request context.
func RoleFrom(r *http.Request) string {
	if v, ok := r.Context().Value(roleKey).(string); ok {
		return v
	}
	return ""
}

func IdentityFrom(r *http.Request) (Identity, bool) {
	id := Identity{UserID: UserIDFrom(r), Role: RoleFrom(r)}
	return id, id.UserID != ""
}

// ContextWithUser returns a new context with the user ID and role.
func ContextWithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func ContextWithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// LoggerFrom returns the request-scoped logger, or the logrus standard
// logger when none was attached.
func LoggerFrom(r *http.Request) logrus.FieldLogger {
	if v, ok := r.Context().Value(loggerKey).(logrus.FieldLogger); ok {
		return v
	}
	return logrus.StandardLogger()
}
