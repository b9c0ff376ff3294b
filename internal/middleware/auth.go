package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	jsoniter "github.com/json-iterator/go"

	"library-lending-service/internal/firebase"
)

// Context keys for values set by the staff middleware
type contextKey string

const (
	StaffUIDKey contextKey = "staff_uid"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// RequireStaff only lets through requests carrying a valid Firebase ID
// token whose role claim is the staff role
func RequireStaff(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Expected format: "Bearer <token>"
			authHeader := r.Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				writeAuthError(w, http.StatusUnauthorized, "Missing or malformed Authorization header.")
				return
			}

			token, err := verifier.VerifyIDToken(r.Context(), parts[1])
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid token.")
				return
			}

			if role, _ := token.Claims[firebase.StaffRoleClaim].(string); role != firebase.StaffRole {
				writeAuthError(w, http.StatusForbidden, "Staff role required.")
				return
			}

			ctx := context.WithValue(r.Context(), StaffUIDKey, token.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffUIDFromContext returns the UID of the authenticated staff member
func StaffUIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(StaffUIDKey).(string)
	return uid, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsoniter.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
