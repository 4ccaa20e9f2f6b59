package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/storefront-go/apperror"
)

// Authenticate verifies the bearer token and stores its claims in the request
// context. A missing token is a 401; any token that fails verification
// (tampered, malformed or expired) is a uniform 403.
func Authenticate(tokens TokenVerifier, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				WriteError(w, r, apperror.NewUnauthorizedError("Authentication token required.", nil).
					WithCode(apperror.CodeMissingToken))
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, ErrTokenExpired) {
					reason = "expired"
				}
				logger.DebugContext(r.Context(), "token rejected", "reason", reason, "error", err)
				WriteError(w, r, apperror.NewForbiddenError("Invalid or expired token.", nil).
					WithCode(apperror.CodeInvalidToken))
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin admits only callers whose verified claims carry the admin
// role. It must be mounted after Authenticate.
func RequireAdmin() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				// Authenticate was not mounted in front of this route.
				WriteError(w, r, apperror.NewInternalError("authorization evaluated without authentication", nil))
				return
			}
			if err := authorizeAdmin(claims); err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authorizeAdmin(claims *Claims) error {
	if !claims.IsAdmin {
		return apperror.NewForbiddenError("Forbidden: Admin access required.", nil).
			WithCode(apperror.CodeNotAdmin)
	}
	return nil
}

// bearerToken extracts <token> from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
