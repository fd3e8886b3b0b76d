package http

import (
	"net/http"

	"github.com/fjod/storefront/internal/auth"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token and puts the user id in the
// request context.
func AuthMiddleware(verifier *auth.Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				respondError(w, log, http.StatusUnauthorized, "unauthorized", err.Error(), "")
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				respondError(w, log, http.StatusUnauthorized, "unauthorized", "invalid or expired token", "")
				return
			}

			ctx := auth.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
