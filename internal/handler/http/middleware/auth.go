package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/auth"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/handler/http/response"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/jwt"
)

// AuthRequired rejects requests without a verified access token. It runs after
// jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		if !jwt.IsAccessToken(claims) {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
