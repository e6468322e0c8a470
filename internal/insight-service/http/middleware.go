package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/insight-service/auth"
)

type ctxKey int

const userKey ctxKey = iota

// corsMiddleware aplica o conjunto fixo de headers CORS do app e responde
// o preflight OPTIONS com 200 e corpo vazio.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware troca o bearer token por um usuário no provedor de
// identidade e injeta a identidade no contexto da requisição.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "MISSING_TOKEN", "authorization bearer token required")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		user, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrNotConfigured):
				writeError(w, http.StatusInternalServerError, "CONFIG_ERROR", "auth endpoint not configured")
			case errors.Is(err, auth.ErrInvalidToken):
				writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
			default:
				s.log.Warn("auth verify failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "identity endpoint error: "+err.Error())
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// userFrom recupera a identidade injetada pelo authMiddleware.
func userFrom(ctx context.Context) *auth.User {
	u, _ := ctx.Value(userKey).(*auth.User)
	return u
}
