package middleware

import (
	"net/http"
	"strings"

	"go-shop-api/internal/reqctx"
)

// BearerToken copies the Authorization bearer token and the client address
// into the request context. It never rejects a request: whether an operation
// needs a token is decided per GraphQL field by the guard.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := reqctx.WithClientIP(r.Context(), extractClientIP(r))
		if token, ok := parseBearer(r.Header.Get("Authorization")); ok {
			ctx = reqctx.WithBearerToken(ctx, token)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseBearer(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
