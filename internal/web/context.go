package web

import (
	"net/http"

	"github.com/JonMunkholm/tableform/internal/core"
)

// requestMeta adds the client IP and User-Agent to the request context for
// the audit trail. RemoteAddr was already rewritten by TrustedRealIP.
func requestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithRequestMeta(r.Context(), core.RequestMeta{
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
