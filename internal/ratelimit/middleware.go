package ratelimit

import (
	"net"
	"net/http"

	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
)

type KeyFunc func(r *http.Request) string

// ClientIP 搭配 chi middleware.RealIP 使用時 RemoteAddr 已是真實 IP
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// NewRateLimitMiddleware 超過限制時回傳 429
func NewRateLimitMiddleware(limiter *TokenBucket, keyFn KeyFunc) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(keyFn(r)) {
				w.Header().Set("Retry-After", "1")
				api.ErrorJSON(w, int(er.TooManyRequestsCode), nil, er.ErrStrMap[er.TooManyRequestsCode])
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
