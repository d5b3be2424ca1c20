package middleware

import (
	"fmt"
	"net/http"

	"github.com/cloo-solutions/reposcope/internal/api"
)

// MaxBodyBytes rejects bodies that declare more than limit bytes and caps
// streamed bodies at limit. A non-positive limit disables the check.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		message := fmt.Sprintf("request body too large (limit %d bytes)", limit)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, message)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
