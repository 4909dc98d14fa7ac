package middleware

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/bywater/internal/auth"
)

// memberHeader is set by the upstream auth proxy after it has verified the
// session. This service trusts it and never issues sessions itself.
const memberHeader = "X-Member-ID"

// Identity populates the request context with the authenticated member, when
// the auth proxy supplied one. Requests without the header pass through with
// no identity; handlers that need one decide what that means.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(memberHeader); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "invalid member header", http.StatusBadRequest)
				return
			}
			r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{MemberID: id}))
		}
		next.ServeHTTP(w, r)
	})
}
