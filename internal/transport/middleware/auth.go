package middleware

import (
	"net/http"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/pkg/logger"
)

// UserContext tags the context logger with the authenticated caller. It must run
// after auth.Guards.Authenticated or Optional; anonymous requests pass untouched.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := internal.UserIDFromContext(r.Context())
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "userID", userID, "userType", internal.UserTypeFromContext(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
