package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
)

// AuthRequired rejects requests whose verified token is not an access token scoped to a company.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := jwt.FromContext(r.Context()); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
