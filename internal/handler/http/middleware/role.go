package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
)

// RequirePayrollRole requires manager or owner role
func RequirePayrollRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := jwt.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !claims.Role.CanRunPayroll() {
			response.HandleError(w, jwt.ErrInsufficientAccess)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireOwner requires owner role
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := jwt.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if claims.Role != jwt.RoleOwner {
			response.HandleError(w, jwt.ErrInsufficientAccess)
			return
		}

		next.ServeHTTP(w, r)
	})
}
