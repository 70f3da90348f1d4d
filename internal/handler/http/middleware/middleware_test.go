package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
)

func protected(svc jwt.Service) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		businessID, err := BusinessID(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(businessID))
	})
	return jwtauth.Verifier(svc.JWTAuth())(AuthRequired(RequireManager(ok)))
}

func TestAuthAndRoleMiddleware(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "5m")
	ownerToken, _, _ := svc.GenerateAccessToken("u-1", "biz-1", employee.RoleOwner)
	managerToken, _, _ := svc.GenerateAccessToken("u-2", "biz-1", employee.RoleManager)
	staffToken, _, _ := svc.GenerateAccessToken("u-3", "biz-1", employee.RoleStaff)
	noBusinessToken, _, _ := svc.GenerateAccessToken("u-4", "", employee.RoleOwner)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"owner", ownerToken, http.StatusOK},
		{"manager", managerToken, http.StatusOK},
		{"staff", staffToken, http.StatusForbidden},
		{"no business", noBusinessToken, http.StatusForbidden},
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			protected(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "biz-1", rec.Body.String())
			}
		})
	}
}
