package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type claimsKey struct{}

// AuthRequired accepts verified access tokens that carry a business and stores
// their claims in the request context.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		c, err := auth.ClaimsFromMap(claims)
		if err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), c)))
	}
	return http.HandlerFunc(hfn)
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by AuthRequired.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return c, ok
}

// BusinessID returns the tenant of the authenticated request.
func BusinessID(ctx context.Context) (string, error) {
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.BusinessID == "" {
		return "", auth.ErrBusinessIDRequired
	}
	return c.BusinessID, nil
}
