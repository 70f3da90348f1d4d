package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "biz-1", employee.RoleManager)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotZero(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	m, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	claims, err := auth.ClaimsFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "biz-1", claims.BusinessID)
	assert.Equal(t, employee.RoleManager, claims.Role)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTService("secret-a", "15m").GenerateAccessToken("user-1", "biz-1", employee.RoleOwner)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", "15m").JWTAuth().Decode(token)
	assert.Error(t, err)
}

func TestJWTService_InvalidExpiration(t *testing.T) {
	_, _, err := NewJWTService("secret", "soon").GenerateAccessToken("user-1", "biz-1", employee.RoleOwner)
	assert.Error(t, err)
}
