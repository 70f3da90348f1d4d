package auth

import (
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsFromMap(t *testing.T) {
	claims, err := ClaimsFromMap(map[string]interface{}{
		"type": "access", "user_id": "u-1", "business_id": "biz-1", "role": "Owner",
	})
	require.NoError(t, err)
	assert.Equal(t, employee.RoleOwner, claims.Role)
	assert.Equal(t, "biz-1", claims.BusinessID)

	_, err = ClaimsFromMap(map[string]interface{}{"type": "refresh", "business_id": "biz-1"})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ClaimsFromMap(map[string]interface{}{"type": "access", "business_id": ""})
	assert.ErrorIs(t, err, ErrBusinessIDRequired)
}
