package auth

import "github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"

// Claims is the identity carried by a verified access token.
type Claims struct {
	UserID     string
	BusinessID string
	Role       employee.Role
}

// ClaimsFromMap reads the access token claims. Tokens that are not access tokens
// or carry no business are rejected.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	if tokenType, ok := m["type"].(string); !ok || tokenType != "access" {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	c.UserID, _ = m["user_id"].(string)

	businessID, ok := m["business_id"].(string)
	if !ok || businessID == "" {
		return Claims{}, ErrBusinessIDRequired
	}
	c.BusinessID = businessID

	role, _ := m["role"].(string)
	c.Role = employee.Role(role)

	return c, nil
}
