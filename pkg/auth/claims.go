package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID int64
	Email  string
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients. The subject
// carries the user id as a decimal string.
type AccessTokenClaims struct {
	Email string         `json:"email"`
	Role  enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the numeric user id out of the subject claim.
func (c *AccessTokenClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}
