package users

import (
	"strings"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
)

// Profile is what the API returns for a user. The password hash never
// leaves the repository.
type Profile struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       *string    `json:"phone"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ProfileOf(u *models.User) *Profile {
	if u == nil {
		return nil
	}
	p := Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	return &p
}

// NewUser is a registration already validated and hashed by the auth
// service. A nil IsActive creates an active account and an unknown role
// falls back to a regular customer.
type NewUser struct {
	Email        string
	PasswordHash string
	Name         string
	Phone        *string
	Role         enums.UserRole
	IsActive     *bool
}

// ProfilePatch changes only the non-nil fields.
type ProfilePatch struct {
	Name  *string
	Phone *string
}

func (n NewUser) ToModel() *models.User {
	u := &models.User{
		Email:        NormalizeEmail(n.Email),
		PasswordHash: n.PasswordHash,
		Name:         strings.TrimSpace(n.Name),
		Phone:        n.Phone,
		Role:         enums.UserRoleUser,
		IsActive:     n.IsActive == nil || *n.IsActive,
	}
	if n.Role.IsValid() {
		u.Role = n.Role
	}
	return u
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
