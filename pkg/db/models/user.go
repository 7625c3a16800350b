package models

import (
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/enums"
)

// User is a storefront account. Quotes can exist without one.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Name         string         `gorm:"column:name;type:varchar(100);not null"`
	Phone        *string        `gorm:"column:phone;type:varchar(50)"`
	Role         enums.UserRole `gorm:"column:role;type:varchar(20);not null;default:'user'"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the account may use the admin endpoints.
func (u User) IsAdmin() bool {
	return u.Role == enums.UserRoleAdmin
}
