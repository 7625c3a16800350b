package models

import (
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/enums"
)

// Quote is a persisted quote request. Code and name are copied into each
// item so later catalog edits do not rewrite history.
type Quote struct {
	ID              int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          *int64            `gorm:"column:user_id;index"`
	Name            string            `gorm:"column:name;type:varchar(100);not null"`
	Email           string            `gorm:"column:email;type:varchar(255);not null"`
	Phone           string            `gorm:"column:phone;type:varchar(50);not null"`
	VehicleInfo     *string           `gorm:"column:vehicle_info;type:varchar(200)"`
	Message         *string           `gorm:"column:message;type:text"`
	SentViaWhatsApp bool              `gorm:"column:sent_via_whatsapp;not null;default:false"`
	Status          enums.QuoteStatus `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	AdminNotes      *string           `gorm:"column:admin_notes;type:text"`
	Items           []QuoteItem       `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	RespondedAt     *time.Time        `gorm:"column:responded_at"`
}

func (Quote) TableName() string { return "quotes" }

type QuoteItem struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	QuoteID     int64  `gorm:"column:quote_id;not null;index"`
	ProductID   int64  `gorm:"column:product_id;not null"`
	ProductCode string `gorm:"column:product_code;type:varchar(50);not null"`
	ProductName string `gorm:"column:product_name;type:varchar(200);not null"`
	Quantity    int    `gorm:"column:quantity;not null;default:1"`
}

func (QuoteItem) TableName() string { return "quote_items" }
