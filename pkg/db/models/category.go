package models

import "time"

type Category struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:varchar(100);not null"`
	Slug         string    `gorm:"column:slug;type:varchar(100);not null;uniqueIndex"`
	Description  *string   `gorm:"column:description;type:text"`
	Icon         *string   `gorm:"column:icon;type:varchar(50)"`
	ImageURL     *string   `gorm:"column:image_url;type:varchar(500)"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Category) TableName() string { return "categories" }
