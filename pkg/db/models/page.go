package models

import (
	"time"

	"github.com/google/uuid"
)

// Page is a free-standing content page (about, contact, landing copy).
type Page struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug      string    `gorm:"column:slug;not null;unique"`
	Title     string    `gorm:"column:title;not null"`
	BodyHTML  string    `gorm:"column:body_html"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
