package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Price is a numeric snapshot of the current
// unit price; orders copy the computed total instead of referencing it.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Photo           *string         `gorm:"column:photo"`
	Characteristics *string         `gorm:"column:characteristics"`
	CategoryID      *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	ManufacturerID  uuid.UUID       `gorm:"column:manufacturer_id;type:uuid;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
