package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/adegtyareva/marketpoint-backend/pkg/db/types"
)

// Order is the immutable snapshot produced by checkout. OrderedProducts keeps
// one entry per cart line item in cart order; TotalCost is fixed at creation
// and never recomputed from later product prices.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID         uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	TotalCost       decimal.Decimal   `gorm:"column:total_cost;type:numeric(14,2);not null"`
	OrderedProducts dbtypes.UUIDArray `gorm:"column:ordered_products;type:uuid[];not null"`
	PickupPointID   uuid.UUID         `gorm:"column:pickup_point_id;type:uuid;not null"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
}
