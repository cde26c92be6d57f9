package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adegtyareva/marketpoint-backend/api/responses"
	"github.com/adegtyareva/marketpoint-backend/api/validators"
	checkoutsvc "github.com/adegtyareva/marketpoint-backend/internal/checkout"
	ordersvc "github.com/adegtyareva/marketpoint-backend/internal/orders"
	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
	"github.com/adegtyareva/marketpoint-backend/pkg/logger"
)

type checkoutRequest struct {
	BuyerID       uuid.UUID `json:"buyerId" validate:"required"`
	PickUpPointID uuid.UUID `json:"pickUpPointId" validate:"required"`
}

type orderResponse struct {
	ID              uuid.UUID       `json:"id"`
	BuyerID         uuid.UUID       `json:"buyerId"`
	TotalCost       decimal.Decimal `json:"totalCost"`
	OrderedProducts []uuid.UUID     `json:"orderedProducts"`
	PickUpPointID   uuid.UUID       `json:"pickUpPointId"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func newOrderResponse(row *models.Order) orderResponse {
	return orderResponse{
		ID:              row.ID,
		BuyerID:         row.BuyerID,
		TotalCost:       row.TotalCost,
		OrderedProducts: []uuid.UUID(row.OrderedProducts),
		PickUpPointID:   row.PickupPointID,
		CreatedAt:       row.CreatedAt,
	}
}

// OrdersCheckout converts the buyer's cart into an order.
func OrdersCheckout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBuyerID(ctx, payload.BuyerID.String())
		}
		order, err := svc.Checkout(ctx, payload.BuyerID, payload.PickUpPointID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrdersByBuyer lists the buyer's order history oldest first.
func OrdersByBuyer(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		buyerID, err := pathUUID(r, "buyerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByBuyer(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]orderResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newOrderResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
