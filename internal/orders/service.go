package orders

import (
	"context"
	"fmt"

	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Service exposes order history lookups.
type Service interface {
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
}

type service struct {
	repo Repository
}

// NewService builds the orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	return s.repo.FindByBuyer(ctx, buyerID)
}
