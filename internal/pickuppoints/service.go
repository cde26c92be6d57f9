package pickuppoints

import (
	"context"
	"errors"
	"fmt"

	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes pickup point operations to the API layer.
type Service interface {
	List(ctx context.Context) ([]models.PickupPoint, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PickupPoint, error)
	Create(ctx context.Context, input PickupPointInput) (*models.PickupPoint, error)
	Update(ctx context.Context, id uuid.UUID, input PickupPointInput) (*models.PickupPoint, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PickupPointInput carries the writable pickup point fields.
type PickupPointInput struct {
	Name    string
	Address string
}

type repository interface {
	List(ctx context.Context) ([]models.PickupPoint, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PickupPoint, error)
	Create(ctx context.Context, row *models.PickupPoint) (*models.PickupPoint, error)
	Update(ctx context.Context, row *models.PickupPoint) (*models.PickupPoint, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo repository
}

// NewService builds the pickup points service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pickup points repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.PickupPoint, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PickupPoint, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup point not found")
		}
		return nil, err
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, input PickupPointInput) (*models.PickupPoint, error) {
	return s.repo.Create(ctx, &models.PickupPoint{
		ID:      uuid.New(),
		Name:    input.Name,
		Address: input.Address,
	})
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input PickupPointInput) (*models.PickupPoint, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Name = input.Name
	row.Address = input.Address
	return s.repo.Update(ctx, row)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pickup point not found")
	}
	return nil
}
