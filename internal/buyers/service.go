package buyers

import (
	"context"
	"errors"
	"fmt"

	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes buyer account operations to the API layer.
type Service interface {
	List(ctx context.Context) ([]models.Buyer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Buyer, error)
	Create(ctx context.Context, input BuyerInput) (*models.Buyer, error)
	Update(ctx context.Context, id uuid.UUID, input BuyerInput) (*models.Buyer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BuyerInput carries the writable buyer fields.
type BuyerInput struct {
	Name  string
	Email string
	Phone *string
}

type repository interface {
	List(ctx context.Context) ([]models.Buyer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Buyer, error)
	Create(ctx context.Context, row *models.Buyer) (*models.Buyer, error)
	Update(ctx context.Context, row *models.Buyer) (*models.Buyer, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo repository
}

// NewService builds the buyers service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("buyers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Buyer, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, err
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, input BuyerInput) (*models.Buyer, error) {
	row := &models.Buyer{
		ID:    uuid.New(),
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	}
	return s.repo.Create(ctx, row)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input BuyerInput) (*models.Buyer, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Name = input.Name
	row.Email = input.Email
	row.Phone = input.Phone
	return s.repo.Update(ctx, row)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
	}
	return nil
}
