package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog product operations to the API layer.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, input ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name            string
	Price           decimal.Decimal
	Photo           *string
	Characteristics *string
	CategoryID      *uuid.UUID
	ManufacturerID  uuid.UUID
}

type repository interface {
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, row *models.Product) (*models.Product, error)
	Update(ctx context.Context, row *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo repository
}

// NewService builds the products service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	row := &models.Product{
		ID:              uuid.New(),
		Name:            input.Name,
		Price:           input.Price,
		Photo:           input.Photo,
		Characteristics: input.Characteristics,
		CategoryID:      input.CategoryID,
		ManufacturerID:  input.ManufacturerID,
	}
	return s.repo.Create(ctx, row)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Name = input.Name
	row.Price = input.Price
	row.Photo = input.Photo
	row.Characteristics = input.Characteristics
	row.CategoryID = input.CategoryID
	row.ManufacturerID = input.ManufacturerID
	return s.repo.Update(ctx, row)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func validateInput(input ProductInput) error {
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.ManufacturerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "manufacturer id required")
	}
	return nil
}
