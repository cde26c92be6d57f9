package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes supplier operations to the API layer.
type Service interface {
	List(ctx context.Context) ([]models.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	Create(ctx context.Context, input SupplierInput) (*models.Supplier, error)
	Update(ctx context.Context, id uuid.UUID, input SupplierInput) (*models.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierInput carries the writable supplier fields.
type SupplierInput struct {
	Name  string
	INN   string
	Email string
}

type repository interface {
	List(ctx context.Context) ([]models.Supplier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	Create(ctx context.Context, row *models.Supplier) (*models.Supplier, error)
	Update(ctx context.Context, row *models.Supplier) (*models.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo repository
}

// NewService builds the suppliers service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Supplier, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, err
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, input SupplierInput) (*models.Supplier, error) {
	row := &models.Supplier{
		ID:    uuid.New(),
		Name:  input.Name,
		INN:   input.INN,
		Email: input.Email,
	}
	return s.repo.Create(ctx, row)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input SupplierInput) (*models.Supplier, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Name = input.Name
	row.INN = input.INN
	row.Email = input.Email
	return s.repo.Update(ctx, row)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	return nil
}
