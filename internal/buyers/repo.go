package buyers

import (
	"context"

	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for buyer accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a buyers repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all buyers ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]models.Buyer, error) {
	var rows []models.Buyer
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single buyer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	var row models.Buyer
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new buyer.
func (r *Repository) Create(ctx context.Context, row *models.Buyer) (*models.Buyer, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Update saves the provided buyer.
func (r *Repository) Update(ctx context.Context, row *models.Buyer) (*models.Buyer, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes the buyer, reporting whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Buyer{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
