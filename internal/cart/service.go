package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/adegtyareva/marketpoint-backend/pkg/db"
	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes cart mutations to the API layer. The cart is created lazily
// on the first add; repeat adds of the same product accumulate quantity.
type Service interface {
	GetCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error)
	AddProduct(ctx context.Context, buyerID, productID uuid.UUID, quantity int) error
	RemoveProduct(ctx context.Context, buyerID, productID uuid.UUID) error
	SetQuantity(ctx context.Context, buyerID, productID uuid.UUID, quantity int) error
}

type service struct {
	repo     CartRepository
	tx       txRunner
	buyers   buyerLoader
	products productLoader
}

// NewService builds the cart service.
func NewService(repo CartRepository, tx txRunner, buyers buyerLoader, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if buyers == nil {
		return nil, fmt.Errorf("buyer loader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, buyers: buyers, products: products}, nil
}

func (s *service) GetCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	record, err := s.repo.FindByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, err
	}
	return record, nil
}

func (s *service) AddProduct(ctx context.Context, buyerID, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if _, err := s.buyers.FindByID(ctx, buyerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindByBuyer(ctx, buyerID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			record, err = repo.Create(ctx, &models.Cart{ID: uuid.New(), BuyerID: buyerID})
			if db.IsUniqueViolation(err, "carts_buyer_id_key") {
				// another request created this buyer's cart first, use it
				record, err = repo.FindByBuyer(ctx, buyerID)
			}
			if err != nil {
				return err
			}
		}

		existing, err := repo.FindItem(ctx, record.ID, productID)
		if err == nil {
			return repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+quantity)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		err = repo.CreateItem(ctx, &models.CartItem{
			ID:        uuid.New(),
			CartID:    record.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
		if db.IsUniqueViolation(err, "idx_cart_items_cart_product") {
			return pkgerrors.New(pkgerrors.CodeConflict, "product was added concurrently, retry")
		}
		return err
	})
}

func (s *service) RemoveProduct(ctx context.Context, buyerID, productID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.findItemForBuyer(ctx, repo, buyerID, productID)
		if err != nil {
			return err
		}
		return repo.DeleteItem(ctx, item.ID)
	})
}

func (s *service) SetQuantity(ctx context.Context, buyerID, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.findItemForBuyer(ctx, repo, buyerID, productID)
		if err != nil {
			return err
		}
		return repo.UpdateItemQuantity(ctx, item.ID, quantity)
	})
}

func (s *service) findItemForBuyer(ctx context.Context, repo CartRepository, buyerID, productID uuid.UUID) (*models.CartItem, error) {
	record, err := repo.FindByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, err
	}
	item, err := repo.FindItem(ctx, record.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in cart")
		}
		return nil, err
	}
	return item, nil
}
