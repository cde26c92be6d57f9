package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adegtyareva/marketpoint-backend/internal/cart"
	"github.com/adegtyareva/marketpoint-backend/internal/orders"
	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	dbtypes "github.com/adegtyareva/marketpoint-backend/pkg/db/types"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
	"github.com/adegtyareva/marketpoint-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type pickupPointLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PickupPoint, error)
}

// locker serializes checkouts per buyer. Acquire returns false when another
// checkout currently holds the buyer's lease.
type locker interface {
	AcquireCheckoutLock(ctx context.Context, buyerID string, ttl time.Duration) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, buyerID string) error
}

// Service converts a buyer's cart into an immutable order.
type Service interface {
	Checkout(ctx context.Context, buyerID, pickupPointID uuid.UUID) (*models.Order, error)
}

// Options bound the orchestration.
type Options struct {
	LockTTL     time.Duration
	RepoTimeout time.Duration
}

type service struct {
	tx           txRunner
	cartRepo     cart.CartRepository
	ordersRepo   orders.Repository
	products     productLoader
	pickupPoints pickupPointLoader
	locks        locker
	opts         Options
	metrics      *metrics.CheckoutMetrics
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	cartRepo cart.CartRepository,
	ordersRepo orders.Repository,
	products productLoader,
	pickupPoints pickupPointLoader,
	locks locker,
	opts Options,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if pickupPoints == nil {
		return nil, fmt.Errorf("pickup point loader required")
	}
	if locks == nil {
		return nil, fmt.Errorf("locker required")
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	if opts.RepoTimeout <= 0 {
		opts.RepoTimeout = 5 * time.Second
	}
	return &service{
		tx:           tx,
		cartRepo:     cartRepo,
		ordersRepo:   ordersRepo,
		products:     products,
		pickupPoints: pickupPoints,
		locks:        locks,
		opts:         opts,
		metrics:      checkoutMetrics,
	}, nil
}

// Checkout loads the buyer's cart, prices every line item against the current
// catalog, persists the order snapshot and deletes the cart with its items in
// one transaction. The persist-then-delete ordering means the worst failure
// mode is an order without cart cleanup, never a lost cart.
func (s *service) Checkout(ctx context.Context, buyerID, pickupPointID uuid.UUID) (*models.Order, error) {
	start := time.Now()
	order, err := s.checkout(ctx, buyerID, pickupPointID)
	s.observe(err, time.Since(start))
	return order, err
}

func (s *service) checkout(ctx context.Context, buyerID, pickupPointID uuid.UUID) (*models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if pickupPointID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup point id required")
	}

	acquired, err := s.locks.AcquireCheckoutLock(ctx, buyerID.String(), s.opts.LockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "acquiring checkout lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress for buyer")
	}
	defer func() {
		_ = s.locks.ReleaseCheckoutLock(context.WithoutCancel(ctx), buyerID.String())
	}()

	record, err := s.loadCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	if err := s.checkPickupPoint(ctx, pickupPointID); err != nil {
		return nil, err
	}

	totalCost, orderedProducts, err := s.priceItems(ctx, record.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		BuyerID:         buyerID,
		TotalCost:       totalCost,
		OrderedProducts: orderedProducts,
		PickupPointID:   pickupPointID,
	}

	txCtx, cancel := context.WithTimeout(ctx, s.opts.RepoTimeout)
	defer cancel()
	err = s.tx.WithTx(txCtx, func(tx *gorm.DB) error {
		if _, err := s.ordersRepo.WithTx(tx).Create(txCtx, order); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).DeleteCartAndItems(txCtx, record.ID)
	})
	if err != nil {
		return nil, asUnavailable(err, "persisting order")
	}
	return order, nil
}

func (s *service) loadCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.RepoTimeout)
	defer cancel()
	record, err := s.cartRepo.FindByBuyer(cctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, asUnavailable(err, "loading cart")
	}
	return record, nil
}

func (s *service) checkPickupPoint(ctx context.Context, id uuid.UUID) error {
	cctx, cancel := context.WithTimeout(ctx, s.opts.RepoTimeout)
	defer cancel()
	if _, err := s.pickupPoints.FindByID(cctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pickup point not found")
		}
		return asUnavailable(err, "loading pickup point")
	}
	return nil
}

// priceItems resolves every line item's current unit price and accumulates the
// exact decimal total. One product id is recorded per line item, duplicates
// preserved, matching the cart's line structure.
func (s *service) priceItems(ctx context.Context, items []models.CartItem) (decimal.Decimal, dbtypes.UUIDArray, error) {
	totalCost := decimal.Zero
	orderedProducts := make(dbtypes.UUIDArray, 0, len(items))
	priceCache := make(map[uuid.UUID]decimal.Decimal, len(items))

	for _, item := range items {
		price, ok := priceCache[item.ProductID]
		if !ok {
			product, err := s.loadProduct(ctx, item.ProductID)
			if err != nil {
				return decimal.Zero, nil, err
			}
			price = product.Price
			priceCache[item.ProductID] = price
		}
		totalCost = totalCost.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		orderedProducts = append(orderedProducts, item.ProductID)
	}
	return totalCost, orderedProducts, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.RepoTimeout)
	defer cancel()
	product, err := s.products.FindByID(cctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, asUnavailable(err, "loading product")
	}
	return product, nil
}

func (s *service) observe(err error, duration time.Duration) {
	result := "success"
	if err != nil {
		result = "internal_error"
		if typed := pkgerrors.As(err); typed != nil {
			result = strings.ToLower(string(typed.Code()))
		}
	}
	s.metrics.Observe(result, duration)
}

// asUnavailable maps storage timeouts to the retryable taxonomy entry; other
// failures pass through untouched.
func asUnavailable(err error, action string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, action+" timed out")
	}
	return err
}
