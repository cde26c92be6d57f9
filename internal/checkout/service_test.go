package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adegtyareva/marketpoint-backend/internal/cart"
	"github.com/adegtyareva/marketpoint-backend/internal/orders"
	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
)

type stubTxRunner struct {
	calls int
	err   error
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}

type stubCartRepo struct {
	record      *models.Cart
	findErr     error
	deletedCart uuid.UUID
	deleteErr   error
	log         *[]string
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) cart.CartRepository { return s }
func (s *stubCartRepo) FindByBuyer(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.record == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.record, nil
}
func (s *stubCartRepo) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	return record, nil
}
func (s *stubCartRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) error { return nil }
func (s *stubCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return nil
}
func (s *stubCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error { return nil }
func (s *stubCartRepo) DeleteCartAndItems(ctx context.Context, cartID uuid.UUID) error {
	if s.log != nil {
		*s.log = append(*s.log, "delete_cart")
	}
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedCart = cartID
	return nil
}

type stubOrdersRepo struct {
	created   *models.Order
	createErr error
	log       *[]string
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }
func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.log != nil {
		*s.log = append(*s.log, "create_order")
	}
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = order
	return order, nil
}
func (s *stubOrdersRepo) FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
	calls    int
}

func (s *stubProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	s.calls++
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubPickupLoader struct {
	exists bool
}

func (s *stubPickupLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.PickupPoint, error) {
	if !s.exists {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.PickupPoint{ID: id, Name: "pp", Address: "addr"}, nil
}

type stubLocker struct {
	held     bool
	err      error
	released int
}

func (s *stubLocker) AcquireCheckoutLock(ctx context.Context, buyerID string, ttl time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return !s.held, nil
}

func (s *stubLocker) ReleaseCheckoutLock(ctx context.Context, buyerID string) error {
	s.released++
	return nil
}

type fixture struct {
	svc      Service
	tx       *stubTxRunner
	cartRepo *stubCartRepo
	orders   *stubOrdersRepo
	products *stubProductLoader
	locker   *stubLocker
}

func newFixture(t *testing.T, cartRepo *stubCartRepo, products *stubProductLoader, pickup *stubPickupLoader, locker *stubLocker) *fixture {
	t.Helper()

	tx := &stubTxRunner{}
	ordersRepo := &stubOrdersRepo{}
	svc, err := NewService(tx, cartRepo, ordersRepo, products, pickup, locker, Options{
		LockTTL:     time.Second,
		RepoTimeout: time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return &fixture{svc: svc, tx: tx, cartRepo: cartRepo, orders: ordersRepo, products: products, locker: locker}
}

func cartWith(buyerID uuid.UUID, items ...models.CartItem) *models.Cart {
	return &models.Cart{ID: uuid.New(), BuyerID: buyerID, Items: items}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parsing decimal %q: %v", s, err)
	}
	return d
}

func TestCheckoutComputesExactTotal(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	record := cartWith(buyerID,
		models.CartItem{ID: uuid.New(), ProductID: productA, Quantity: 3},
		models.CartItem{ID: uuid.New(), ProductID: productB, Quantity: 1},
	)
	products := &stubProductLoader{products: map[uuid.UUID]*models.Product{
		productA: {ID: productA, Price: mustDecimal(t, "19.99")},
		productB: {ID: productB, Price: mustDecimal(t, "0.01")},
	}}

	f := newFixture(t, &stubCartRepo{record: record}, products, &stubPickupLoader{exists: true}, &stubLocker{})

	order, err := f.svc.Checkout(context.Background(), buyerID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := mustDecimal(t, "59.98")
	if !order.TotalCost.Equal(want) {
		t.Fatalf("total cost = %s, want %s", order.TotalCost, want)
	}
	if len(order.OrderedProducts) != 2 {
		t.Fatalf("ordered products = %d entries, want 2", len(order.OrderedProducts))
	}
	if order.OrderedProducts[0] != productA || order.OrderedProducts[1] != productB {
		t.Fatalf("ordered products out of cart order: %v", order.OrderedProducts)
	}
	if f.cartRepo.deletedCart != record.ID {
		t.Fatalf("cart %s not deleted", record.ID)
	}
	if f.locker.released != 1 {
		t.Fatalf("lock released %d times, want 1", f.locker.released)
	}
}

func TestCheckoutPricesDuplicateLinesOnce(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	productA := uuid.New()

	record := cartWith(buyerID,
		models.CartItem{ID: uuid.New(), ProductID: productA, Quantity: 2},
		models.CartItem{ID: uuid.New(), ProductID: productA, Quantity: 1},
	)
	products := &stubProductLoader{products: map[uuid.UUID]*models.Product{
		productA: {ID: productA, Price: mustDecimal(t, "5.00")},
	}}

	f := newFixture(t, &stubCartRepo{record: record}, products, &stubPickupLoader{exists: true}, &stubLocker{})

	order, err := f.svc.Checkout(context.Background(), buyerID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products.calls != 1 {
		t.Fatalf("product loaded %d times, want 1 (cached)", products.calls)
	}
	if !order.TotalCost.Equal(mustDecimal(t, "15.00")) {
		t.Fatalf("total cost = %s, want 15.00", order.TotalCost)
	}
	if len(order.OrderedProducts) != 2 {
		t.Fatalf("duplicates must be preserved, got %v", order.OrderedProducts)
	}
}

func TestCheckoutCartNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubCartRepo{}, &stubProductLoader{}, &stubPickupLoader{exists: true}, &stubLocker{})

	_, err := f.svc.Checkout(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.locker.released != 1 {
		t.Fatal("lock must be released on failure")
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	f := newFixture(t, &stubCartRepo{record: cartWith(buyerID)}, &stubProductLoader{}, &stubPickupLoader{exists: true}, &stubLocker{})

	_, err := f.svc.Checkout(context.Background(), buyerID, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutMissingProductLeavesCartIntact(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	record := cartWith(buyerID, models.CartItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1})
	cartRepo := &stubCartRepo{record: record}

	f := newFixture(t, cartRepo, &stubProductLoader{}, &stubPickupLoader{exists: true}, &stubLocker{})

	_, err := f.svc.Checkout(context.Background(), buyerID, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if cartRepo.deletedCart != uuid.Nil {
		t.Fatal("cart must not be deleted when pricing fails")
	}
	if f.orders.created != nil {
		t.Fatal("no order must be created when pricing fails")
	}
}

func TestCheckoutMissingPickupPoint(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	record := cartWith(buyerID, models.CartItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1})

	f := newFixture(t, &stubCartRepo{record: record}, &stubProductLoader{}, &stubPickupLoader{exists: false}, &stubLocker{})

	_, err := f.svc.Checkout(context.Background(), buyerID, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCheckoutLockHeldConflicts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubCartRepo{}, &stubProductLoader{}, &stubPickupLoader{exists: true}, &stubLocker{held: true})

	_, err := f.svc.Checkout(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if f.locker.released != 0 {
		t.Fatal("lock must not be released when never acquired")
	}
}

func TestCheckoutPersistsOrderBeforeCartDelete(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	productA := uuid.New()
	record := cartWith(buyerID, models.CartItem{ID: uuid.New(), ProductID: productA, Quantity: 1})

	var log []string
	cartRepo := &stubCartRepo{record: record, log: &log}
	products := &stubProductLoader{products: map[uuid.UUID]*models.Product{
		productA: {ID: productA, Price: mustDecimal(t, "1.00")},
	}}

	tx := &stubTxRunner{}
	ordersRepo := &stubOrdersRepo{log: &log}
	svc, err := NewService(tx, cartRepo, ordersRepo, products, &stubPickupLoader{exists: true}, &stubLocker{}, Options{}, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	if _, err := svc.Checkout(context.Background(), buyerID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(log) != 2 || log[0] != "create_order" || log[1] != "delete_cart" {
		t.Fatalf("unexpected operation order: %v", log)
	}
	if tx.calls != 1 {
		t.Fatalf("tx runner used %d times, want 1", tx.calls)
	}
}

func TestCheckoutTimeoutMapsToUnavailable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &stubCartRepo{findErr: context.DeadlineExceeded}, &stubProductLoader{}, &stubPickupLoader{exists: true}, &stubLocker{})

	_, err := f.svc.Checkout(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if !pkgerrors.MetadataFor(typed.Code()).Retryable {
		t.Fatal("unavailable must be marked retryable")
	}
}

// exclusiveLocker grants the lease to the first caller per buyer, like the
// redis SETNX lease does.
type exclusiveLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	attempts int
	released int
}

func (l *exclusiveLocker) AcquireCheckoutLock(ctx context.Context, buyerID string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++
	if l.held[buyerID] {
		return false, nil
	}
	l.held[buyerID] = true
	return true, nil
}

func (l *exclusiveLocker) ReleaseCheckoutLock(ctx context.Context, buyerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, buyerID)
	l.released++
	return nil
}

// gatedCartRepo parks the lease holder in the cart load until the gate opens,
// keeping the lease held while the second attempt runs.
type gatedCartRepo struct {
	*stubCartRepo
	gate chan struct{}
}

func (s *gatedCartRepo) WithTx(tx *gorm.DB) cart.CartRepository { return s }

func (s *gatedCartRepo) FindByBuyer(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	<-s.gate
	return s.stubCartRepo.FindByBuyer(ctx, buyerID)
}

func TestCheckoutConcurrentAttemptsExactlyOneSucceeds(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	productA := uuid.New()
	record := cartWith(buyerID, models.CartItem{ID: uuid.New(), ProductID: productA, Quantity: 1})

	gate := make(chan struct{})
	cartRepo := &gatedCartRepo{stubCartRepo: &stubCartRepo{record: record}, gate: gate}
	products := &stubProductLoader{products: map[uuid.UUID]*models.Product{
		productA: {ID: productA, Price: mustDecimal(t, "1.00")},
	}}
	locker := &exclusiveLocker{held: map[string]bool{}}
	ordersRepo := &stubOrdersRepo{}

	svc, err := NewService(&stubTxRunner{}, cartRepo, ordersRepo, products, &stubPickupLoader{exists: true}, locker, Options{
		LockTTL:     time.Second,
		RepoTimeout: time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Checkout(context.Background(), buyerID, uuid.New())
			results <- err
		}()
	}

	// the lease holder is parked in the cart load, so the first result is
	// the attempt that lost the lease
	loser := <-results
	if typed := pkgerrors.As(loser); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("losing attempt must conflict, got %v", loser)
	}

	close(gate)
	winner := <-results
	if winner != nil {
		t.Fatalf("winning attempt must succeed, got %v", winner)
	}

	if ordersRepo.created == nil {
		t.Fatal("exactly one order must be created")
	}
	if locker.attempts != 2 || locker.released != 1 {
		t.Fatalf("lease attempts = %d, releases = %d", locker.attempts, locker.released)
	}
	if len(locker.held) != 0 {
		t.Fatal("lease must be free after checkout completes")
	}
}

func TestCheckoutNilIDsRejected(t *testing.T) {
	t.Parallel()

	locker := &stubLocker{}
	f := newFixture(t, &stubCartRepo{}, &stubProductLoader{}, &stubPickupLoader{exists: true}, locker)

	if _, err := f.svc.Checkout(context.Background(), uuid.Nil, uuid.New()); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Checkout(context.Background(), uuid.New(), uuid.Nil); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	if locker.released != 0 {
		t.Fatal("lock must not be touched before validation passes")
	}
}
