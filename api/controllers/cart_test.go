package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
)

type stubCartService struct {
	record *models.Cart
	err    error

	addedBuyer   uuid.UUID
	addedProduct uuid.UUID
	addedQty     int
}

func (s *stubCartService) GetCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	return s.record, s.err
}

func (s *stubCartService) AddProduct(ctx context.Context, buyerID, productID uuid.UUID, quantity int) error {
	s.addedBuyer = buyerID
	s.addedProduct = productID
	s.addedQty = quantity
	return s.err
}

func (s *stubCartService) RemoveProduct(ctx context.Context, buyerID, productID uuid.UUID) error {
	return s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, buyerID, productID uuid.UUID, quantity int) error {
	return s.err
}

func cartTestRouter(svc *stubCartService) http.Handler {
	r := chi.NewRouter()
	r.Get("/cart/{buyerId}", CartFetch(svc, nil))
	r.Post("/cart/add-product", CartAddProduct(svc, nil))
	r.Delete("/cart/remove-product", CartRemoveProduct(svc, nil))
	r.Put("/cart/update-quantity", CartUpdateQuantity(svc, nil))
	return r
}

func TestCartFetchSuccess(t *testing.T) {
	buyerID := uuid.New()
	record := &models.Cart{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Items: []models.CartItem{
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2},
		},
	}
	router := cartTestRouter(&stubCartService{record: record})

	req := httptest.NewRequest(http.MethodGet, "/cart/"+buyerID.String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != record.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", envelope.Data.Items)
	}
}

func TestCartFetchNotFound(t *testing.T) {
	router := cartTestRouter(&stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")})

	req := httptest.NewRequest(http.MethodGet, "/cart/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartFetchInvalidBuyerID(t *testing.T) {
	router := cartTestRouter(&stubCartService{})

	req := httptest.NewRequest(http.MethodGet, "/cart/not-a-uuid", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddProductSuccess(t *testing.T) {
	svc := &stubCartService{}
	router := cartTestRouter(svc)

	buyerID := uuid.New()
	productID := uuid.New()
	body := fmt.Sprintf(`{"buyerId":"%s","productId":"%s","quantity":3}`, buyerID, productID)

	req := httptest.NewRequest(http.MethodPost, "/cart/add-product", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.addedBuyer != buyerID || svc.addedProduct != productID || svc.addedQty != 3 {
		t.Fatalf("service called with %s/%s/%d", svc.addedBuyer, svc.addedProduct, svc.addedQty)
	}
}

func TestCartAddProductRejectsZeroQuantity(t *testing.T) {
	router := cartTestRouter(&stubCartService{})

	body := fmt.Sprintf(`{"buyerId":"%s","productId":"%s","quantity":0}`, uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/cart/add-product", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddProductRejectsUnknownFields(t *testing.T) {
	router := cartTestRouter(&stubCartService{})

	body := fmt.Sprintf(`{"buyerId":"%s","productId":"%s","quantity":1,"bogus":true}`, uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/cart/add-product", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveProductNotInCart(t *testing.T) {
	router := cartTestRouter(&stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found in cart")})

	body := fmt.Sprintf(`{"buyerId":"%s","productId":"%s"}`, uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodDelete, "/cart/remove-product", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartUpdateQuantitySuccess(t *testing.T) {
	router := cartTestRouter(&stubCartService{})

	body := fmt.Sprintf(`{"buyerId":"%s","productId":"%s","quantity":5}`, uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodPut, "/cart/update-quantity", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
