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
	"github.com/shopspring/decimal"

	productsvc "github.com/adegtyareva/marketpoint-backend/internal/products"
	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
)

type stubProductService struct {
	row  *models.Product
	rows []models.Product
	err  error

	gotFilter productsvc.ListFilter
	gotInput  productsvc.ProductInput
	deleted   uuid.UUID
}

func (s *stubProductService) List(ctx context.Context, filter productsvc.ListFilter) ([]models.Product, error) {
	s.gotFilter = filter
	return s.rows, s.err
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.row, s.err
}

func (s *stubProductService) Create(ctx context.Context, input productsvc.ProductInput) (*models.Product, error) {
	s.gotInput = input
	return s.row, s.err
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, input productsvc.ProductInput) (*models.Product, error) {
	s.gotInput = input
	return s.row, s.err
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

func productsTestRouter(svc *stubProductService) http.Handler {
	r := chi.NewRouter()
	r.Get("/products", ProductsList(svc, nil))
	r.Post("/products", ProductCreate(svc, nil))
	r.Get("/products/{productId}", ProductFetch(svc, nil))
	r.Delete("/products/{productId}", ProductDelete(svc, nil))
	return r
}

func TestProductsListFilters(t *testing.T) {
	svc := &stubProductService{rows: []models.Product{}}
	router := productsTestRouter(svc)

	manufacturerID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/products?manufacturer="+manufacturerID.String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotFilter.ManufacturerID == nil || *svc.gotFilter.ManufacturerID != manufacturerID {
		t.Fatalf("filter not passed through: %+v", svc.gotFilter)
	}
}

func TestProductsListInvalidFilter(t *testing.T) {
	router := productsTestRouter(&stubProductService{})

	req := httptest.NewRequest(http.MethodGet, "/products?category=banana", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductCreateSuccess(t *testing.T) {
	manufacturerID := uuid.New()
	row := &models.Product{
		ID:             uuid.New(),
		Name:           "widget",
		Price:          decimal.RequireFromString("19.99"),
		ManufacturerID: manufacturerID,
	}
	svc := &stubProductService{row: row}
	router := productsTestRouter(svc)

	body := fmt.Sprintf(`{"name":"widget","price":"19.99","manufacturerId":"%s"}`, manufacturerID)
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.gotInput.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("price not passed through: %s", svc.gotInput.Price)
	}

	var envelope struct {
		Data productResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != row.ID {
		t.Fatalf("unexpected product id: %s", envelope.Data.ID)
	}
}

func TestProductCreateMissingName(t *testing.T) {
	router := productsTestRouter(&stubProductService{})

	body := fmt.Sprintf(`{"price":"1.00","manufacturerId":"%s"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductDeleteNoContent(t *testing.T) {
	svc := &stubProductService{}
	router := productsTestRouter(svc)

	productID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/products/"+productID.String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if resp.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body.String())
	}
	if svc.deleted != productID {
		t.Fatalf("delete called with %s", svc.deleted)
	}
}

func TestProductDeleteMissing(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	router := productsTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/products/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
