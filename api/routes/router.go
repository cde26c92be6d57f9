package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adegtyareva/marketpoint-backend/api/controllers"
	"github.com/adegtyareva/marketpoint-backend/api/middleware"
	"github.com/adegtyareva/marketpoint-backend/internal/buyers"
	"github.com/adegtyareva/marketpoint-backend/internal/cart"
	"github.com/adegtyareva/marketpoint-backend/internal/categories"
	checkoutsvc "github.com/adegtyareva/marketpoint-backend/internal/checkout"
	"github.com/adegtyareva/marketpoint-backend/internal/orders"
	"github.com/adegtyareva/marketpoint-backend/internal/pickuppoints"
	"github.com/adegtyareva/marketpoint-backend/internal/products"
	"github.com/adegtyareva/marketpoint-backend/internal/suppliers"
	"github.com/adegtyareva/marketpoint-backend/pkg/config"
	"github.com/adegtyareva/marketpoint-backend/pkg/db"
	"github.com/adegtyareva/marketpoint-backend/pkg/logger"
	"github.com/adegtyareva/marketpoint-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Buyers       buyers.Service
	Suppliers    suppliers.Service
	Categories   categories.Service
	PickupPoints pickuppoints.Service
	Products     products.Service
	Cart         cart.Service
	Checkout     checkoutsvc.Service
	Orders       orders.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/buyers", func(r chi.Router) {
		r.Get("/", controllers.BuyersList(svcs.Buyers, logg))
		r.Post("/", controllers.BuyerCreate(svcs.Buyers, logg))
		r.Get("/{buyerId}", controllers.BuyerFetch(svcs.Buyers, logg))
		r.Put("/{buyerId}", controllers.BuyerUpdate(svcs.Buyers, logg))
		r.Delete("/{buyerId}", controllers.BuyerDelete(svcs.Buyers, logg))
	})

	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", controllers.SuppliersList(svcs.Suppliers, logg))
		r.Post("/", controllers.SupplierCreate(svcs.Suppliers, logg))
		r.Get("/{supplierId}", controllers.SupplierFetch(svcs.Suppliers, logg))
		r.Put("/{supplierId}", controllers.SupplierUpdate(svcs.Suppliers, logg))
		r.Delete("/{supplierId}", controllers.SupplierDelete(svcs.Suppliers, logg))
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", controllers.CategoriesList(svcs.Categories, logg))
		r.Post("/", controllers.CategoryCreate(svcs.Categories, logg))
		r.Get("/{categoryId}", controllers.CategoryFetch(svcs.Categories, logg))
		r.Put("/{categoryId}", controllers.CategoryUpdate(svcs.Categories, logg))
		r.Delete("/{categoryId}", controllers.CategoryDelete(svcs.Categories, logg))
	})

	r.Route("/pickuppoints", func(r chi.Router) {
		r.Get("/", controllers.PickupPointsList(svcs.PickupPoints, logg))
		r.Post("/", controllers.PickupPointCreate(svcs.PickupPoints, logg))
		r.Get("/{pickupPointId}", controllers.PickupPointFetch(svcs.PickupPoints, logg))
		r.Put("/{pickupPointId}", controllers.PickupPointUpdate(svcs.PickupPoints, logg))
		r.Delete("/{pickupPointId}", controllers.PickupPointDelete(svcs.PickupPoints, logg))
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(svcs.Products, logg))
		r.Post("/", controllers.ProductCreate(svcs.Products, logg))
		r.Get("/{productId}", controllers.ProductFetch(svcs.Products, logg))
		r.Put("/{productId}", controllers.ProductUpdate(svcs.Products, logg))
		r.Delete("/{productId}", controllers.ProductDelete(svcs.Products, logg))
	})

	r.Route("/cart", func(r chi.Router) {
		r.Post("/add-product", controllers.CartAddProduct(svcs.Cart, logg))
		r.Delete("/remove-product", controllers.CartRemoveProduct(svcs.Cart, logg))
		r.Put("/update-quantity", controllers.CartUpdateQuantity(svcs.Cart, logg))
		r.Get("/{buyerId}", controllers.CartFetch(svcs.Cart, logg))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/checkout", controllers.OrdersCheckout(svcs.Checkout, logg))
		r.Get("/by-buyer/{buyerId}", controllers.OrdersByBuyer(svcs.Orders, logg))
	})

	return r
}
