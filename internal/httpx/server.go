// Package httpx exposes the storefront over JSON/HTTP for a chat front end.
package httpx

import (
	"context"
	"database/sql"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/safar/chat-storefront/internal/checkout"
	"github.com/safar/chat-storefront/internal/models"
	"github.com/safar/chat-storefront/internal/presenter"
	"github.com/safar/chat-storefront/internal/store"
	"go.uber.org/zap"
)

// CartService is the cart and checkout workflow.
type CartService interface {
	AddToCart(ctx context.Context, userID, productID, locationID int64, quantity int) error
	RemoveFromCart(ctx context.Context, userID, productID, locationID int64) error
	GetCart(ctx context.Context, userID int64, lang string) ([]models.CartLine, error)
	Checkout(ctx context.Context, userID int64, paymentMethod string) (*models.Order, error)
	GetOrders(ctx context.Context, userID int64) ([]models.Order, error)
	ListOrdersPage(ctx context.Context, userID int64, cursor string, limit int) (*store.CursorPage, error)
	PaymentMethods() []string
}

type AdminService interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, status, notes string) (*models.Order, error)
	PendingOrders(ctx context.Context, limit int) ([]models.Order, error)
}

var (
	_ CartService  = (*checkout.Service)(nil)
	_ AdminService = (*checkout.Admin)(nil)
)

type Server struct {
	db         *sql.DB
	cart       CartService
	admin      AdminService
	adminToken string
	presenter  *presenter.Presenter
	validate   *validator.Validate
	logger     *zap.Logger
}

type Deps struct {
	DB        *sql.DB
	Cart      CartService
	Admin     AdminService // nil disables the admin routes
	Token     string
	Presenter *presenter.Presenter
	Logger    *zap.Logger
}

func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		db:         d.DB,
		cart:       d.Cart,
		admin:      d.Admin,
		adminToken: d.Token,
		presenter:  d.Presenter,
		validate:   newValidator(),
		logger:     logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Get("/categories", s.handleCategories)
	r.Get("/products", s.handleProducts)
	r.Get("/products/{id}", s.handleProductByID)
	r.Get("/products/{id}/stock/{location_id}", s.handleProductStock)
	r.Get("/payment-methods", s.handlePaymentMethods)

	r.Route("/users/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetUser)
		r.Put("/", s.handleCreateUser)
		r.Put("/language", s.handleSetLanguage)

		r.Get("/cart", s.handleGetCart)
		r.Post("/cart", s.handleAddToCart)
		r.Delete("/cart/{product_id}/{location_id}", s.handleRemoveFromCart)

		r.Post("/checkout", s.handleCheckout)
		r.Get("/orders", s.handleGetOrders)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/orders", s.handlePendingOrders)
		r.Patch("/orders/{id}/status", s.handleUpdateOrderStatus)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
