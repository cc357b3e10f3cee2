package httpx

import (
	"net/http"

	"github.com/safar/chat-storefront/internal/models"
	"github.com/shopspring/decimal"
)

type addToCartRequest struct {
	ProductID  int64 `json:"product_id" validate:"required,gt=0"`
	LocationID int64 `json:"location_id" validate:"required,gt=0"`
	Quantity   int   `json:"quantity" validate:"required,gt=0"`
}

func (s *Server) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"payment_methods": s.cart.PaymentMethods()})
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type cartResponse struct {
	Lines []models.CartLine `json:"lines"`
	Total string            `json:"total"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	lang := s.userLang(r.Context(), r, userID)

	lines, err := s.cart.GetCart(r.Context(), userID, lang)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsText(r) {
		respondText(w, http.StatusOK, s.presenter.FormatCart(r.Context(), lines, lang))
		return
	}

	if lines == nil {
		lines = []models.CartLine{}
	}
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	respondJSON(w, http.StatusOK, cartResponse{Lines: lines, Total: total.StringFixed(2)})
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req addToCartRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.cart.AddToCart(r.Context(), userID, req.ProductID, req.LocationID, req.Quantity); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	productID, ok := pathID(r, "product_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	locationID, ok := pathID(r, "location_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	if err := s.cart.RemoveFromCart(r.Context(), userID, productID, locationID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req checkoutRequest
	if !s.decode(w, r, &req) {
		return
	}

	order, err := s.cart.Checkout(r.Context(), userID, req.PaymentMethod)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// handleGetOrders returns the full history, or a keyset page when cursor or
// limit is given.
func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	query := r.URL.Query()
	if query.Has("cursor") || query.Has("limit") {
		page, err := s.cart.ListOrdersPage(r.Context(), userID, query.Get("cursor"), queryInt(r, "limit"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, page)
		return
	}

	orders, err := s.cart.GetOrders(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsText(r) {
		lang := s.userLang(r.Context(), r, userID)
		respondText(w, http.StatusOK, s.presenter.FormatOrders(r.Context(), orders, lang))
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}
