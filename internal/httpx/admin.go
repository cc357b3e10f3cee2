package httpx

import (
	"crypto/subtle"
	"net/http"

	"github.com/safar/chat-storefront/internal/models"
)

const adminTokenHeader = "X-Admin-Token"

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// requireAdmin rejects admin calls when no admin connection is configured
// and checks the shared admin token otherwise.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.admin == nil || s.adminToken == "" {
			respondError(w, http.StatusServiceUnavailable, "admin capability unavailable")
			return
		}
		token := r.Header.Get(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			respondError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePendingOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.admin.PendingOrders(r.Context(), queryInt(r, "limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req statusRequest
	if !s.decode(w, r, &req) {
		return
	}

	order, err := s.admin.UpdateOrderStatus(r.Context(), orderID, req.Status, req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
