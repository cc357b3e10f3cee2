package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/safar/chat-storefront/internal/checkout"
	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/store"
	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

func statusFor(err error) int {
	var partial *checkout.PartialOrderWriteError
	switch {
	case errors.As(err, &partial):
		return http.StatusInternalServerError
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrConcurrentCheckout),
		errors.Is(err, checkout.ErrInvalidStatusTransition),
		errors.Is(err, checkout.ErrOrderStatusConflict):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrInvalidPaymentMethod),
		errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrLocationRequired),
		errors.Is(err, checkout.ErrUnknownStatus),
		errors.Is(err, checkout.ErrUnrepresentableAmount),
		errors.Is(err, store.ErrInvalidCursor):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrUnknownProductOrLocation),
		errors.Is(err, checkout.ErrCartLineNotFound),
		errors.Is(err, checkout.ErrOrderNotFound),
		errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status. Server-side failures are logged and
// their detail is not echoed to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
		respondError(w, status, http.StatusText(status))
		return
	}
	respondError(w, status, err.Error())
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

func queryInt64(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return v
}

func wantsText(r *http.Request) bool {
	return r.URL.Query().Get("format") == "text"
}
