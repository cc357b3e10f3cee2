package httpx

import (
	"errors"
	"net/http"

	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/models"
	"github.com/safar/chat-storefront/internal/store"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategoriesWithCount(r.Context(), s.db, queryLang(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	filter := store.ProductFilter{
		CategoryID:     queryInt64(r, "category_id"),
		ManufacturerID: queryInt64(r, "manufacturer_id"),
		Search:         r.URL.Query().Get("q"),
		Language:       queryLang(r),
	}

	page, err := store.ListProducts(r.Context(), s.db, filter, queryInt(r, "page"), queryInt(r, "page_size"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

type productResponse struct {
	*models.Product
	Stock []models.StockLevel `json:"stock"`
}

func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	lang := queryLang(r)

	product, err := store.GetProductDetails(r.Context(), s.db, id, lang)
	if errors.Is(err, database.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stock, err := store.ListProductStock(r.Context(), s.db, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if stock == nil {
		stock = []models.StockLevel{}
	}

	if wantsText(r) {
		respondText(w, http.StatusOK, s.presenter.FormatProductDetails(r.Context(), *product, stock, lang))
		return
	}
	respondJSON(w, http.StatusOK, productResponse{Product: product, Stock: stock})
}

type stockResponse struct {
	ProductID  int64 `json:"product_id"`
	LocationID int64 `json:"location_id"`
	Quantity   int   `json:"quantity"`
}

func (s *Server) handleProductStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	locationID, ok := pathID(r, "location_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	quantity, err := store.GetProductStock(r.Context(), s.db, productID, locationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stockResponse{ProductID: productID, LocationID: locationID, Quantity: quantity})
}

// queryLang returns the requested language, or English for anything unsupported.
func queryLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); models.IsSupportedLanguage(lang) {
		return lang
	}
	return models.LanguageEnglish
}
