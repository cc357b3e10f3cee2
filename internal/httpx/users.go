package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/models"
	"github.com/safar/chat-storefront/internal/store"
	"go.uber.org/zap"
)

type languageRequest struct {
	LanguageCode string `json:"language_code" validate:"omitempty,oneof=en ru pl"`
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := store.GetUser(r.Context(), s.db, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req languageRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.LanguageCode == "" {
		req.LanguageCode = models.LanguageEnglish
	}

	user, err := store.CreateUser(r.Context(), s.db, id, req.LanguageCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req languageRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.LanguageCode == "" {
		respondError(w, http.StatusBadRequest, "language_code is required")
		return
	}

	if err := store.SetUserLanguage(r.Context(), s.db, id, req.LanguageCode); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userLang prefers ?lang=, then the user's stored language, then English.
func (s *Server) userLang(ctx context.Context, r *http.Request, userID int64) string {
	if lang := r.URL.Query().Get("lang"); models.IsSupportedLanguage(lang) {
		return lang
	}

	user, err := store.GetUser(ctx, s.db, userID)
	if err != nil {
		if !errors.Is(err, database.ErrUserNotFound) {
			s.logger.Warn("failed to load user language", zap.Int64("user_id", userID), zap.Error(err))
		}
		return models.LanguageEnglish
	}
	if models.IsSupportedLanguage(user.LanguageCode) {
		return user.LanguageCode
	}
	return models.LanguageEnglish
}

// decode reads a JSON body and validates it. An empty body decodes to the
// zero value.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return false
		}
	}
	if err := s.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	return "invalid " + fe.Field() + ": failed " + fe.Tag()
}
