package posting

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	apperrors "github.com/erensaridag/careermatch/internal"
	"github.com/erensaridag/careermatch/internal/auth"
	"github.com/erensaridag/careermatch/internal/transport"
	"github.com/erensaridag/careermatch/pkg/logger"
)

type ServiceAPI interface {
	Create(companyID, companyName string, dto CreatePostingDTO) (*Posting, error)
	GetByID(id string) (*Posting, error)
	ListActive() ([]Posting, int, error)
	ListByOwner(companyID string) ([]Posting, int, error)
	Search(query string) ([]Posting, int, error)
	Update(requesterID, id string, fields map[string]interface{}) (*Posting, error)
	Delete(requesterID, id string) error
}

// ProfileDirectory resolves a user id to the display name shown on listings.
type ProfileDirectory interface {
	DisplayName(userID string) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Profiles ProfileDirectory
}

func NewHandler(svc ServiceAPI, profiles ProfileDirectory) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Profiles:    profiles,
	}
}

// CreatePosting handles POST /internships
func (h *Handler) CreatePosting(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreatePostingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreatePosting: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	companyName, err := h.Profiles.DisplayName(user.ID)
	if err != nil {
		h.Logger.Error("CreatePosting: failed to resolve company name", "user_id", user.ID, "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to resolve company profile")
		return
	}

	p, err := h.Service.Create(user.ID, companyName, dto)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p)
}

// ListPostings handles GET /internships. A non-empty q parameter narrows the
// result to a case-insensitive substring match.
func (h *Handler) ListPostings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	postings, skipped, err := h.Service.Search(query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"internships": postings,
		"skipped":     skipped,
	})
}

// GetPosting handles GET /internships/{id}
func (h *Handler) GetPosting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.Service.GetByID(id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

// ListMyPostings handles GET /internships/mine for company users. Inactive
// listings are included so owners can manage them.
func (h *Handler) ListMyPostings(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postings, skipped, err := h.Service.ListByOwner(user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"internships": postings,
		"skipped":     skipped,
	})
}

// UpdatePosting handles PATCH /internships/{id} with partial-merge semantics.
func (h *Handler) UpdatePosting(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.Logger.Error("UpdatePosting: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.Update(user.ID, id, fields)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

// DeletePosting handles DELETE /internships/{id}
func (h *Handler) DeletePosting(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(user.ID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostingNotFound):
		h.WriteError(w, http.StatusNotFound, "internship posting not found")
	case errors.Is(err, ErrUnauthorizedAccess):
		h.WriteError(w, http.StatusForbidden, "you do not own this posting")
	default:
		if appErr, ok := apperrors.IsAppError(err); ok {
			h.WriteError(w, appErr.StatusCode, appErr.Message)
			return
		}
		h.Logger.Error("posting service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
