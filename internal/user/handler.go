package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erensaridag/careermatch/internal/auth"
	"github.com/erensaridag/careermatch/internal/transport"
	"github.com/erensaridag/careermatch/pkg/logger"
)

type ServiceAPI interface {
	GetProfile(userID string) (*Profile, error)
	UpdateProfile(userID string, fields map[string]interface{}) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetCurrentUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	p, err := h.Service.GetProfile(user.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: failed to load profile", "user_id", user.ID, "error", err)
		if errors.Is(err, ErrNotFound) {
			h.WriteError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

// UpdateCurrentUser handles PATCH /users/me with partial-merge semantics.
func (h *Handler) UpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("UpdateCurrentUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.Logger.Error("UpdateCurrentUser: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.UpdateProfile(user.ID, fields); err != nil {
		h.Logger.Error("UpdateCurrentUser: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
