package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	apperrors "github.com/erensaridag/careermatch/internal"
	"github.com/erensaridag/careermatch/internal/auth"
	"github.com/erensaridag/careermatch/internal/posting"
	"github.com/erensaridag/careermatch/internal/transport"
	"github.com/erensaridag/careermatch/internal/user"
	"github.com/erensaridag/careermatch/pkg/logger"
)

type ServiceAPI interface {
	Apply(ctx context.Context, studentID, internshipID string) (*Application, error)
	ListByStudent(studentID string) ([]Application, int, error)
	SetStatus(ctx context.Context, requesterID, applicationID, status string) error
	Remove(requesterID, applicationID string) error
	CountByStudent(studentID string) (int64, error)
	CountPendingForCompany(companyID string) (int64, error)
	ApplicantsWithDetails(requesterID, internshipID string) ([]ApplicantDetail, int, error)
	ApplicantDetails(studentID string) (*user.Profile, error)
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

// Apply handles POST /internships/{id}/applications for student users.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	internshipID := chi.URLParam(r, "id")

	a, err := h.Service.Apply(r.Context(), u.ID, internshipID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, a)
}

// ListMine handles GET /applications/mine for student users.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	apps, skipped, err := h.Service.ListByStudent(u.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"applications": apps,
		"skipped":      skipped,
	})
}

// CountMine handles GET /applications/mine/count for the student dashboard.
func (h *Handler) CountMine(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := h.Service.CountByStudent(u.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// CountPending handles GET /internships/pending-count for the company
// dashboard badge.
func (h *Handler) CountPending(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := h.Service.CountPendingForCompany(u.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// ListApplicants handles GET /internships/{id}/applications for the owning
// company, returning applications joined with student profiles.
func (h *Handler) ListApplicants(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	internshipID := chi.URLParam(r, "id")

	details, skipped, err := h.Service.ApplicantsWithDetails(u.ID, internshipID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"applicants": details,
		"skipped":    skipped,
	})
}

// ApplicantDetail handles GET /users/{id} for company users reviewing a
// single applicant's profile.
func (h *Handler) ApplicantDetail(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	profile, err := h.Service.ApplicantDetails(studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}

// UpdateStatus handles PATCH /applications/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	applicationID := chi.URLParam(r, "id")

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateStatus: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.GetDetailedMessage())
		return
	}

	if err := h.Service.SetStatus(r.Context(), u.ID, applicationID, dto.Status); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": dto.Status})
}

// Withdraw handles DELETE /applications/{id}. Students withdraw their own
// application; companies clean up applications to their listings.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	applicationID := chi.URLParam(r, "id")

	if err := h.Service.Remove(u.ID, applicationID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAlreadyApplied):
		h.WriteError(w, http.StatusConflict, "already applied to this internship")
	case errors.Is(err, ErrApplicationNotFound):
		h.WriteError(w, http.StatusNotFound, "application not found")
	case errors.Is(err, posting.ErrPostingNotFound):
		h.WriteError(w, http.StatusNotFound, "internship posting not found")
	case errors.Is(err, ErrUnauthorizedAccess):
		h.WriteError(w, http.StatusForbidden, "you do not own this posting")
	case errors.Is(err, ErrInvalidStatus):
		h.WriteError(w, http.StatusBadRequest, "invalid application status")
	case errors.Is(err, user.ErrNotFound):
		h.WriteError(w, http.StatusNotFound, "profile not found")
	default:
		if appErr, ok := apperrors.IsAppError(err); ok {
			h.WriteError(w, appErr.StatusCode, appErr.Message)
			return
		}
		h.Logger.Error("application service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
