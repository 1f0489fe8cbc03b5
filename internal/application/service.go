package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/erensaridag/careermatch/internal/core/events"
	"github.com/erensaridag/careermatch/internal/posting"
	"github.com/erensaridag/careermatch/internal/user"
)

// Repository abstracts application persistence.
type Repository interface {
	Create(a *Application) error
	GetByID(id string) (*Application, error)
	ExistsForStudent(studentID, internshipID string) (bool, error)
	ListByStudent(studentID string) ([]Application, error)
	ListByPosting(internshipID string) ([]Application, error)
	UpdateStatus(id, status string) error
	Delete(id string) error
	CountByStudent(studentID string) (int64, error)
	CountPendingForCompany(companyID string) (int64, error)
}

// PostingStore is the slice of the listing store the ledger needs: resolving
// a posting at apply time and checking ownership for review operations.
type PostingStore interface {
	GetByID(id string) (*posting.Posting, error)
}

// ProfileStore resolves student profiles in bulk for the review screen.
type ProfileStore interface {
	GetByUserIDs(userIDs []string) ([]user.Profile, error)
}

type Service struct {
	repo     Repository
	postings PostingStore
	profiles ProfileStore
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, postings PostingStore, profiles ProfileStore, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		postings: postings,
		profiles: profiles,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Apply submits a pending application for the student. A fast existence check
// catches the common duplicate; the unique constraint on
// (student_id, internship_id) is the backstop for concurrent submits, and both
// paths surface as ErrAlreadyApplied. Listing title and company name are
// copied onto the row at this point.
func (s *Service) Apply(ctx context.Context, studentID, internshipID string) (*Application, error) {
	p, err := s.postings.GetByID(internshipID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		s.logger.Warn("apply rejected for inactive posting", "internship_id", internshipID, "student_id", studentID)
		return nil, posting.ErrPostingNotFound
	}

	exists, err := s.repo.ExistsForStudent(studentID, internshipID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	now := time.Now()
	a := &Application{
		StudentID:       studentID,
		InternshipID:    internshipID,
		InternshipTitle: p.Title,
		CompanyName:     p.Company,
		Status:          StatusPending,
		AppliedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(a); err != nil {
		if errors.Is(err, ErrAlreadyApplied) {
			return nil, ErrAlreadyApplied
		}
		s.logger.Error("failed to create application", "student_id", studentID, "internship_id", internshipID, "error", err)
		return nil, err
	}

	s.logger.Info("application submitted", "application_id", a.ID, "student_id", studentID, "internship_id", internshipID)

	event := events.NewApplicationSubmittedEvent(a.ID, a.StudentID, a.InternshipID, a.InternshipTitle, a.CompanyName)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish application submitted event", "application_id", a.ID, "error", err)
	}

	return a, nil
}

// ListByStudent returns the student's applications newest first. Malformed
// rows are dropped and counted instead of failing the read.
func (s *Service) ListByStudent(studentID string) ([]Application, int, error) {
	rows, err := s.repo.ListByStudent(studentID)
	if err != nil {
		return nil, 0, err
	}
	return s.filterWellFormed(rows)
}

// ListByPosting returns applications to one listing for its owning company,
// newest first.
func (s *Service) ListByPosting(requesterID, internshipID string) ([]Application, int, error) {
	if err := s.checkOwnership(requesterID, internshipID); err != nil {
		return nil, 0, err
	}
	rows, err := s.repo.ListByPosting(internshipID)
	if err != nil {
		return nil, 0, err
	}
	return s.filterWellFormed(rows)
}

// SetStatus overwrites the application's status with the company's decision.
// Any valid status may replace any other, so decisions can be revised.
func (s *Service) SetStatus(ctx context.Context, requesterID, applicationID, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	a, err := s.repo.GetByID(applicationID)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(requesterID, a.InternshipID); err != nil {
		return err
	}

	oldStatus := a.Status
	if err := s.repo.UpdateStatus(applicationID, status); err != nil {
		return err
	}

	s.logger.Info("application status updated",
		"application_id", applicationID,
		"old_status", oldStatus,
		"new_status", status)

	event := events.NewApplicationStatusChangedEvent(applicationID, a.StudentID, oldStatus, status)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish status changed event", "application_id", applicationID, "error", err)
	}

	return nil
}

// Remove deletes an application entirely. The applying student may withdraw
// their own application; the owning company may clear one out. Rejection is a
// status, not a removal, so this is reserved for cleanup.
func (s *Service) Remove(requesterID, applicationID string) error {
	a, err := s.repo.GetByID(applicationID)
	if err != nil {
		return err
	}

	if a.StudentID != requesterID {
		if err := s.checkOwnership(requesterID, a.InternshipID); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(applicationID); err != nil {
		return err
	}
	s.logger.Info("application removed", "application_id", applicationID, "requester_id", requesterID)
	return nil
}

// CountByStudent returns how many applications the student has submitted.
func (s *Service) CountByStudent(studentID string) (int64, error) {
	return s.repo.CountByStudent(studentID)
}

// CountPendingForCompany counts pending applications across every listing the
// company owns, in a single joined query.
func (s *Service) CountPendingForCompany(companyID string) (int64, error) {
	return s.repo.CountPendingForCompany(companyID)
}

// ApplicantDetails returns the profile of a single applicant.
func (s *Service) ApplicantDetails(studentID string) (*user.Profile, error) {
	profiles, err := s.profiles.GetByUserIDs([]string{studentID})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, user.ErrNotFound
	}
	return &profiles[0], nil
}

// ApplicantsWithDetails joins applications to one listing with the applying
// students' profiles, resolved in one batched read. Applications whose
// student profile is missing are dropped and counted.
func (s *Service) ApplicantsWithDetails(requesterID, internshipID string) ([]ApplicantDetail, int, error) {
	apps, skipped, err := s.ListByPosting(requesterID, internshipID)
	if err != nil {
		return nil, 0, err
	}
	if len(apps) == 0 {
		return []ApplicantDetail{}, skipped, nil
	}

	studentIDs := make([]string, 0, len(apps))
	for _, a := range apps {
		studentIDs = append(studentIDs, a.StudentID)
	}

	profiles, err := s.profiles.GetByUserIDs(studentIDs)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[string]user.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}

	details := make([]ApplicantDetail, 0, len(apps))
	for _, a := range apps {
		p, ok := byID[a.StudentID]
		if !ok {
			skipped++
			s.logger.Warn("skipping application with missing student profile",
				"application_id", a.ID, "student_id", a.StudentID)
			continue
		}
		details = append(details, ApplicantDetail{
			ApplicationID: a.ID,
			Status:        a.Status,
			AppliedAt:     a.AppliedAt,
			StudentID:     a.StudentID,
			Name:          p.Name,
			Email:         p.Email,
			Phone:         p.Phone,
			University:    p.University,
			Major:         p.Major,
			Skills:        p.Skills,
		})
	}

	return details, skipped, nil
}

func (s *Service) checkOwnership(requesterID, internshipID string) error {
	p, err := s.postings.GetByID(internshipID)
	if err != nil {
		return err
	}
	if p.CompanyID != requesterID {
		s.logger.Warn("application access denied for non-owner",
			"internship_id", internshipID, "requester_id", requesterID)
		return ErrUnauthorizedAccess
	}
	return nil
}

func (s *Service) filterWellFormed(rows []Application) ([]Application, int, error) {
	out := make([]Application, 0, len(rows))
	skipped := 0
	for _, a := range rows {
		if !a.IsWellFormed() {
			skipped++
			s.logger.Warn("skipping malformed application row", "application_id", a.ID)
			continue
		}
		out = append(out, a)
	}
	return out, skipped, nil
}
