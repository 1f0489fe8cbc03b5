package posting

import (
	"log/slog"
	"time"
)

// Repository abstracts internship persistence.
type Repository interface {
	Create(p *Posting) error
	GetByID(id string) (*Posting, error)
	ListActive() ([]Posting, error)
	ListByOwner(companyID string) ([]Posting, error)
	UpdateFields(id string, fields map[string]interface{}) error
	Delete(id string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Create publishes a new listing owned by the given company user. The company
// display name is denormalized onto the row so list reads need no join.
func (s *Service) Create(companyID, companyName string, dto CreatePostingDTO) (*Posting, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p := &Posting{
		Title:       dto.Title,
		Company:     companyName,
		CompanyID:   companyID,
		Location:    dto.Location,
		Duration:    dto.Duration,
		Salary:      dto.Salary,
		Description: dto.Description,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create posting", "company_id", companyID, "error", err)
		return nil, err
	}

	s.logger.Info("posting created", "posting_id", p.ID, "company_id", companyID)
	return p, nil
}

func (s *Service) GetByID(id string) (*Posting, error) {
	return s.repo.GetByID(id)
}

// ListActive returns active listings newest first. Malformed rows are dropped
// and counted instead of failing the whole read.
func (s *Service) ListActive() ([]Posting, int, error) {
	rows, err := s.repo.ListActive()
	if err != nil {
		return nil, 0, err
	}
	return s.filterWellFormed(rows)
}

// ListByOwner returns every listing for a company, active or not, newest first.
func (s *Service) ListByOwner(companyID string) ([]Posting, int, error) {
	rows, err := s.repo.ListByOwner(companyID)
	if err != nil {
		return nil, 0, err
	}
	return s.filterWellFormed(rows)
}

// Search filters the active listings by a case-insensitive substring match
// over title, company name and location. A blank query returns everything.
func (s *Service) Search(query string) ([]Posting, int, error) {
	postings, skipped, err := s.ListActive()
	if err != nil {
		return nil, 0, err
	}
	if query == "" {
		return postings, skipped, nil
	}

	matched := make([]Posting, 0, len(postings))
	for _, p := range postings {
		if p.Matches(query) {
			matched = append(matched, p)
		}
	}
	return matched, skipped, nil
}

// Update applies a partial edit to a listing the requester owns. Unknown and
// immutable fields in the payload are silently dropped.
func (s *Service) Update(requesterID, id string, fields map[string]interface{}) (*Posting, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing.CompanyID != requesterID {
		s.logger.Warn("update denied for non-owner", "posting_id", id, "requester_id", requesterID)
		return nil, ErrUnauthorizedAccess
	}

	filtered := FilterUpdatableFields(fields)
	if len(filtered) == 0 {
		s.logger.Warn("no updatable fields in posting update", "posting_id", id)
		return existing, nil
	}
	filtered["updated_at"] = time.Now()

	if err := s.repo.UpdateFields(id, filtered); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// Delete removes a listing the requester owns.
func (s *Service) Delete(requesterID, id string) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing.CompanyID != requesterID {
		s.logger.Warn("delete denied for non-owner", "posting_id", id, "requester_id", requesterID)
		return ErrUnauthorizedAccess
	}
	return s.repo.Delete(id)
}

func (s *Service) filterWellFormed(rows []Posting) ([]Posting, int, error) {
	out := make([]Posting, 0, len(rows))
	skipped := 0
	for _, p := range rows {
		if !p.IsWellFormed() {
			skipped++
			s.logger.Warn("skipping malformed posting row", "posting_id", p.ID)
			continue
		}
		out = append(out, p)
	}
	return out, skipped, nil
}
