package user

import (
	"fmt"
	"log/slog"
	"time"
)

type Repository interface {
	Create(profile *Profile) error
	GetByUserID(userID string) (*Profile, error)
	UpdateFields(userID string, fields map[string]interface{}) error
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

func (s *Service) GetProfile(userID string) (*Profile, error) {
	p, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// DisplayName resolves the name shown alongside a user's public activity,
// such as the company name stamped on a listing.
func (s *Service) DisplayName(userID string) (string, error) {
	p, err := s.repo.GetByUserID(userID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

// UpdateProfile merges the given fields into the stored profile. Fields not
// present in the map are left untouched; role and identity columns are
// stripped before the write.
func (s *Service) UpdateProfile(userID string, fields map[string]interface{}) error {
	filtered := FilterUpdatableFields(fields)
	if len(filtered) == 0 {
		s.logger.Warn("profile update contained no updatable fields", "user_id", userID)
		return nil
	}
	filtered["updated_at"] = time.Now()

	if err := s.repo.UpdateFields(userID, filtered); err != nil {
		s.logger.Error("failed to update profile", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("profile updated", "user_id", userID, "field_count", len(filtered))
	return nil
}
