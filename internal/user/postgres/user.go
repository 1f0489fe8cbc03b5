package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/erensaridag/careermatch/internal/user"
	"gorm.io/gorm"
)

// ProfileRepository implements user.Repository and doubles as the auth
// package's ProfileStore.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(profile *user.Profile) error {
	return r.db.Create(profile).Error
}

// CreateProfile satisfies the auth package's ProfileStore: the second write of
// the two-phase sign-up.
func (r *ProfileRepository) CreateProfile(userID, email, name, role string) error {
	now := time.Now()
	return r.Create(&user.Profile{
		UserID:    userID,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (r *ProfileRepository) GetRole(userID string) (string, error) {
	var role string
	row := r.db.Raw("SELECT role FROM profiles WHERE user_id = ?", userID).Row()
	if err := row.Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", user.ErrNotFound
		}
		return "", err
	}
	return role, nil
}

func (r *ProfileRepository) GetByUserID(userID string) (*user.Profile, error) {
	var p user.Profile
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByUserIDs batch-fetches profiles for a set of ids in one query. Missing
// ids are simply absent from the result.
func (r *ProfileRepository) GetByUserIDs(userIDs []string) ([]user.Profile, error) {
	if len(userIDs) == 0 {
		return []user.Profile{}, nil
	}
	var profiles []user.Profile
	err := r.db.Where("user_id IN ?", userIDs).Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) UpdateFields(userID string, fields map[string]interface{}) error {
	return r.db.Model(&user.Profile{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}
