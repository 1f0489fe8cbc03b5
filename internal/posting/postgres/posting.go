package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erensaridag/careermatch/internal/posting"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(p *posting.Posting) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.db.Create(p).Error
}

func (r *Repository) GetByID(id string) (*posting.Posting, error) {
	var p posting.Posting
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, posting.ErrPostingNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListActive() ([]posting.Posting, error) {
	var rows []posting.Posting
	err := r.db.
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListByOwner(companyID string) ([]posting.Posting, error) {
	var rows []posting.Posting
	err := r.db.
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) UpdateFields(id string, fields map[string]interface{}) error {
	result := r.db.Model(&posting.Posting{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return posting.ErrPostingNotFound
	}
	return nil
}

func (r *Repository) Delete(id string) error {
	result := r.db.Delete(&posting.Posting{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return posting.ErrPostingNotFound
	}
	return nil
}
