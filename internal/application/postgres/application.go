package postgres

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erensaridag/careermatch/internal/application"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the application. A unique index on
// (student_id, internship_id) rejects concurrent duplicates; that violation
// maps to ErrAlreadyApplied.
func (r *Repository) Create(a *application.Application) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := r.db.Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return application.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(id string) (*application.Application, error) {
	var a application.Application
	if err := r.db.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, application.ErrApplicationNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) ExistsForStudent(studentID, internshipID string) (bool, error) {
	var count int64
	err := r.db.Model(&application.Application{}).
		Where("student_id = ? AND internship_id = ?", studentID, internshipID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ListByStudent(studentID string) ([]application.Application, error) {
	var rows []application.Application
	err := r.db.
		Where("student_id = ?", studentID).
		Order("applied_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListByPosting(internshipID string) ([]application.Application, error) {
	var rows []application.Application
	err := r.db.
		Where("internship_id = ?", internshipID).
		Order("applied_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) UpdateStatus(id, status string) error {
	result := r.db.Model(&application.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return application.ErrApplicationNotFound
	}
	return nil
}

func (r *Repository) Delete(id string) error {
	result := r.db.Delete(&application.Application{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return application.ErrApplicationNotFound
	}
	return nil
}

func (r *Repository) CountByStudent(studentID string) (int64, error) {
	var count int64
	err := r.db.Model(&application.Application{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}

// CountPendingForCompany joins applications to the internships the company
// owns so the dashboard badge is one query instead of one per listing.
func (r *Repository) CountPendingForCompany(companyID string) (int64, error) {
	var count int64
	err := r.db.Model(&application.Application{}).
		Joins("JOIN internships ON internships.id = applications.internship_id").
		Where("internships.company_id = ? AND applications.status = ?", companyID, application.StatusPending).
		Count(&count).Error
	return count, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
