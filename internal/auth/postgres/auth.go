package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/erensaridag/careermatch/internal/auth"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the credential store backing the identity gateway: the users
// table holds account rows only, profiles live in their own table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateAccount(email, passwordHash string) (string, error) {
	userID := uuid.NewString()
	now := time.Now()

	err := r.db.Exec(
		"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		userID, email, passwordHash, now,
	).Error
	if err != nil {
		if isUniqueViolation(err) {
			return "", auth.ErrDuplicateAccount
		}
		return "", err
	}

	return userID, nil
}

func (r *Repository) GetCredentials(email string) (string, string, error) {
	var userID string
	var passwordHash string

	row := r.db.Raw("SELECT id, password_hash FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", auth.ErrAccountNotFound
		}
		return "", "", err
	}
	return userID, passwordHash, nil
}

func (r *Repository) SetResetToken(email, tokenHash string, expiresAt time.Time) error {
	result := r.db.Exec(
		"UPDATE users SET reset_token_hash = ?, reset_token_expires_at = ? WHERE email = ?",
		tokenHash, expiresAt, email,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
