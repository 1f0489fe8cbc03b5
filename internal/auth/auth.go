package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// User is the authenticated caller as seen by handlers, resolved from the
// access token plus a fresh profile read.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) IsCompany() bool {
	return u.Role == RoleCompany
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

const (
	RoleStudent = "student"
	RoleCompany = "company"
)

type ServiceAPI interface {
	SignUp(dto SignUpDTO) (*SignUpResult, error)
	SignIn(dto LoginDTO) (*SignInResult, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolveUser(claims *Claims) (*User, error)
	SendPasswordReset(email string) error
}

// AccountRepositoryAPI is the identity-provider surface: credential storage
// only, no profile data.
type AccountRepositoryAPI interface {
	CreateAccount(email, passwordHash string) (userID string, err error)
	GetCredentials(email string) (userID, passwordHash string, err error)
	SetResetToken(email, tokenHash string, expiresAt time.Time) error
}

// ProfileStore is implemented by the user package's repository. SignUp writes
// the profile through it as a second, uncompensated write after the account
// row exists.
type ProfileStore interface {
	CreateProfile(userID, email, name, role string) error
	GetRole(userID string) (string, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID, email, role string) (token string, err error)
	GenerateRefreshToken(userID, email, role string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type SignUpResult struct {
	UserID string     `json:"user_id"`
	Role   string     `json:"role"`
	Tokens AuthTokens `json:"tokens"`
}

type SignInResult struct {
	UserID string     `json:"user_id"`
	Role   string     `json:"role"`
	Tokens AuthTokens `json:"tokens"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrDuplicateAccount   = errors.New("account already exists for this email")
	ErrAccountNotFound    = errors.New("account not found")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
