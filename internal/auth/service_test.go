package auth_test

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/erensaridag/careermatch/internal/auth"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AuthService Suite")
}

// Mock account repository for testing
type mockAccountRepository struct {
	accounts         map[string]mockAccount // keyed by email
	nextID           int
	createError      error
	setResetTokenErr error
	resetTokens      map[string]string // email -> token hash
}

type mockAccount struct {
	userID       string
	passwordHash string
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		accounts:    make(map[string]mockAccount),
		resetTokens: make(map[string]string),
		nextID:      1,
	}
}

func (m *mockAccountRepository) CreateAccount(email, passwordHash string) (string, error) {
	if m.createError != nil {
		return "", m.createError
	}
	if _, exists := m.accounts[email]; exists {
		return "", auth.ErrDuplicateAccount
	}
	userID := fmt.Sprintf("user-%d", m.nextID)
	m.nextID++
	m.accounts[email] = mockAccount{userID: userID, passwordHash: passwordHash}
	return userID, nil
}

func (m *mockAccountRepository) GetCredentials(email string) (string, string, error) {
	acct, exists := m.accounts[email]
	if !exists {
		return "", "", auth.ErrAccountNotFound
	}
	return acct.userID, acct.passwordHash, nil
}

func (m *mockAccountRepository) SetResetToken(email, tokenHash string, expiresAt time.Time) error {
	if m.setResetTokenErr != nil {
		return m.setResetTokenErr
	}
	if _, exists := m.accounts[email]; !exists {
		return auth.ErrAccountNotFound
	}
	m.resetTokens[email] = tokenHash
	return nil
}

// Mock profile store for testing
type mockProfileStore struct {
	roles       map[string]string // userID -> role
	createError error
	getRoleErr  error
	created     []string
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{roles: make(map[string]string)}
}

func (m *mockProfileStore) CreateProfile(userID, email, name, role string) error {
	if m.createError != nil {
		return m.createError
	}
	m.roles[userID] = role
	m.created = append(m.created, userID)
	return nil
}

func (m *mockProfileStore) GetRole(userID string) (string, error) {
	if m.getRoleErr != nil {
		return "", m.getRoleErr
	}
	role, exists := m.roles[userID]
	if !exists {
		return "", errors.New("profile not found")
	}
	return role, nil
}

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		accounts *mockAccountRepository
		profiles *mockProfileStore
		tokenGen *auth.JWTTokenGenerator
		logger   *slog.Logger
	)

	BeforeEach(func() {
		accounts = newMockAccountRepository()
		profiles = newMockProfileStore()
		tokenGen = auth.NewJWTTokenGenerator(
			"test-access-secret-at-least-32-chars!",
			"test-refresh-secret-at-least-32-char!",
			15*time.Minute,
			7*24*time.Hour,
		)
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(accounts, profiles, tokenGen, bcrypt.MinCost, time.Hour, logger)
	})

	Describe("SignUp", func() {
		It("creates an account and profile and returns tokens", func() {
			result, err := service.SignUp(auth.SignUpDTO{
				Email:    "student@example.com",
				Password: "password123",
				Name:     "Test Student",
				Role:     auth.RoleStudent,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.UserID).NotTo(BeEmpty())
			Expect(result.Role).To(Equal(auth.RoleStudent))
			Expect(result.Tokens.AccessToken).NotTo(BeEmpty())
			Expect(result.Tokens.RefreshToken).NotTo(BeEmpty())
			Expect(profiles.created).To(ContainElement(result.UserID))
		})

		It("rejects a duplicate email", func() {
			_, err := service.SignUp(auth.SignUpDTO{
				Email:    "dup@example.com",
				Password: "password123",
				Name:     "First",
				Role:     auth.RoleStudent,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.SignUp(auth.SignUpDTO{
				Email:    "dup@example.com",
				Password: "password456",
				Name:     "Second",
				Role:     auth.RoleCompany,
			})
			Expect(err).To(MatchError(auth.ErrDuplicateAccount))
		})

		It("rejects an invalid role", func() {
			_, err := service.SignUp(auth.SignUpDTO{
				Email:    "someone@example.com",
				Password: "password123",
				Name:     "Someone",
				Role:     "admin",
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a short password", func() {
			_, err := service.SignUp(auth.SignUpDTO{
				Email:    "someone@example.com",
				Password: "short",
				Name:     "Someone",
				Role:     auth.RoleStudent,
			})
			Expect(err).To(HaveOccurred())
		})

		It("leaves the account behind when the profile write fails", func() {
			profiles.createError = errors.New("store unavailable")

			_, err := service.SignUp(auth.SignUpDTO{
				Email:    "orphan@example.com",
				Password: "password123",
				Name:     "Orphan",
				Role:     auth.RoleCompany,
			})
			Expect(err).To(HaveOccurred())

			// The credential row survives without a profile row.
			userID, _, credErr := accounts.GetCredentials("orphan@example.com")
			Expect(credErr).NotTo(HaveOccurred())
			_, roleErr := profiles.GetRole(userID)
			Expect(roleErr).To(HaveOccurred())
		})
	})

	Describe("SignIn", func() {
		BeforeEach(func() {
			_, err := service.SignUp(auth.SignUpDTO{
				Email:    "company@example.com",
				Password: "password123",
				Name:     "Acme",
				Role:     auth.RoleCompany,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the stored role and fresh tokens", func() {
			result, err := service.SignIn(auth.LoginDTO{
				Email:    "company@example.com",
				Password: "password123",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Role).To(Equal(auth.RoleCompany))
			Expect(result.Tokens.AccessToken).NotTo(BeEmpty())
		})

		It("rejects a wrong password", func() {
			_, err := service.SignIn(auth.LoginDTO{
				Email:    "company@example.com",
				Password: "wrong-password",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown email", func() {
			_, err := service.SignIn(auth.LoginDTO{
				Email:    "nobody@example.com",
				Password: "password123",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("defaults to the student role when the profile is missing", func() {
			// Simulate an orphaned account from a failed sign-up.
			accounts.accounts["orphan@example.com"] = mockAccount{
				userID:       "orphan-1",
				passwordHash: mustHash("password123"),
			}

			result, err := service.SignIn(auth.LoginDTO{
				Email:    "orphan@example.com",
				Password: "password123",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Role).To(Equal(auth.RoleStudent))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("round-trips claims through a signed token", func() {
			result, err := service.SignUp(auth.SignUpDTO{
				Email:    "claims@example.com",
				Password: "password123",
				Name:     "Claims",
				Role:     auth.RoleStudent,
			})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(result.Tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(result.UserID))
			Expect(claims.Email).To(Equal("claims@example.com"))
			Expect(claims.Role).To(Equal(auth.RoleStudent))
		})

		It("rejects garbage tokens", func() {
			_, err := service.ValidateAccessToken("not-a-jwt")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects an expired token", func() {
			shortGen := auth.NewJWTTokenGenerator(
				"test-access-secret-at-least-32-chars!",
				"test-refresh-secret-at-least-32-char!",
				-time.Minute,
				7*24*time.Hour,
			)
			token, err := shortGen.GenerateAccessToken("u1", "x@example.com", auth.RoleStudent)
			Expect(err).NotTo(HaveOccurred())

			_, err = shortGen.ValidateToken(token)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a new pair from a valid refresh token", func() {
			result, err := service.SignUp(auth.SignUpDTO{
				Email:    "refresh@example.com",
				Password: "password123",
				Name:     "Refresh",
				Role:     auth.RoleStudent,
			})
			Expect(err).NotTo(HaveOccurred())

			tokens, err := service.RefreshTokens(result.Tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
		})
	})

	Describe("ResolveUser", func() {
		It("re-reads the role from the profile store", func() {
			result, err := service.SignUp(auth.SignUpDTO{
				Email:    "resolve@example.com",
				Password: "password123",
				Name:     "Resolve",
				Role:     auth.RoleCompany,
			})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(result.Tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())

			// A later profile correction wins over the role baked into the token.
			profiles.roles[result.UserID] = auth.RoleStudent

			user, err := service.ResolveUser(claims)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Role).To(Equal(auth.RoleStudent))
		})
	})

	Describe("SendPasswordReset", func() {
		It("stores a hashed token for a known account", func() {
			_, err := service.SignUp(auth.SignUpDTO{
				Email:    "reset@example.com",
				Password: "password123",
				Name:     "Reset",
				Role:     auth.RoleStudent,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.SendPasswordReset("reset@example.com")).To(Succeed())
			Expect(accounts.resetTokens).To(HaveKey("reset@example.com"))
		})

		It("succeeds silently for an unknown email", func() {
			Expect(service.SendPasswordReset("unknown@example.com")).To(Succeed())
			Expect(accounts.resetTokens).To(BeEmpty())
		})
	})
})

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}
