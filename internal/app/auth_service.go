/**
 * @description
 * Account lifecycle: signup with email activation, activation, signin.
 * Passwords are bcrypt-hashed; tokens are HS256 JWTs. The activation token
 * is itself a short-lived JWT carrying the account email, so an activation
 * link is self-expiring in addition to the stored expiry.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/RoshisRai/Subscription-API/internal/domain"
	"github.com/RoshisRai/Subscription-API/internal/store"
)

var (
	ErrAccountInactive   = errors.New("account is not activated yet")
	ErrBadCredentials    = errors.New("invalid email or password")
	ErrActivationInvalid = errors.New("invalid activation token or account already activated")
	ErrActivationExpired = errors.New("activation link has expired")
)

// AuthUserStore is the slice of the user repository the auth flow needs.
type AuthUserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetPendingActivation(ctx context.Context, email, token string) (*domain.User, error)
	ActivateUser(ctx context.Context, id string) error
	TouchActivation(ctx context.Context, id, token string, expires time.Time) error
}

// ActivationSender delivers the activation email for a new account.
type ActivationSender interface {
	SendActivation(ctx context.Context, user *domain.User, activationURL string, expiresAt time.Time) error
}

// AuthConfig carries token material and lifetimes.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ActivationTTL time.Duration
	ServerURL     string
}

// AuthService implements signup, activation and signin.
type AuthService struct {
	users  AuthUserStore
	mailer ActivationSender
	cfg    AuthConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(users AuthUserStore, mailer ActivationSender, cfg AuthConfig, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// SignUp creates an inactive account, emails the activation link, and
// returns the new user with an auth token.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	if err := domain.ValidateUserInput(name, email, password); err != nil {
		return nil, "", err
	}
	email = domain.NormalizeEmail(email)

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, "", store.ErrEmailTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	expires := now.Add(s.cfg.ActivationTTL)
	activationToken, err := s.signActivationToken(email, expires)
	if err != nil {
		return nil, "", fmt.Errorf("sign activation token: %w", err)
	}

	user := &domain.User{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
		Roles:             []domain.Role{domain.RoleUser},
		IsActive:          false,
		ActivationToken:   activationToken,
		ActivationExpires: &expires,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	activationURL := fmt.Sprintf("%s/api/v1/auth/activate/%s", s.cfg.ServerURL, activationToken)
	if err := s.mailer.SendActivation(ctx, user, activationURL, expires); err != nil {
		// The account exists either way; a fresh link can be issued later.
		s.logger.Error("failed to send activation email", "user_id", user.ID, "error", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Activate verifies an activation token and flips the account to active.
func (s *AuthService) Activate(ctx context.Context, token string) error {
	email, err := s.parseActivationToken(token)
	if err != nil {
		return err
	}

	user, err := s.users.GetPendingActivation(ctx, email, token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrActivationInvalid
		}
		return err
	}

	if err := s.users.ActivateUser(ctx, user.ID); err != nil {
		return err
	}
	s.logger.Info("account activated", "user_id", user.ID)
	return nil
}

// ResendActivation issues a fresh activation token for a not-yet-active
// account and emails a new link. An already-active account is rejected so the
// endpoint cannot be used to probe which emails are registered as inactive.
func (s *AuthService) ResendActivation(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user.IsActive {
		return ErrActivationInvalid
	}

	expires := s.now().Add(s.cfg.ActivationTTL)
	token, err := s.signActivationToken(user.Email, expires)
	if err != nil {
		return fmt.Errorf("sign activation token: %w", err)
	}
	if err := s.users.TouchActivation(ctx, user.ID, token, expires); err != nil {
		return err
	}

	activationURL := fmt.Sprintf("%s/api/v1/auth/activate/%s", s.cfg.ServerURL, token)
	if err := s.mailer.SendActivation(ctx, user, activationURL, expires); err != nil {
		return err
	}
	s.logger.Info("activation link reissued", "user_id", user.ID)
	return nil
}

// SignIn checks credentials and returns the user with an auth token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, "", err
	}

	if !user.IsActive {
		return nil, "", ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrBadCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) signActivationToken(email string, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"scope": "activation",
		"exp":   expires.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) parseActivationToken(token string) (string, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	claims := jwt.MapClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrActivationExpired
		}
		return "", ErrActivationInvalid
	}
	if !parsed.Valid {
		return "", ErrActivationInvalid
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrActivationInvalid
	}
	return email, nil
}
