package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"stayfinder/internal/config"
	"stayfinder/internal/domain"
	"stayfinder/internal/events"
	"stayfinder/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "stayfinder"

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// Claims are carried in issued bearer tokens. Subject is the user id.
type Claims struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	IsHost bool   `json:"isHost"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users    domain.UserRepository
	attempts domain.AttemptStore
	eventBus domain.EventPublisher
	cfg      config.AuthConfig
	now      func() time.Time
	logger   *zerolog.Logger

	dummyOnce sync.Once
	dummy     []byte
}

func NewAuthService(users domain.UserRepository, attempts domain.AttemptStore, eventBus domain.EventPublisher, cfg config.AuthConfig, logger *zerolog.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = models.DefaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.LoginAttempts <= 0 {
		cfg.LoginAttempts = models.DefaultLoginAttempts
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = models.DefaultLoginWindow
	}
	return &AuthService{
		users:    users,
		attempts: attempts,
		eventBus: eventBus,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and returns its identity with a fresh token.
func (s *AuthService) Register(ctx context.Context, name, email, password string, wantsHost bool) (*models.Identity, string, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: email is invalid", domain.ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidInput)
	}
	if len(password) > maxPasswordBytes {
		return nil, "", fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsHost:       wantsHost,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", user.ID).Bool("is_host", user.IsHost).Msg("User registered")
	if s.eventBus != nil {
		payload := map[string]interface{}{"user_id": user.ID, "is_host": user.IsHost}
		if err := s.eventBus.PublishJSON(events.EventUserRegistered, payload); err != nil {
			s.logger.Error().Err(err).Str("user_id", user.ID).Msg("publish event error")
		}
	}

	identity := user.Identity()
	return &identity, token, nil
}

// Login checks credentials. Failures are counted per email; past the limit every attempt is
// refused until the window expires.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Identity, string, error) {
	email = normalizeEmail(email)
	key := "login:" + email

	if s.attempts != nil {
		count, err := s.attempts.Attempts(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Login throttle unavailable")
		} else if count >= s.cfg.LoginAttempts {
			return nil, "", domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}
	hash := s.dummyHash()
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	// Unknown emails still pay for a bcrypt comparison.
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil {
		s.recordFailure(ctx, key)
		return nil, "", domain.ErrInvalidCredentials
	}

	if s.attempts != nil {
		if err := s.attempts.ResetAttempts(ctx, key); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to reset login attempts")
		}
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	identity := user.Identity()
	return &identity, token, nil
}

// dummyHash is compared against when the email is unknown so both paths cost one bcrypt run.
func (s *AuthService) dummyHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cfg.BcryptCost)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to prepare dummy password hash")
			return
		}
		s.dummy = hash
	})
	return s.dummy
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if s.attempts == nil {
		return
	}
	count, err := s.attempts.RecordAttempt(ctx, key, s.cfg.LoginWindow)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record login attempt")
		return
	}
	if count == s.cfg.LoginAttempts {
		s.logger.Warn().Str("key", key).Msg("Login attempts exhausted")
	}
}

// Verify resolves a bearer token to the identity of an existing user.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown subject", domain.ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	identity := user.Identity()
	return &identity, nil
}

func (s *AuthService) issue(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		Name:   user.Name,
		Email:  user.Email,
		IsHost: user.IsHost,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
