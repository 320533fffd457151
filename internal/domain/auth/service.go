package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/yanqian/lumee/pkg/errors"
)

// Config drives bearer identity. An empty Secret disables it.
type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// Claims is the identity carried by a verified token.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// Service issues and verifies the HS256 tokens that map a caller to a profile.
type Service interface {
	Enabled() bool
	IssueToken(ctx context.Context, userID string) (string, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

type service struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the identity service.
func NewService(cfg Config, logger *slog.Logger) Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "auth.service"),
		now:    time.Now,
	}
}

func (s *service) Enabled() bool {
	return strings.TrimSpace(s.cfg.Secret) != ""
}

func (s *service) IssueToken(_ context.Context, userID string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.Wrap("auth_error", "identity disabled", ErrDisabled)
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", apperrors.Wrap("invalid_input", "userId is required", nil)
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	return signed, nil
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if !s.Enabled() {
		return Claims{}, apperrors.Wrap("auth_error", "identity disabled", ErrDisabled)
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing subject", nil)
	}
	return Claims{UserID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
