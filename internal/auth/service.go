// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/carterperez-dev/emoji-explainer/internal/core"
	"github.com/carterperez-dev/emoji-explainer/internal/middleware"
)

var (
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const tokenTypeBearer = "Bearer"

type UserInfo struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

// UserProvider is the slice of the credential store the auth flow needs.
// GetByEmail returns core.ErrNotFound for unknown addresses and Create
// returns core.ErrDuplicateKey on a unique violation.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	ExistsByUsernameOrEmail(
		ctx context.Context,
		username, email string,
	) (bool, error)
	Create(
		ctx context.Context,
		username, email, passwordHash, role string,
	) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	jwt       *JWTManager
	users     UserProvider
	denylist  TokenDenylist
	validator *validator.Validate
	logger    *slog.Logger
}

func NewService(
	jwt *JWTManager,
	users UserProvider,
	denylist TokenDenylist,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		jwt:       jwt,
		users:     users,
		denylist:  denylist,
		validator: core.NewValidator(),
		logger:    logger,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserResponse, error) {
	return s.createUser(
		ctx,
		req.Username,
		req.Email,
		req.Password,
		middleware.RoleUser,
	)
}

func (s *Service) createUser(
	ctx context.Context,
	username, email, password, role string,
) (*UserResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("create user: blank username: %w", core.ErrInvalidInput)
	}
	email = normalizeEmail(email)

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, passwordHash, role)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, core.ErrMalformedHash) {
			s.logger.Warn("stored password hash is malformed",
				"user_id", user.ID,
				"error", err,
			)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.Warn("password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	issued, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &TokenResponse{
		JWTToken:  issued.Token,
		TokenType: tokenTypeBearer,
		ExpiresIn: int(s.jwt.AccessTokenTTL().Seconds()),
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// VerifyAccessToken decodes the token and rejects it when its id has been
// revoked by Logout.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.denylist == nil {
		return claims, nil
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil || claims.TokenID == "" {
		return fmt.Errorf("logout: %w", core.ErrTokenInvalid)
	}

	if s.denylist == nil {
		return nil
	}

	if err := s.denylist.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// SeedUsers creates the accounts listed in a YAML file. Entries whose
// username or email already exist are skipped, so reruns are harmless.
func (s *Service) SeedUsers(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	created := 0
	for i, entry := range file.Users {
		if err := s.validator.Struct(entry); err != nil {
			return created, fmt.Errorf(
				"seed user %d: %s: %w",
				i,
				core.FormatValidationError(err),
				core.ErrInvalidInput,
			)
		}

		role := entry.Role
		if role == "" {
			role = middleware.RoleUser
		}

		_, err := s.createUser(ctx, entry.Username, entry.Email, entry.Password, role)
		if errors.Is(err, ErrAlreadyExists) {
			s.logger.Debug("seed user exists, skipping", "username", entry.Username)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed user %q: %w", entry.Username, err)
		}

		s.logger.Info("seeded user", "username", entry.Username, "role", role)
		created++
	}

	return created, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
