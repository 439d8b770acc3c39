// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/emoji-explainer/internal/auth"
	"github.com/carterperez-dev/emoji-explainer/internal/core"
)

var (
	ErrEmailTaken    = errors.New("email already in use")
	ErrUsernameTaken = errors.New("username already in use")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) ExistsByUsernameOrEmail(
	ctx context.Context,
	username, email string,
) (bool, error) {
	return s.repo.ExistsByUsernameOrEmail(ctx, username, strings.ToLower(email))
}

func (s *Service) Create(
	ctx context.Context,
	username, email, passwordHash, role string,
) (*auth.UserInfo, error) {
	if role == "" {
		role = RoleUser
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// GetDetails returns the public profile of the token subject.
func (s *Service) GetDetails(
	ctx context.Context,
	userID string,
) (*DetailsResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("get details: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &DetailsResponse{Username: user.Username, Role: user.Role}, nil
}

// Update changes the username and email of the token subject. Either value
// may be unchanged; a value held by a different account is rejected.
func (s *Service) Update(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update user: %w", core.ErrUnauthorized)
	}

	newEmail := strings.ToLower(strings.TrimSpace(req.Email))
	newUsername := strings.TrimSpace(req.Username)
	if newUsername == "" {
		return nil, fmt.Errorf("update user: blank username: %w", core.ErrInvalidInput)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if newEmail != user.Email {
		if err := s.ensureFree(ctx, userID, newEmail, s.repo.GetByEmail, ErrEmailTaken); err != nil {
			return nil, err
		}
	}

	if newUsername != user.Username {
		if err := s.ensureFree(ctx, userID, newUsername, s.repo.GetByUsername, ErrUsernameTaken); err != nil {
			return nil, err
		}
	}

	user.Email = newEmail
	user.Username = newUsername

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) ensureFree(
	ctx context.Context,
	userID, value string,
	lookup func(context.Context, string) (*User, error),
	taken error,
) error {
	holder, err := lookup(ctx, value)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil
	case err != nil:
		return err
	case holder.ID != userID:
		return fmt.Errorf("update user: %w", taken)
	default:
		return nil
	}
}

// Delete removes the account permanently. Interpretations it owns and
// log entries stay in place.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete user: %w", core.ErrUnauthorized)
	}

	return s.repo.Delete(ctx, userID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id, role string,
) (*User, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}
}

var _ auth.UserProvider = (*Service)(nil)
