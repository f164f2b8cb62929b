// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/auth"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

var (
	ErrEmailExists = core.Reject(
		core.ErrDuplicateKey,
		"EMAIL_EXISTS",
		"email already registered",
	)
	ErrAlreadyPrivileged = core.Reject(
		core.ErrDuplicateKey,
		"ALREADY_PRIVILEGED",
		"user is already a creator or admin",
	)
	ErrUserNotFound = core.Reject(
		core.ErrNotFound,
		"USER_NOT_FOUND",
		"user not found",
	)
)

type Service struct {
	repo   Repository
	hasher core.PasswordHasher
}

func NewService(repo Repository, hasher core.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Register always creates a STUDENT. The email is stored as given apart
// from surrounding whitespace.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*User, error) {
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(req.Name),
		Role:         access.RoleStudent,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
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

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) GetMe(ctx context.Context, p *access.Principal) (*User, error) {
	if p == nil {
		return nil, core.UnauthorizedError("")
	}
	return s.GetUser(ctx, p.UserID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()
	if params.Role != "" {
		if _, err := access.ParseRole(params.Role); err != nil {
			return nil, 0, err
		}
	}
	return s.repo.List(ctx, params)
}

// UpgradeToCreator is the only role change the platform allows.
func (s *Service) UpgradeToCreator(ctx context.Context, id string) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsPrivileged() {
		return nil, ErrAlreadyPrivileged
	}

	if err := s.repo.PromoteRole(ctx, id, access.RoleStudent, access.RoleCreator); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrAlreadyPrivileged
		}
		return nil, err
	}

	user.Role = access.RoleCreator
	return user, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
