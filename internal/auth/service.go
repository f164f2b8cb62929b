// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

const DefaultResetTokenTTL = time.Hour

var (
	ErrInvalidCredentials = core.Reject(
		core.ErrUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid email or password",
	)
	ErrInvalidResetToken = core.Reject(
		core.ErrTokenInvalid,
		"INVALID_RESET_TOKEN",
		"invalid or expired reset token",
	)
)

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         access.Role
	CreatedAt    time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	repo         Repository
	userProvider UserProvider
	hasher       core.PasswordHasher
	resetTTL     time.Duration
	now          func() time.Time
	newToken     func() (string, error)
	newReset     func() (string, error)
}

func NewService(
	repo Repository,
	userProvider UserProvider,
	hasher core.PasswordHasher,
	resetTTL time.Duration,
) *Service {
	if resetTTL <= 0 {
		resetTTL = DefaultResetTokenTTL
	}
	return &Service{
		repo:         repo,
		userProvider: userProvider,
		hasher:       hasher,
		resetTTL:     resetTTL,
		now:          time.Now,
		newToken:     core.GenerateSessionToken,
		newReset:     core.GenerateResetToken,
	}
}

// Authenticate resolves a bearer token. Empty and unknown tokens yield a
// nil principal and no error: the caller is anonymous.
func (s *Service) Authenticate(
	ctx context.Context,
	token string,
) (*access.Principal, error) {
	if token == "" {
		return nil, nil
	}

	p, err := s.repo.FindPrincipalByToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return p, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = s.hasher.Verify(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := s.hasher.Verify(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.userProvider.UpdatePassword(ctx, user.ID, newHash)
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	if err := s.repo.SaveSession(ctx, user.ID, token); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      toUserResponse(user),
	}, nil
}

// InitiateReset issues a reset token for userID, replacing any earlier one.
// Callers must already have checked that the requester is an admin.
func (s *Service) InitiateReset(
	ctx context.Context,
	userID string,
) (*ResetTokenResponse, error) {
	if _, err := s.userProvider.GetByID(ctx, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.Reject(core.ErrNotFound, "USER_NOT_FOUND", "user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	token, err := s.newReset()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	expiry := s.now().Add(s.resetTTL)

	if err := s.repo.SetResetToken(ctx, userID, token, expiry); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.Reject(core.ErrNotFound, "USER_NOT_FOUND", "user not found")
		}
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	return &ResetTokenResponse{
		UserID:     userID,
		ResetToken: token,
		ExpiresAt:  expiry,
	}, nil
}

func (s *Service) CompleteReset(
	ctx context.Context,
	req ResetPasswordRequest,
) error {
	if req.Token == "" {
		return ErrInvalidResetToken
	}

	ticket, err := s.repo.FindResetTicket(ctx, req.Token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("find reset token: %w", err)
	}

	if ticket.ExpiredAt(s.now()) {
		return ErrInvalidResetToken
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.CompleteReset(ctx, ticket.UserID, req.Token, hash); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("complete reset: %w", err)
	}

	return nil
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}
