// AngelaMos | 2026
// entity.go

package auth

import (
	"time"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
)

// Session is the single live bearer token of a user. Logging in again
// replaces it.
type Session struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

type principalRow struct {
	UserID string `db:"id"`
	Email  string `db:"email"`
	Role   string `db:"role"`
}

func (p principalRow) toPrincipal() *access.Principal {
	return &access.Principal{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   access.Role(p.Role),
	}
}

// ResetTicket is the holder of a password reset token.
type ResetTicket struct {
	UserID string    `db:"id"`
	Expiry time.Time `db:"password_reset_token_expiry"`
}

func (t *ResetTicket) ExpiredAt(now time.Time) bool {
	return !t.Expiry.After(now)
}
