// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type Repository interface {
	SaveSession(ctx context.Context, userID, token string) error
	FindPrincipalByToken(
		ctx context.Context,
		token string,
	) (*access.Principal, error)
	SetResetToken(
		ctx context.Context,
		userID, token string,
		expiry time.Time,
	) error
	FindResetTicket(ctx context.Context, token string) (*ResetTicket, error)
	CompleteReset(
		ctx context.Context,
		userID, resetToken, passwordHash string,
	) error
}

type repository struct {
	db core.TxDB
}

func NewRepository(db core.TxDB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveSession(
	ctx context.Context,
	userID, token string,
) error {
	query := `
		INSERT INTO sessions (token, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET token = EXCLUDED.token, created_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, token, userID); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

func (r *repository) FindPrincipalByToken(
	ctx context.Context,
	token string,
) (*access.Principal, error) {
	query := `
		SELECT u.id, u.email, u.role
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1`

	var row principalRow
	err := r.db.GetContext(ctx, &row, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	return row.toPrincipal(), nil
}

func (r *repository) SetResetToken(
	ctx context.Context,
	userID, token string,
	expiry time.Time,
) error {
	query := `
		UPDATE users
		SET password_reset_token = $2,
		    password_reset_token_expiry = $3,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, token, expiry)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set reset token: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) FindResetTicket(
	ctx context.Context,
	token string,
) (*ResetTicket, error) {
	query := `
		SELECT id, password_reset_token_expiry
		FROM users
		WHERE password_reset_token = $1
		  AND password_reset_token_expiry IS NOT NULL`

	var ticket ResetTicket
	err := r.db.GetContext(ctx, &ticket, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	return &ticket, nil
}

// CompleteReset swaps the password, consumes the reset token and drops the
// user's session in one transaction. The token predicate makes a second
// concurrent completion a no-op that reports ErrNotFound.
func (r *repository) CompleteReset(
	ctx context.Context,
	userID, resetToken, passwordHash string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET password_hash = $3,
			    password_reset_token = NULL,
			    password_reset_token_expiry = NULL,
			    updated_at = NOW()
			WHERE id = $1 AND password_reset_token = $2`,
			userID, resetToken, passwordHash,
		)
		if err != nil {
			return fmt.Errorf("complete reset: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("complete reset: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("complete reset: %w", core.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sessions WHERE user_id = $1`, userID,
		); err != nil {
			return fmt.Errorf("drop session: %w", err)
		}

		return nil
	})
}
