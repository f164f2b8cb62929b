// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
)

type User struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password_hash"`
	Name         string      `db:"name"`
	Role         access.Role `db:"role"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == access.RoleAdmin
}

// IsPrivileged reports whether the user already holds a role above STUDENT.
func (u *User) IsPrivileged() bool {
	return u.Role == access.RoleAdmin || u.Role == access.RoleCreator
}
