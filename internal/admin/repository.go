// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type PlatformCounts struct {
	UsersByRole        map[string]int `db:"-"                    json:"users_by_role"`
	Courses            int            `db:"courses"              json:"courses"`
	RestrictedCourses  int            `db:"restricted_courses"   json:"restricted_courses"`
	Lessons            int            `db:"lessons"              json:"lessons"`
	Enrollments        int            `db:"enrollments"          json:"enrollments"`
	CompletedLessons   int            `db:"completed_lessons"    json:"completed_lessons"`
	ActiveSessions     int            `db:"active_sessions"      json:"active_sessions"`
	PendingResetTokens int            `db:"pending_reset_tokens" json:"pending_reset_tokens"`
}

type StatsRepository interface {
	PlatformCounts(ctx context.Context) (*PlatformCounts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) StatsRepository {
	return &repository{db: db}
}

func (r *repository) PlatformCounts(ctx context.Context) (*PlatformCounts, error) {
	var roles []struct {
		Role  string `db:"role"`
		Total int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &roles, `
		SELECT role, COUNT(*) AS total
		FROM users
		GROUP BY role
		ORDER BY role`,
	); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}

	counts := &PlatformCounts{UsersByRole: make(map[string]int, len(roles))}
	for _, row := range roles {
		counts.UsersByRole[row.Role] = row.Total
	}

	if err := r.db.GetContext(ctx, counts, `
		SELECT
			(SELECT COUNT(*) FROM courses) AS courses,
			(SELECT COUNT(*) FROM courses WHERE restricted_to_allow_list) AS restricted_courses,
			(SELECT COUNT(*) FROM lessons) AS lessons,
			(SELECT COUNT(*) FROM course_enrollments) AS enrollments,
			(SELECT COUNT(*) FROM lesson_progress WHERE completed) AS completed_lessons,
			(SELECT COUNT(*) FROM sessions) AS active_sessions,
			(SELECT COUNT(*) FROM users WHERE password_reset_token IS NOT NULL) AS pending_reset_tokens`,
	); err != nil {
		return nil, fmt.Errorf("count platform rows: %w", err)
	}

	return counts, nil
}
