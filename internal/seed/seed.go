// AngelaMos | 2026
// seed.go

package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/config"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type seedUser struct {
	email    string
	password string
	name     string
	role     access.Role
}

type seedLesson struct {
	title   string
	content string
	video   string
	pdf     string
}

type seedCourse struct {
	title       string
	description string
	lessons     []seedLesson
}

var demoCourses = []seedCourse{
	{
		title:       "Go for Beginners",
		description: "Basics of Go",
		lessons: []seedLesson{
			{"Intro to Go", "History of Go...", "video1.mp4", "http://files.example.com/intro_notes.pdf"},
			{"Variables", "int, string, bool...", "video2.mp4", ""},
			{"Loops", "The for loop in all its forms...", "video3.mp4", "http://files.example.com/loop_cheat_sheet.pdf"},
		},
	},
	{
		title:       "HTTP Services Masterclass",
		description: "Build APIs",
	},
}

type Seeder struct {
	db     core.TxDB
	hasher core.PasswordHasher
	cfg    config.SeedConfig
	logger *slog.Logger
}

func New(
	db core.TxDB,
	hasher core.PasswordHasher,
	cfg config.SeedConfig,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{db: db, hasher: hasher, cfg: cfg, logger: logger}
}

// Run inserts demo data when seeding is enabled and the users table is
// empty. It reports whether anything was written.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	if !s.cfg.Enabled {
		return false, nil
	}

	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		s.logger.Debug("seed skipped, users already present", "users", count)
		return false, nil
	}

	users := []seedUser{
		{s.cfg.AdminEmail, s.cfg.AdminPassword, "Admin User", access.RoleAdmin},
		{s.cfg.StudentEmail, s.cfg.StudentPassword, "Demo Student", access.RoleStudent},
	}

	hashes := make([]string, len(users))
	for i, u := range users {
		h, err := s.hasher.Hash(u.password)
		if err != nil {
			return false, fmt.Errorf("hash seed password: %w", err)
		}
		hashes[i] = h
	}

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var adminID string
		for i, u := range users {
			id := uuid.New().String()
			if u.role == access.RoleAdmin {
				adminID = id
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO users (id, email, name, password_hash, role)
				VALUES ($1, $2, $3, $4, $5)`,
				id, u.email, u.name, hashes[i], u.role.String(),
			); err != nil {
				return fmt.Errorf("insert user %s: %w", u.email, err)
			}
		}

		for _, c := range demoCourses {
			courseID := uuid.New().String()
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO courses (id, title, description, author_id)
				VALUES ($1, $2, $3, $4)`,
				courseID, c.title, c.description, adminID,
			); err != nil {
				return fmt.Errorf("insert course %q: %w", c.title, err)
			}

			for i, l := range c.lessons {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO lessons (id, course_id, title, content, video_url, pdf_url, order_index)
					VALUES ($1, $2, $3, $4, $5, $6, $7)`,
					uuid.New().String(), courseID, l.title, l.content,
					nullable(l.video), nullable(l.pdf), i+1,
				); err != nil {
					return fmt.Errorf("insert lesson %q: %w", l.title, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("database seeded",
		"admin", s.cfg.AdminEmail,
		"student", s.cfg.StudentEmail,
		"courses", len(demoCourses),
	)
	return true, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
