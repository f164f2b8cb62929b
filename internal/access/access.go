// AngelaMos | 2026
// access.go

package access

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCreator Role = "CREATOR"
	RoleStudent Role = "STUDENT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCreator, RoleStudent:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", core.Reject(
			core.ErrInvalidInput,
			"INVALID_ROLE",
			fmt.Sprintf("unknown role %q", s),
		)
	}
	return r, nil
}

// Principal is the authenticated caller of a single request.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// CourseRules is the slice of a course that the policies look at.
type CourseRules struct {
	ID            string
	AuthorID      string
	Restricted    bool
	AllowedEmails []string
}

type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
}

func IsAdmin(p *Principal) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleCreator, RoleStudent:
		return false
	default:
		return false
	}
}

// IsCreator reports whether p may author courses.
func IsCreator(p *Principal) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleAdmin, RoleCreator:
		return true
	case RoleStudent:
		return false
	default:
		return false
	}
}

func IsAuthor(p *Principal, c CourseRules) bool {
	return p != nil && p.UserID != "" && p.UserID == c.AuthorID
}

func IsEnrolled(
	ctx context.Context,
	p *Principal,
	courseID string,
	checker EnrollmentChecker,
) (bool, error) {
	if p == nil || checker == nil {
		return false, nil
	}

	ok, err := checker.IsEnrolled(ctx, p.UserID, courseID)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return ok, nil
}

// CanSeeCourse decides discovery. A nil principal is anonymous.
func CanSeeCourse(p *Principal, c CourseRules) bool {
	if !c.Restricted {
		return true
	}
	if p == nil {
		return false
	}
	if IsAdmin(p) || IsAuthor(p, c) {
		return true
	}

	email := normalizeEmail(p.Email)
	if email == "" {
		return false
	}
	for _, allowed := range c.AllowedEmails {
		if normalizeEmail(allowed) == email {
			return true
		}
	}
	return false
}

// CanViewFullContent gates lesson bodies: admin, author, or enrolled.
func CanViewFullContent(
	ctx context.Context,
	p *Principal,
	c CourseRules,
	checker EnrollmentChecker,
) (bool, error) {
	if p == nil {
		return false, nil
	}
	if IsAdmin(p) || IsAuthor(p, c) {
		return true, nil
	}
	return IsEnrolled(ctx, p, c.ID, checker)
}

func CanManageCourse(p *Principal, c CourseRules) bool {
	return IsAdmin(p) || IsAuthor(p, c)
}

// NormalizeEmails trims, lower-cases, drops empties and de-duplicates.
// The result is sorted.
func NormalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if n := normalizeEmail(e); n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
