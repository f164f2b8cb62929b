// AngelaMos | 2026
// access_test.go

package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type stubChecker struct {
	enrolled map[string]bool
	err      error
	calls    int
}

func (s *stubChecker) IsEnrolled(
	_ context.Context,
	userID, courseID string,
) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.enrolled[userID+"/"+courseID], nil
}

var (
	admin   = &Principal{UserID: "admin-1", Email: "admin@example.com", Role: RoleAdmin}
	author  = &Principal{UserID: "creator-1", Email: "creator@example.com", Role: RoleCreator}
	student = &Principal{UserID: "student-1", Email: "Student@Example.com", Role: RoleStudent}
	other   = &Principal{UserID: "student-2", Email: "other@example.com", Role: RoleStudent}
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" creator ")
	require.NoError(t, err)
	assert.Equal(t, RoleCreator, r)

	_, err = ParseRole("SUPERUSER")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCanSeeCourse(t *testing.T) {
	open := CourseRules{ID: "c1", AuthorID: author.UserID}
	restricted := CourseRules{
		ID:            "c2",
		AuthorID:      author.UserID,
		Restricted:    true,
		AllowedEmails: []string{"student@example.com"},
	}
	empty := CourseRules{ID: "c3", AuthorID: author.UserID, Restricted: true}

	tests := []struct {
		name   string
		p      *Principal
		course CourseRules
		want   bool
	}{
		{"anonymous sees open course", nil, open, true},
		{"student sees open course", other, open, true},
		{"anonymous denied restricted", nil, restricted, false},
		{"admin sees restricted", admin, restricted, true},
		{"author sees restricted", author, restricted, true},
		{"allowlisted email ignores case", student, restricted, true},
		{"non-listed student denied", other, restricted, false},
		{"empty allowlist denies student", student, empty, false},
		{"empty allowlist admits admin", admin, empty, true},
		{"empty allowlist admits author", author, empty, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSeeCourse(tt.p, tt.course))
		})
	}
}

func TestCanSeeCourseOpenIsTotal(t *testing.T) {
	open := CourseRules{ID: "c1", AuthorID: "someone", AllowedEmails: []string{"x@y.z"}}
	for _, p := range []*Principal{nil, admin, author, student, other} {
		assert.True(t, CanSeeCourse(p, open))
	}
}

func TestCanViewFullContent(t *testing.T) {
	ctx := context.Background()
	course := CourseRules{ID: "c1", AuthorID: author.UserID}
	checker := &stubChecker{enrolled: map[string]bool{"student-1/c1": true}}

	ok, err := CanViewFullContent(ctx, nil, course, checker)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = CanViewFullContent(ctx, admin, course, checker)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CanViewFullContent(ctx, author, course, checker)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, checker.calls)

	ok, err = CanViewFullContent(ctx, student, course, checker)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CanViewFullContent(ctx, other, course, checker)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanViewFullContentPropagatesLookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	checker := &stubChecker{err: boom}

	_, err := CanViewFullContent(
		context.Background(),
		student,
		CourseRules{ID: "c1", AuthorID: author.UserID},
		checker,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestCanManageCourse(t *testing.T) {
	course := CourseRules{ID: "c1", AuthorID: author.UserID}

	assert.True(t, CanManageCourse(admin, course))
	assert.True(t, CanManageCourse(author, course))
	assert.False(t, CanManageCourse(student, course))
	assert.False(t, CanManageCourse(nil, course))

	otherCreator := &Principal{UserID: "creator-2", Role: RoleCreator}
	assert.False(t, CanManageCourse(otherCreator, course))
}

func TestIsCreator(t *testing.T) {
	assert.True(t, IsCreator(admin))
	assert.True(t, IsCreator(author))
	assert.False(t, IsCreator(student))
	assert.False(t, IsCreator(nil))
}

func TestNormalizeEmails(t *testing.T) {
	got := NormalizeEmails([]string{
		" B@Example.com ",
		"a@example.com",
		"",
		"   ",
		"b@example.com",
	})
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, got)

	assert.Empty(t, NormalizeEmails(nil))
}
