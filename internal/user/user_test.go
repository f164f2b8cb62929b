// AngelaMos | 2026
// user_test.go

package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

type memRepo struct {
	users map[string]*User
}

func newMemRepo(users ...*User) *memRepo {
	m := &memRepo{users: make(map[string]*User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (m *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = hash
	return nil
}

func (m *memRepo) PromoteRole(_ context.Context, id string, from, to access.Role) error {
	u, ok := m.users[id]
	if !ok || u.Role != from {
		return fmt.Errorf("promote role: %w", core.ErrNotFound)
	}
	u.Role = to
	return nil
}

func (m *memRepo) List(_ context.Context, _ ListUsersParams) ([]User, int, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

type prefixHasher struct{}

func (prefixHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }

func (prefixHasher) Verify(plain string, digest *string) (bool, string, error) {
	return digest != nil && *digest == "h:"+plain, "", nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, prefixHasher{})

	u, err := svc.Register(ctx, RegisterRequest{
		Email:    "  New.Person@Example.com ",
		Password: "longenough",
		Name:     "New",
	})
	require.NoError(t, err)
	assert.Equal(t, access.RoleStudent, u.Role)
	assert.Equal(t, "New.Person@Example.com", u.Email)
	assert.Equal(t, "h:longenough", repo.users[u.ID].PasswordHash)

	_, err = svc.Register(ctx, RegisterRequest{
		Email:    "New.Person@Example.com",
		Password: "another-one",
	})
	require.ErrorIs(t, err, ErrEmailExists)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRegisterHandlerIgnoresSuppliedRole(t *testing.T) {
	repo := newMemRepo()
	h := NewHandler(NewService(repo, prefixHasher{}))

	r := chi.NewRouter()
	h.RegisterRoutes(r, func(next http.Handler) http.Handler { return next })

	body := `{"email":"sneaky@example.com","password":"password1","role":"ADMIN"}`
	req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "STUDENT", resp.Data.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost,
		"/users/register",
		strings.NewReader(body),
	))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMAIL_EXISTS")
}

func TestUpgradeToCreator(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(
		&User{ID: "s", Email: "s@example.com", Role: access.RoleStudent},
		&User{ID: "c", Email: "c@example.com", Role: access.RoleCreator},
		&User{ID: "a", Email: "a@example.com", Role: access.RoleAdmin},
	)
	svc := NewService(repo, prefixHasher{})

	u, err := svc.UpgradeToCreator(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, access.RoleCreator, u.Role)
	assert.Equal(t, access.RoleCreator, repo.users["s"].Role)

	for _, id := range []string{"s", "c", "a"} {
		_, err := svc.UpgradeToCreator(ctx, id)
		assert.ErrorIs(t, err, ErrAlreadyPrivileged, id)
	}
	assert.Equal(t, access.RoleAdmin, repo.users["a"].Role)

	_, err = svc.UpgradeToCreator(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetMeRequiresPrincipal(t *testing.T) {
	svc := NewService(newMemRepo(), prefixHasher{})

	_, err := svc.GetMe(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestListUsersRejectsUnknownRole(t *testing.T) {
	svc := NewService(newMemRepo(), prefixHasher{})

	_, _, err := svc.ListUsers(context.Background(), ListUsersParams{Role: "wizard"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRepositoryCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), &User{
		ID:    "u-1",
		Email: "dup@example.com",
		Role:  access.RoleStudent,
	})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryPromoteRoleIsConditional(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectExec(`UPDATE users\s+SET role = \$3, updated_at = NOW\(\)\s+WHERE id = \$1 AND role = \$2`).
		WithArgs("u-1", "STUDENT", "CREATOR").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.PromoteRole(context.Background(), "u-1", access.RoleStudent, access.RoleCreator)
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
