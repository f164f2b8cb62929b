// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/courses")

	c, err := load("", "")
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, time.Hour, c.Auth.ResetTokenTTL)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.Equal(t, int64(20<<20), c.Upload.MaxPDFBytes)
	assert.Equal(t, "uploads", c.Storage.LocalDir)
	assert.False(t, c.Redis.Enabled())
	assert.False(t, c.CacheEnabled())
	assert.True(t, c.IsDevelopment())
	assert.Equal(t, "0.0.0.0:8080", c.Server.Address())
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	path := writeYAML(t, `
app:
  environment: staging
server:
  port: 9000
database:
  url: postgres://file/courses
cache:
  ttl: 30s
`)
	t.Setenv("PORT", "9100")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	c, err := load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "staging", c.App.Environment)
	assert.Equal(t, 9100, c.Server.Port)
	assert.Equal(t, "postgres://file/courses", c.Database.URL)
	assert.Equal(t, 30*time.Second, c.Cache.TTL)
	assert.True(t, c.CacheEnabled())
}

func TestLoadReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("DATABASE_URL=postgres://dotenv/courses\n"), 0o600))
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	c, err := load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, "postgres://dotenv/courses", c.Database.URL)
}

func TestLoadMissingDotenvIsIgnored(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/courses")

	_, err := load("", filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing database url",
			env:  map[string]string{"DATABASE_URL": ""},
			want: "DATABASE_URL is required",
		},
		{
			name: "s3 without bucket",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/courses",
				"S3_ENABLED":   "true",
			},
			want: "S3_BUCKET is required",
		},
		{
			name: "seeding in production",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/courses",
				"ENVIRONMENT":  "production",
				"SEED_ENABLED": "true",
			},
			want: "SEED_ENABLED must be false in production",
		},
		{
			name: "non positive upload limit",
			env: map[string]string{
				"DATABASE_URL":         "postgres://localhost/courses",
				"UPLOAD_MAX_PDF_BYTES": "0",
			},
			want: "upload.max_pdf_bytes must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := load("", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	path := writeYAML(t, `
database:
  url: postgres://localhost/courses
cors:
  allowed_origins: ["*"]
  allow_credentials: true
`)

	_, err := load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS wildcard")
}
