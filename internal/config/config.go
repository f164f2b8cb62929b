// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App      AppConfig      `koanf:"app"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	Cache    CacheConfig    `koanf:"cache"`
	Upload   UploadConfig   `koanf:"upload"`
	CORS     CORSConfig     `koanf:"cors"`
	Log      LogConfig      `koanf:"log"`
	Otel     OtelConfig     `koanf:"otel"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Seed     SeedConfig     `koanf:"seed"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

type AuthConfig struct {
	ResetTokenTTL time.Duration `koanf:"reset_token_ttl"`
}

type StorageConfig struct {
	S3Enabled      bool   `koanf:"s3_enabled"`
	S3Bucket       string `koanf:"s3_bucket"`
	S3Region       string `koanf:"s3_region"`
	S3Endpoint     string `koanf:"s3_endpoint"`
	S3AccessKey    string `koanf:"s3_access_key"`
	S3SecretKey    string `koanf:"s3_secret_key"`
	S3UsePathStyle bool   `koanf:"s3_use_path_style"`
	S3PublicURL    string `koanf:"s3_public_url"`
	LocalDir       string `koanf:"local_dir"`
	LocalURLPrefix string `koanf:"local_url_prefix"`
}

type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

type UploadConfig struct {
	MaxPDFBytes int64 `koanf:"max_pdf_bytes"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type SeedConfig struct {
	Enabled         bool   `koanf:"enabled"`
	AdminEmail      string `koanf:"admin_email"`
	AdminPassword   string `koanf:"admin_password"`
	StudentEmail    string `koanf:"student_email"`
	StudentPassword string `koanf:"student_password"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath, ".env")
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func load(configPath, dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load dotenv: %w", err)
		}
	}

	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Course Backend",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "60s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 2,

		"auth.reset_token_ttl": "1h",

		"storage.s3_enabled":        false,
		"storage.s3_region":         "eu-west-1",
		"storage.local_dir":         "uploads",
		"storage.local_url_prefix":  "/files",
		"storage.s3_use_path_style": false,

		"cache.enabled": true,
		"cache.ttl":     "5m",

		"upload.max_pdf_bytes": 20 << 20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "course-backend",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",

		"seed.enabled":          false,
		"seed.admin_email":      "admin@example.com",
		"seed.admin_password":   "pass1234",
		"seed.student_email":    "student@example.com",
		"seed.student_password": "pass4321",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"RESET_TOKEN_TTL":             "auth.reset_token_ttl",
	"S3_ENABLED":                  "storage.s3_enabled",
	"S3_BUCKET":                   "storage.s3_bucket",
	"AWS_REGION":                  "storage.s3_region",
	"S3_ENDPOINT":                 "storage.s3_endpoint",
	"S3_ACCESS_KEY":               "storage.s3_access_key",
	"S3_SECRET_KEY":               "storage.s3_secret_key",
	"S3_USE_PATH_STYLE":           "storage.s3_use_path_style",
	"S3_PUBLIC_URL":               "storage.s3_public_url",
	"UPLOAD_DIR":                  "storage.local_dir",
	"CACHE_ENABLED":               "cache.enabled",
	"CACHE_TTL":                   "cache.ttl",
	"UPLOAD_MAX_PDF_BYTES":        "upload.max_pdf_bytes",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"METRICS_ENABLED":             "metrics.enabled",
	"METRICS_PATH":                "metrics.path",
	"SEED_ENABLED":                "seed.enabled",
	"APP_ADMIN_EMAIL":             "seed.admin_email",
	"APP_ADMIN_PASSWORD":          "seed.admin_password",
	"APP_STUDENT_EMAIL":           "seed.student_email",
	"APP_STUDENT_PASSWORD":        "seed.student_password",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.ResetTokenTTL <= 0 {
		return fmt.Errorf("auth.reset_token_ttl must be positive")
	}

	if c.Storage.S3Enabled && c.Storage.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when S3 storage is enabled")
	}

	if c.Storage.LocalDir == "" {
		return fmt.Errorf("storage.local_dir is required")
	}

	if c.Upload.MaxPDFBytes <= 0 {
		return fmt.Errorf("upload.max_pdf_bytes must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
		if c.Seed.Enabled {
			return fmt.Errorf("SEED_ENABLED must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled && c.Redis.Enabled()
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
