// AngelaMos | 2026
// storage.go

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/course-backend/internal/config"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

const pdfPrefix = "pdfs"

// Store persists an uploaded file and returns the URL clients fetch it from.
type Store interface {
	Store(ctx context.Context, data []byte, contentType, filename string) (string, error)
}

// New builds the configured store. When S3 is enabled the result writes to
// S3 and falls back to local disk; otherwise it writes to local disk only.
// The returned LocalStore is the one that must be served over HTTP.
func New(
	ctx context.Context,
	cfg config.StorageConfig,
	logger *slog.Logger,
	metrics *core.Metrics,
) (Store, *LocalStore, error) {
	local, err := NewLocalStore(cfg.LocalDir, cfg.LocalURLPrefix)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.S3Enabled {
		return NewFallbackStore(nil, local, logger, metrics), local, nil
	}

	s3Store, err := NewS3Store(ctx, cfg)
	if err != nil {
		logger.Warn("s3 storage unavailable, using local disk",
			"bucket", cfg.S3Bucket,
			"error", err,
		)
		return NewFallbackStore(nil, local, logger, metrics), local, nil
	}

	return NewFallbackStore(s3Store, local, logger, metrics), local, nil
}

// objectName prefixes a random id so uploads with the same name never
// collide, and strips anything that is not safe in a key or path segment.
func objectName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, base)
	clean = strings.TrimLeft(clean, ".")
	if clean == "" {
		clean = "file.pdf"
	}
	return fmt.Sprintf("%s_%s", uuid.New().String(), clean)
}
