// AngelaMos | 2026
// fallback.go

package storage

import (
	"context"
	"log/slog"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

// FallbackStore writes to primary and, on any failure, to local disk. The
// caller never sees the primary's error.
type FallbackStore struct {
	primary Store
	local   *LocalStore
	logger  *slog.Logger
	metrics *core.Metrics
}

func NewFallbackStore(
	primary Store,
	local *LocalStore,
	logger *slog.Logger,
	metrics *core.Metrics,
) *FallbackStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackStore{
		primary: primary,
		local:   local,
		logger:  logger,
		metrics: metrics,
	}
}

func (f *FallbackStore) Store(
	ctx context.Context,
	data []byte,
	contentType, filename string,
) (string, error) {
	if f.primary != nil {
		url, err := f.primary.Store(ctx, data, contentType, filename)
		f.metrics.StorageWrite("s3", err)
		if err == nil {
			return url, nil
		}
		f.logger.WarnContext(ctx, "primary storage failed, falling back to local disk",
			"filename", filename,
			"error", err,
		)
	}

	url, err := f.local.Store(ctx, data, contentType, filename)
	f.metrics.StorageWrite("local", err)
	return url, err
}
