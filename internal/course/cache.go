// AngelaMos | 2026
// cache.go

package course

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

const (
	catalogKey           = "catalog:courses"
	catalogGenerationKey = "catalog:courses:generation"
)

// unknownGeneration never matches a stored generation, so a fill stamped
// with it is never served.
const unknownGeneration int64 = -1

// CatalogCache holds the unfiltered course list. Get reports the generation
// current at the time of the lookup; Set stores the list under that
// generation, and entries written under an older generation are never
// returned. Invalidate bumps the generation. Read failures are misses.
type CatalogCache interface {
	Get(ctx context.Context) (courses []Course, generation int64, ok bool)
	Set(ctx context.Context, generation int64, courses []Course)
	Invalidate(ctx context.Context) error
}

type RedisCatalogCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *core.Metrics
}

func NewRedisCatalogCache(
	client *redis.Client,
	ttl time.Duration,
	logger *slog.Logger,
	metrics *core.Metrics,
) *RedisCatalogCache {
	return &RedisCatalogCache{
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// cachedCourse mirrors Course with JSON tags; Course itself only carries
// db tags.
type cachedCourse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	AuthorID      string    `json:"author_id"`
	Restricted    bool      `json:"restricted"`
	AllowedEmails []string  `json:"allowed_emails"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type cachedCatalog struct {
	Generation int64          `json:"generation"`
	Courses    []cachedCourse `json:"courses"`
}

func (c *RedisCatalogCache) Get(ctx context.Context) ([]Course, int64, bool) {
	vals, err := c.client.MGet(ctx, catalogGenerationKey, catalogKey).Result()
	if err != nil {
		c.logger.Warn("catalog cache read failed", "error", err)
		c.metrics.CacheLookup(false)
		return nil, unknownGeneration, false
	}

	generation, err := parseGeneration(vals[0])
	if err != nil {
		c.logger.Warn("catalog cache generation corrupt", "error", err)
		c.metrics.CacheLookup(false)
		return nil, unknownGeneration, false
	}

	raw, ok := vals[1].(string)
	if !ok {
		c.metrics.CacheLookup(false)
		return nil, generation, false
	}

	var cached cachedCatalog
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		c.logger.Warn("catalog cache entry corrupt", "error", err)
		c.metrics.CacheLookup(false)
		return nil, generation, false
	}

	if cached.Generation != generation {
		c.metrics.CacheLookup(false)
		return nil, generation, false
	}

	courses := make([]Course, 0, len(cached.Courses))
	for _, cc := range cached.Courses {
		courses = append(courses, Course{
			ID:            cc.ID,
			Title:         cc.Title,
			Description:   cc.Description,
			AuthorID:      cc.AuthorID,
			Restricted:    cc.Restricted,
			AllowedEmails: cc.AllowedEmails,
			CreatedAt:     cc.CreatedAt,
			UpdatedAt:     cc.UpdatedAt,
		})
	}

	c.metrics.CacheLookup(true)
	return courses, generation, true
}

func (c *RedisCatalogCache) Set(ctx context.Context, generation int64, courses []Course) {
	if generation == unknownGeneration {
		return
	}

	cached := cachedCatalog{
		Generation: generation,
		Courses:    make([]cachedCourse, 0, len(courses)),
	}
	for _, course := range courses {
		cached.Courses = append(cached.Courses, cachedCourse{
			ID:            course.ID,
			Title:         course.Title,
			Description:   course.Description,
			AuthorID:      course.AuthorID,
			Restricted:    course.Restricted,
			AllowedEmails: []string(course.AllowedEmails),
			CreatedAt:     course.CreatedAt,
			UpdatedAt:     course.UpdatedAt,
		})
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		c.logger.Warn("catalog cache encode failed", "error", err)
		return
	}

	if err := c.client.Set(ctx, catalogKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", "error", err)
	}
}

// Invalidate bumps the generation before dropping the entry, so a fill that
// read the database before this call can no longer be served.
func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, catalogGenerationKey)
		pipe.Del(ctx, catalogKey)
		return nil
	})
	if err != nil {
		c.logger.Warn("catalog cache invalidate failed", "error", err)
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}

func parseGeneration(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected generation type %T", v)
	}
	return strconv.ParseInt(s, 10, 64)
}

type noopCache struct{}

// NoopCatalogCache always misses.
func NoopCatalogCache() CatalogCache { return noopCache{} }

func (noopCache) Get(context.Context) ([]Course, int64, bool) { return nil, 0, false }
func (noopCache) Set(context.Context, int64, []Course)        {}
func (noopCache) Invalidate(context.Context) error            { return nil }
