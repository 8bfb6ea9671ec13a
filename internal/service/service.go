package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"stockpos/backend/internal/cache"
	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/logger"
	"stockpos/backend/internal/store"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo     store.Repository
	reports  cache.ReportCache
	cacheTTL time.Duration
	loc      *time.Location
	now      func() time.Time
}

// New wires the service. A nil cache disables report caching and a nil
// location means UTC.
func New(repo store.Repository, reportCache cache.ReportCache, loc *time.Location, cacheTTL time.Duration) *Service {
	if reportCache == nil {
		reportCache = cache.NewNoop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &Service{
		repo:     repo,
		reports:  reportCache,
		cacheTTL: cacheTTL,
		loc:      loc,
		now:      time.Now,
	}
}

// Repository exposes the underlying store for callers that bootstrap data.
func (s *Service) Repository() store.Repository {
	return s.repo
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || !actor.IsAdmin {
		return fmt.Errorf("%w: admin role required", store.ErrForbidden)
	}
	return nil
}

func (s *Service) invalidateReports(ctx context.Context) {
	if err := s.reports.InvalidateAll(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("report cache invalidation failed")
	}
}

// cached loads key from the report cache into dest, or computes it with
// build and stores the result. Cache failures only log.
func cached[T any](ctx context.Context, s *Service, key string, build func() (T, error)) (T, error) {
	var out T
	hit, err := s.reports.Get(ctx, key, &out)
	if err != nil {
		logger.Log.Warn().Err(err).Str("key", key).Msg("report cache read failed")
	}
	if hit {
		return out, nil
	}

	out, err = build()
	if err != nil {
		return out, err
	}
	if err := s.reports.Set(ctx, key, out, s.cacheTTL); err != nil {
		logger.Log.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
	return out, nil
}

// NormalizePage clamps skip and limit to the API paging rules.
func NormalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return skip, limit
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{store.ErrValidation}, args...)...)
}

func requireText(field, value string, minLen, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) < minLen {
		if minLen <= 1 {
			return "", invalid("%s is required", field)
		}
		return "", invalid("%s must be at least %d characters", field, minLen)
	}
	if maxLen > 0 && len(value) > maxLen {
		return "", invalid("%s must be at most %d characters", field, maxLen)
	}
	return value, nil
}

func optionalText(field, value string, maxLen int) (string, error) {
	return requireText(field, value, 0, maxLen)
}

func validEmail(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "", invalid("%s is not a valid email address", field)
	}
	return value, nil
}

func percentInRange(field string, value float64) error {
	if value < 0 || value > 100 {
		return invalid("%s must be between 0 and 100", field)
	}
	return nil
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
