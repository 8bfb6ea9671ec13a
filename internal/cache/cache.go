package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// ReportCache stores computed report payloads. Implementations must treat a
// miss and a disabled cache the same way: Get returns false with no error.
type ReportCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

type Noop struct{}

func NewNoop() ReportCache {
	return Noop{}
}

func (Noop) Get(_ context.Context, _ string, _ any) (bool, error) {
	return false, nil
}

func (Noop) Set(_ context.Context, _ string, _ any, _ time.Duration) error {
	return nil
}

func (Noop) InvalidateAll(_ context.Context) error {
	return nil
}

// Key joins a report name with its parameters. Long parameter lists are
// hashed so keys stay short.
func Key(name string, params ...string) string {
	joined := strings.Join(params, "|")
	if len(joined) <= 64 {
		return name + ":" + joined
	}
	sum := sha1.Sum([]byte(joined))
	return name + ":" + hex.EncodeToString(sum[:])
}
