package cache

import (
	"context"
	"strings"
	"testing"

	"stockpos/backend/internal/config"
)

func TestNoopAlwaysMisses(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()
	if err := c.Set(ctx, "k", map[string]int{"a": 1}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	var dest map[string]int
	hit, err := c.Get(ctx, "k", &dest)
	if err != nil || hit {
		t.Fatalf("expected miss without error, got hit=%v err=%v", hit, err)
	}
	if err := c.InvalidateAll(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}

func TestKeyHashesLongParams(t *testing.T) {
	if got := Key("sales-summary", "7"); got != "sales-summary:7" {
		t.Fatalf("unexpected short key %s", got)
	}
	long := Key("top", strings.Repeat("x", 100))
	if len(long) != len("top:")+40 {
		t.Fatalf("expected sha1 hex suffix, got %s", long)
	}
	if Key("top", strings.Repeat("x", 100)) != long {
		t.Fatalf("expected deterministic key")
	}
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.Config{RedisURL: "redis://:secret@cache:6380/3"})
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "secret" || opts.DB != 3 {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = buildRedisOptions(config.Config{RedisAddr: "10.0.0.5:6379", RedisDB: 1})
	if err != nil {
		t.Fatalf("addr options: %v", err)
	}
	if opts.Addr != "10.0.0.5:6379" || opts.DB != 1 {
		t.Fatalf("unexpected options %+v", opts)
	}

	if _, err := buildRedisOptions(config.Config{RedisURL: "http://nope"}); err == nil {
		t.Fatalf("expected invalid url error")
	}
}
