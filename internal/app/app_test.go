package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/enrollment-backend/internal/data/kvstore"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

func TestResolveStoreMemory(t *testing.T) {
	store, closeFn, err := resolveStore(logger.Nop(), Config{StoreDriver: StoreDriverMemory}, nil)
	if err != nil {
		t.Fatalf("resolveStore: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*kvstore.Memory); !ok {
		t.Fatalf("expected memory store, got=%T", store)
	}
}

func TestResolveStoreSQLiteRoundTrip(t *testing.T) {
	cfg := Config{StoreDriver: StoreDriverSQLite}
	cfg.DB.SQLitePath = "file::memory:"
	store, closeFn, err := resolveStore(logger.Nop(), cfg, nil)
	if err != nil {
		t.Fatalf("resolveStore: %v", err)
	}
	t.Cleanup(func() { _ = closeFn() })

	ctx := context.Background()
	if err := store.Put(ctx, "client:abc:theme", []byte(`"dark"`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, "client:abc:theme")
	if err != nil || string(got) != `"dark"` {
		t.Fatalf("Get: got=%s err=%v", got, err)
	}
}

func TestResolveStoreErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want StoreBootstrapErrorCode
	}{
		{"unknown driver", Config{StoreDriver: "mongo"}, StoreBootstrapErrorInvalidDriver},
		{"redis without address", Config{StoreDriver: StoreDriverRedis}, StoreBootstrapErrorMissingRedisAddr},
	}
	for _, tc := range cases {
		_, _, err := resolveStore(logger.Nop(), tc.cfg, nil)
		var got *StoreBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("%s: expected StoreBootstrapError, got=%T %v", tc.name, err, err)
		}
		if got.Code != tc.want || got.Driver != tc.cfg.StoreDriver {
			t.Fatalf("%s: code: want=%q got=%q", tc.name, tc.want, got.Code)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LOG_MODE", "production")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SUBMIT_DELAY_MS", "")
	t.Setenv("STRICT_INVARIANTS", "")
	t.Setenv("CORS_ORIGINS", "")
	cfg := LoadConfig(logger.Nop())
	if cfg.StoreDriver != StoreDriverSQLite {
		t.Fatalf("store driver: got=%q want=%q", cfg.StoreDriver, StoreDriverSQLite)
	}
	if cfg.SubmitDelay != 2*time.Second {
		t.Fatalf("submit delay: got=%s want=2s", cfg.SubmitDelay)
	}
	if cfg.StrictInvariants {
		t.Fatalf("strict invariants default off in production")
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Fatalf("cors origins should fall back to defaults")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LOG_MODE", "development")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("SUBMIT_DELAY_MS", "250")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")
	cfg := LoadConfig(logger.Nop())
	if cfg.StoreDriver != StoreDriverMemory || cfg.SubmitDelay != 250*time.Millisecond {
		t.Fatalf("overrides: got driver=%q delay=%s", cfg.StoreDriver, cfg.SubmitDelay)
	}
	if !cfg.StrictInvariants {
		t.Fatalf("strict invariants default on outside production")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors: got=%v", cfg.CORSOrigins)
	}
	if cfg.Otel.SampleRatio != 0.5 {
		t.Fatalf("sample ratio: got=%v", cfg.Otel.SampleRatio)
	}
}
