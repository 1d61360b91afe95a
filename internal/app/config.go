package app

import (
	"strings"
	"time"

	"github.com/yungbote/enrollment-backend/internal/data/db"
	"github.com/yungbote/enrollment-backend/internal/http/middleware"
	"github.com/yungbote/enrollment-backend/internal/modules/carousel"
	"github.com/yungbote/enrollment-backend/internal/modules/notify"
	"github.com/yungbote/enrollment-backend/internal/modules/wizard"
	"github.com/yungbote/enrollment-backend/internal/observability"
	"github.com/yungbote/enrollment-backend/internal/platform/envutil"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/workspace"
)

type Config struct {
	LogMode     string
	Port        string
	ServiceName string

	StoreDriver string
	DB          db.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string
	RedisKVPrefix string

	CatalogPath string

	SubmitDelay      time.Duration
	NotificationTTL  time.Duration
	CarouselInterval time.Duration
	WorkspaceIdleTTL time.Duration

	StrictInvariants bool
	CORSOrigins      []string
	MetricsEnabled   bool
	Otel             observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	logMode := envutil.String("LOG_MODE", "development", log)
	driver := strings.ToLower(envutil.String("STORE_DRIVER", StoreDriverSQLite, log))
	serviceName := envutil.String("OTEL_SERVICE_NAME", "enrollment-backend", log)
	return Config{
		LogMode:     logMode,
		Port:        envutil.String("PORT", "8080", log),
		ServiceName: serviceName,

		StoreDriver: driver,
		DB:          db.ConfigFromEnv(driver, log),

		RedisAddr:     strings.TrimSpace(envutil.String("REDIS_ADDR", "", log)),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:       envutil.Int("REDIS_DB", 0, log),
		RedisChannel:  envutil.String("REDIS_CHANNEL", "enrollment:sse", log),
		RedisKVPrefix: envutil.String("REDIS_KV_PREFIX", "enrollment:kv:", log),

		CatalogPath: envutil.String("CATALOG_PATH", "", log),

		SubmitDelay:      envutil.Duration("SUBMIT_DELAY_MS", wizard.DefaultSubmitDelay, log),
		NotificationTTL:  envutil.Duration("NOTIFICATION_TTL_MS", notify.DefaultTTL, log),
		CarouselInterval: envutil.Duration("CAROUSEL_INTERVAL_MS", carousel.DefaultInterval, log),
		WorkspaceIdleTTL: envutil.Duration("WORKSPACE_IDLE_TTL", workspace.DefaultIdleTTL, log),

		StrictInvariants: envutil.Bool("STRICT_INVARIANTS", !isProduction(logMode), log),
		CORSOrigins:      envutil.List("CORS_ORIGINS", middleware.DefaultOrigins),
		MetricsEnabled:   envutil.Bool("METRICS_ENABLED", true, log),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: serviceName,
			Environment: logMode,
			Version:     envutil.String("SERVICE_VERSION", "dev", log),
			Exporter:    envutil.String("OTEL_TRACES_EXPORTER", "", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1, log),
		},
	}
}

func isProduction(mode string) bool {
	switch strings.ToLower(mode) {
	case "prod", "production":
		return true
	}
	return false
}
