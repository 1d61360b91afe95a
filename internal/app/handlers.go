package app

import (
	apphttp "github.com/yungbote/enrollment-backend/internal/http"
	httpH "github.com/yungbote/enrollment-backend/internal/http/handlers"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	Catalog      *httpH.CatalogHandler
	Preferences  *httpH.PreferencesHandler
	Calculator   *httpH.CalculatorHandler
	Wizard       *httpH.WizardHandler
	Testimonials *httpH.TestimonialsHandler
	Realtime     *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, deps httpH.Deps) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(),
		Catalog:      httpH.NewCatalogHandler(deps),
		Preferences:  httpH.NewPreferencesHandler(deps),
		Calculator:   httpH.NewCalculatorHandler(deps),
		Wizard:       httpH.NewWizardHandler(deps),
		Testimonials: httpH.NewTestimonialsHandler(deps),
		Realtime:     httpH.NewRealtimeHandler(deps),
	}
}

func wireServer(log *logger.Logger, cfg Config, deps httpH.Deps, handlers Handlers) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:                 log,
		ServiceName:         cfg.ServiceName,
		CORSOrigins:         cfg.CORSOrigins,
		Metrics:             deps.Metrics,
		MetricsEnabled:      cfg.MetricsEnabled,
		Tracing:             cfg.Otel.Enabled,
		HealthHandler:       handlers.Health,
		CatalogHandler:      handlers.Catalog,
		PreferencesHandler:  handlers.Preferences,
		CalculatorHandler:   handlers.Calculator,
		WizardHandler:       handlers.Wizard,
		TestimonialsHandler: handlers.Testimonials,
		RealtimeHandler:     handlers.Realtime,
	})
}
