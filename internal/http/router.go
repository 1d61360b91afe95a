package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/enrollment-backend/internal/http/handlers"
	httpMW "github.com/yungbote/enrollment-backend/internal/http/middleware"
	"github.com/yungbote/enrollment-backend/internal/observability"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics
	// MetricsEnabled mounts GET /metrics.
	MetricsEnabled bool
	Tracing        bool

	HealthHandler       *httpH.HealthHandler
	CatalogHandler      *httpH.CatalogHandler
	PreferencesHandler  *httpH.PreferencesHandler
	CalculatorHandler   *httpH.CalculatorHandler
	WizardHandler       *httpH.WizardHandler
	TestimonialsHandler *httpH.TestimonialsHandler
	RealtimeHandler     *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachClientIdentity())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
	}
	r.Use(gin.Recovery())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.MetricsEnabled && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Catalog
		if cfg.CatalogHandler != nil {
			api.GET("/courses", cfg.CatalogHandler.ListCourses)
			api.GET("/courses/:id", cfg.CatalogHandler.GetCourse)
			api.GET("/schedules", cfg.CatalogHandler.ListSchedules)
		}

		// Preferences
		if cfg.PreferencesHandler != nil {
			api.GET("/preferences/theme", cfg.PreferencesHandler.GetTheme)
			api.PUT("/preferences/theme", cfg.PreferencesHandler.PutTheme)
			api.POST("/preferences/theme/toggle", cfg.PreferencesHandler.ToggleTheme)
			api.GET("/quotes", cfg.PreferencesHandler.ListQuotes)
		}

		// Calculator
		if cfg.CalculatorHandler != nil {
			api.GET("/calculator", cfg.CalculatorHandler.View)
			api.POST("/calculator/update", cfg.CalculatorHandler.Update)
			api.POST("/calculator/calculate", cfg.CalculatorHandler.Calculate)
			api.POST("/calculator/reset", cfg.CalculatorHandler.Reset)
			api.POST("/calculator/save", cfg.CalculatorHandler.Save)
		}

		// Wizard
		if cfg.WizardHandler != nil {
			wz := api.Group("/wizard")
			wz.POST("", cfg.WizardHandler.Mount)
			wz.GET("", cfg.WizardHandler.Get)
			wz.PUT("/personal", cfg.WizardHandler.PutPersonal)
			wz.PUT("/courses", cfg.WizardHandler.PutCourses)
			wz.PUT("/schedule", cfg.WizardHandler.PutSchedule)
			wz.PUT("/funding", cfg.WizardHandler.PutFunding)
			wz.PUT("/consent", cfg.WizardHandler.PutConsent)
			wz.POST("/validate-field", cfg.WizardHandler.ValidateField)
			wz.POST("/advance", cfg.WizardHandler.Advance)
			wz.POST("/retreat", cfg.WizardHandler.Retreat)
			wz.POST("/submit", cfg.WizardHandler.Submit)
			wz.POST("/reset", cfg.WizardHandler.Reset)
			wz.GET("/review", cfg.WizardHandler.Review)
		}

		// Testimonials
		if cfg.TestimonialsHandler != nil {
			api.GET("/testimonials", cfg.TestimonialsHandler.List)
			api.POST("/testimonials/next", cfg.TestimonialsHandler.Next)
			api.POST("/testimonials/prev", cfg.TestimonialsHandler.Prev)
			api.POST("/testimonials/start", cfg.TestimonialsHandler.Start)
			api.POST("/testimonials/pause", cfg.TestimonialsHandler.Pause)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/notifications/stream", cfg.RealtimeHandler.SSEStream)
			api.GET("/notifications", cfg.RealtimeHandler.Recent)
			api.DELETE("/notifications", cfg.RealtimeHandler.Hide)
		}
	}

	return r
}
