package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/enrollment-backend/internal/data/kvstore"
	apphttp "github.com/yungbote/enrollment-backend/internal/http"
	httpH "github.com/yungbote/enrollment-backend/internal/http/handlers"
	"github.com/yungbote/enrollment-backend/internal/modules/catalog"
	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/observability"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/realtime"
	"github.com/yungbote/enrollment-backend/internal/realtime/bus"
	"github.com/yungbote/enrollment-backend/internal/workspace"
)

type App struct {
	Log        *logger.Logger
	Cfg        Config
	Catalog    *catalog.Catalog
	Store      kvstore.Store
	SSEHub     *realtime.SSEHub
	Fanout     *bus.Fanout
	Workspaces *workspace.Registry
	Metrics    *observability.Metrics
	Server     *apphttp.Server

	redis     *goredis.Client
	closers   []func() error
	otelClose func(context.Context) error
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	if isProduction(cfg.LogMode) {
		gin.SetMode(gin.ReleaseMode)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelClose = observability.InitOTel(ctx, log, cfg.Otel)

	cat, err := loadCatalog(log, cfg.CatalogPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Catalog = cat

	if cfg.RedisAddr != "" {
		a.redis = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	store, closeStore, err := resolveStore(log, cfg, a.redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close, closeStore)

	a.SSEHub = realtime.NewSSEHub(log)
	var b bus.Bus
	if a.redis != nil {
		b, err = bus.NewRedisBus(log, a.redis, cfg.RedisChannel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis SSE bus: %w", err)
		}
		a.closers = append(a.closers, b.Close)
	}
	a.Fanout = bus.NewFanout(log, a.SSEHub, b)

	a.Workspaces, err = workspace.NewRegistry(workspace.Deps{
		Catalog:          cat,
		Engine:           pricing.NewEngine(cat, pricing.NewTiers(cat.VolumeTiers())),
		Store:            store,
		Out:              a.Fanout,
		SubmitDelay:      cfg.SubmitDelay,
		NotificationTTL:  cfg.NotificationTTL,
		CarouselInterval: cfg.CarouselInterval,
		Log:              log,
	}, cfg.WorkspaceIdleTTL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init workspaces: %w", err)
	}

	a.Metrics = observability.NewMetrics()
	deps := httpH.Deps{
		Log:              log,
		Catalog:          cat,
		Workspaces:       a.Workspaces,
		Hub:              a.SSEHub,
		Metrics:          a.Metrics,
		StrictInvariants: cfg.StrictInvariants,
	}
	a.Server = wireServer(log, cfg, deps, wireHandlers(log, deps))
	return a, nil
}

func loadCatalog(log *logger.Logger, path string) (*catalog.Catalog, error) {
	if path == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("load embedded catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	log.Info("Catalog loaded", "path", path, "courses", len(cat.AllIDs()))
	return cat, nil
}

// Run serves HTTP, forwards bus traffic and sweeps idle workspaces until ctx
// is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("Server listening", "port", a.Cfg.Port)
		return a.Server.Run(gctx, ":"+a.Cfg.Port)
	})
	g.Go(func() error { return a.Fanout.Run(gctx) })
	g.Go(func() error { return a.Workspaces.Run(gctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Workspaces != nil {
		a.Workspaces.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.otelClose != nil {
		_ = a.otelClose(context.Background())
		a.otelClose = nil
	}
	a.Log.Sync()
}
