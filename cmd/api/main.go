package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/clinic-dashboard/internal/api/http"
	"github.com/spec-kit/clinic-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/clinic-dashboard/internal/auth"
	"github.com/spec-kit/clinic-dashboard/internal/config"
	"github.com/spec-kit/clinic-dashboard/internal/observability"
	"github.com/spec-kit/clinic-dashboard/internal/persistence"
	"github.com/spec-kit/clinic-dashboard/internal/registry"
	"github.com/spec-kit/clinic-dashboard/internal/session"
)

func main() {
	registryFile := pflag.String("registry", "", "role registry YAML file (overrides ACCESS_REGISTRY_FILE)")
	port := pflag.String("port", "", "listen port (overrides APP_PORT)")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *registryFile != "" {
		cfg.Access.RegistryFile = *registryFile
	}
	if *port != "" {
		cfg.App.Port = *port
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	reg, err := loadRegistry(ctx, cfg.Access, pg)
	if err != nil {
		logger.Fatal("failed to load role registry", zap.Error(err))
	}
	logger.Info("role registry loaded",
		zap.Int("resources", len(reg.Resources())),
		zap.Int("routes", len(reg.Routes())),
		zap.String("source", cfg.Access.RegistrySource),
	)

	dependencies := map[string]handlers.Pinger{}
	if pg.Enabled() {
		dependencies["postgres"] = pg
	}

	var sessions session.Provider
	cookieCfg := session.CookieConfig{TTL: cfg.Session.TTL(), Secure: cfg.Session.SecureCookie}
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		dependencies["redis"] = redis
		cookieCfg.Name = cfg.Session.IDCookieName
		sessions = session.NewRedisProvider(redis.Client, cfg.Session.KeyPrefix, cookieCfg)
	case config.SessionBackendMemory:
		cookieCfg.Name = cfg.Session.IDCookieName
		sessions = session.NewMemoryProvider(cookieCfg)
	default:
		cookieCfg.Name = cfg.Session.CookieName
		sessions = session.NewCookieProvider(cookieCfg)
	}

	metrics := observability.NewMetrics()
	undeclared := auth.ParseUndeclaredPolicy(cfg.Access.UndeclaredPolicy)
	guard := auth.NewGuard(auth.NewDecoder(), logger)
	gate := auth.NewGate(guard, reg, sessions, auth.GateConfig{
		SignInPath: cfg.Access.SignInPath,
		DeniedPath: cfg.Access.DeniedPath,
		Undeclared: undeclared,
	}, logger, metrics)
	menus := auth.NewMenuCache(reg.Navigation(), auth.MenuFilter{Undeclared: undeclared})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareOptions{
		Timeout:    cfg.App.RequestTimeout(),
		Production: cfg.App.IsProduction(),
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Session:    handlers.NewSessionHandler(guard, sessions, cfg.Access.SignInPath, logger),
		Navigation: handlers.NewNavigationHandler(menus, gate, reg, sessions),
		Agenda:     handlers.NewAgendaHandler(),
		Gate:       gate,
		Registry:   reg,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("session_backend", cfg.Session.Backend))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func loadRegistry(ctx context.Context, cfg config.AccessConfig, pg *persistence.Postgres) (*registry.Registry, error) {
	var (
		reg *registry.Registry
		err error
	)
	if cfg.RegistryFile != "" {
		reg, err = registry.LoadFile(cfg.RegistryFile)
	} else {
		reg, err = registry.Default()
	}
	if err != nil {
		return nil, err
	}

	if cfg.RegistrySource == config.RegistrySourcePostgres {
		if !pg.Enabled() {
			return nil, fmt.Errorf("postgres registry source requires a database connection")
		}
		return registry.ApplyPostgres(ctx, reg, pg.Pool)
	}
	return reg, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
