package main // entry point of the LogMyPour web server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/cache"
	"github.com/bbmitchh/Logmypour2/internal/config"
	"github.com/bbmitchh/Logmypour2/internal/database"
	"github.com/bbmitchh/Logmypour2/internal/flash"
	"github.com/bbmitchh/Logmypour2/internal/handler"
	"github.com/bbmitchh/Logmypour2/internal/logging"
	"github.com/bbmitchh/Logmypour2/internal/metrics"
	"github.com/bbmitchh/Logmypour2/internal/middleware"
	"github.com/bbmitchh/Logmypour2/internal/queue"
	"github.com/bbmitchh/Logmypour2/internal/repository"
	"github.com/bbmitchh/Logmypour2/internal/router"
	"github.com/bbmitchh/Logmypour2/internal/service"
	"github.com/bbmitchh/Logmypour2/internal/view"
)

func main() {
	os.Exit(serve())
}

// serve runs the server and returns the process exit code. The logger is
// flushed on every return path.
func serve() int {
	if err := config.LoadDotenv(); err != nil {
		log.Print(err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		log.Print(err)
		return 1
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Print(err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg config.Config, logger *zap.Logger) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	version, err := database.Migrate(ctx, db, cfg.DBDriver)
	if err != nil {
		return err
	}
	logger.Info("database ready", zap.String("driver", cfg.DBDriver), zap.Int64("schema_version", version))

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	} else if cfg.Redis.Enabled {
		logger.Warn("redis unreachable; throttling and summary cache disabled", zap.String("addr", cfg.Redis.Addr))
	}

	m := metrics.New()

	var summaries service.SummaryCache
	if sc := cache.NewSummary(cfg.Cache, rdb); sc != nil {
		summaries = sc
	}
	var events service.EventPublisher
	if cfg.Events.Enabled {
		events = queue.NewPublisher(cfg.Events)
	}

	accounts := service.NewAccounts(
		repository.NewUserRepo(db),
		repository.NewSessionRepo(db),
		service.AccountsConfig{
			SignupCode:    cfg.SignupCode,
			SessionSecret: cfg.SessionSecret,
			SessionTTL:    cfg.SessionTTL,
			BcryptCost:    cfg.BcryptCost,
		},
		m, logger,
	)
	tastings := service.NewTastings(repository.NewTastingRepo(db), summaries, events, m, logger)

	renderer, err := view.New()
	if err != nil {
		return err
	}
	flashes := flash.Store{Secure: cfg.CookieSecure}
	cookies := middleware.SessionCookies{Secure: cfg.CookieSecure}

	e := router.New(router.Deps{
		Log:         logger,
		Renderer:    renderer,
		Flash:       flashes,
		Cookies:     cookies,
		Sessions:    accounts,
		Metrics:     m,
		DB:          db,
		Auth:        handler.NewAuthHandler(accounts, flashes, cookies, logger),
		Tastings:    handler.NewTastingHandler(tastings, flashes, logger),
		Throttle:    middleware.NewTokenBucket(cfg.RateLimit, rdb, logger),
		CSRFEnabled: cfg.CSRFEnabled,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
