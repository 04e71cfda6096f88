package main // consumer drains tasting activity events into a log file

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/config"
	"github.com/bbmitchh/Logmypour2/internal/logging"
	"github.com/bbmitchh/Logmypour2/internal/queue"
)

func main() {
	os.Exit(consume())
}

// consume drains the queue until a signal arrives and returns the process
// exit code. The logger is flushed on every return path.
func consume() int {
	if err := config.LoadDotenv(); err != nil {
		log.Print(err)
		return 1
	}
	cfg, err := config.LoadWorker()
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("consuming tasting events",
		zap.String("queue", cfg.Events.Queue),
		zap.String("log_path", cfg.Events.LogPath),
	)
	err = queue.NewConsumer(cfg.Events, logger).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", zap.Error(err))
		return 1
	}
	logger.Info("consumer stopped")
	return 0
}
