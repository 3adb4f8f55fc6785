package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tradewatch/signal-monitor-go/internal/analytics"
	"github.com/tradewatch/signal-monitor-go/internal/api"
	"github.com/tradewatch/signal-monitor-go/internal/config"
	"github.com/tradewatch/signal-monitor-go/internal/database"
	"github.com/tradewatch/signal-monitor-go/internal/history"
	"github.com/tradewatch/signal-monitor-go/internal/monitor"
	"github.com/tradewatch/signal-monitor-go/internal/notifier"
	"github.com/tradewatch/signal-monitor-go/internal/source"
)

func main() {
	// Load .env if present; real environment takes precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "run":
		runMonitor(cfg, logger)
	case "check":
		runOnce(cfg, logger, func(ctx context.Context, m *monitor.Monitor) error {
			report, err := m.RunCheck(ctx)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"total_signals": report.Aggregate.TotalSignals,
				"success_rate":  fmt.Sprintf("%.1f%%", report.Aggregate.SuccessRate),
			}).Info("Check completed")
			return nil
		})
	case "report":
		runOnce(cfg, logger, func(ctx context.Context, m *monitor.Monitor) error {
			return m.RunReport(ctx)
		})
	case "export":
		runOnce(cfg, logger, func(ctx context.Context, m *monitor.Monitor) error {
			path, err := m.RunExport(ctx)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		})
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\nusage: monitor [run|check|report|export]\n", command)
		os.Exit(2)
	}
}

// deps bundles the wired collaborators for one process lifetime.
type deps struct {
	monitor *monitor.Monitor
	db      *database.PostgresDB
	redis   *database.RedisClient
}

func (d *deps) close() {
	d.db.Close()
	if d.redis != nil {
		d.redis.Close()
	}
}

// buildMonitor wires the collaborators. Redis is optional; the record
// database is not.
func buildMonitor(cfg *config.Config, logger *logrus.Logger) (*deps, error) {
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, report cache disabled")
		redis = nil
	}

	var sink notifier.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tg, err := notifier.NewTelegramNotifier(cfg.Telegram, logger)
		if err != nil {
			db.Close()
			if redis != nil {
				redis.Close()
			}
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		sink = tg
	} else {
		logger.Warn("Telegram credentials not configured, notifications disabled")
		sink = notifier.NoopNotifier{}
	}

	engine := analytics.NewEngine(cfg.Thresholds, cfg.ConfidenceBuckets)
	evaluator := analytics.NewEvaluator(cfg.Thresholds, cfg.ConfidenceBuckets)
	store := history.NewStore(cfg.History)
	src := source.NewPostgresSource(db.Pool, logger)

	m := monitor.New(cfg, src, engine, evaluator, store, sink, redis, logger)
	return &deps{monitor: m, db: db, redis: redis}, nil
}

// runOnce executes a single on-demand operation and exits non-zero on
// collaborator failure.
func runOnce(cfg *config.Config, logger *logrus.Logger, op func(context.Context, *monitor.Monitor) error) {
	d, err := buildMonitor(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	defer d.close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := op(ctx, d.monitor); err != nil {
		logger.WithError(err).Error("Operation failed")
		d.close()
		os.Exit(1)
	}
}

// runMonitor starts the continuous loop plus the optional status API.
func runMonitor(cfg *config.Config, logger *logrus.Logger) {
	d, err := buildMonitor(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	defer d.close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var srv *http.Server
	if cfg.Server.Enabled {
		if cfg.Environment != "development" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.Default()
		api.SetupRoutes(router, d.db, d.redis, d.monitor.History())

		srv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}
		go func() {
			logger.WithField("port", cfg.Server.Port).Info("Status API listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Error("Status API failed")
			}
		}()
	}

	if err := d.monitor.Run(ctx); err != nil {
		logger.WithError(err).Error("Monitor loop failed")
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Status API forced to shut down")
		}
	}
	logger.Info("Monitor exited")
}
