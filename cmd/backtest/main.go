package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/spothedge/internal/backtest/application"
	"github.com/wyfcoding/spothedge/internal/backtest/domain"
	"github.com/wyfcoding/spothedge/internal/backtest/infrastructure/client"
	"github.com/wyfcoding/spothedge/internal/backtest/infrastructure/persistence/mysql"
	"github.com/wyfcoding/spothedge/internal/backtest/interfaces"
	mdinfra "github.com/wyfcoding/spothedge/internal/marketdata/infrastructure"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/backtest/config.toml", "config file path")

// Config 服务扩展配置
type Config struct {
	config.Config `mapstructure:",squash"`
	Backtest      struct {
		MockSeed int64 `mapstructure:"mock_seed" toml:"mock_seed"`
	} `mapstructure:"backtest" toml:"backtest"`
}

func main() {
	flag.Parse()

	// 1. Config
	var cfg Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	logCfg := &logging.Config{Service: cfg.Server.Name, Level: cfg.Log.Level}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. Metrics
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)
	if cfg.Metrics.Enabled {
		go metricsImpl.ExposeHTTP(cfg.Metrics.Port)
	}

	// 4. Database
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(&domain.BacktestTask{}, &domain.BacktestReport{}); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. 行情历史数据源 (生产环境替换为交易所适配器)
	gateway := mdinfra.NewMockGateway(cfg.Backtest.MockSeed)
	barSource := client.NewBarSourceAdapter(gateway)

	// 6. Application
	repo := mysql.NewBacktestRepository(db.RawDB())
	backtestService := application.NewBacktestService(repo, barSource, logger.Logger)

	// 7. Interfaces
	if cfg.Server.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	sys := r.Group("/sys")
	{
		sys.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		sys.GET("/ready", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "READY"}) })
	}

	api := r.Group("/api/v1")
	{
		interfaces.NewHTTPHandler(backtestService).RegisterRoutes(api)
	}

	// 8. Start
	g, ctx := errgroup.WithContext(context.Background())

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.HTTP.Port), Handler: r}
	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// 9. Graceful Shutdown
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down servers...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown failed", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
