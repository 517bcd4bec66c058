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
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	hedgingapp "github.com/wyfcoding/spothedge/internal/hedging/application"
	hedgingdomain "github.com/wyfcoding/spothedge/internal/hedging/domain"
	hedgingclient "github.com/wyfcoding/spothedge/internal/hedging/infrastructure/client"
	hedgingmysql "github.com/wyfcoding/spothedge/internal/hedging/infrastructure/persistence/mysql"
	hedginghttp "github.com/wyfcoding/spothedge/internal/hedging/interfaces"
	hedgingconsumer "github.com/wyfcoding/spothedge/internal/hedging/interfaces/consumer"
	mdinfra "github.com/wyfcoding/spothedge/internal/marketdata/infrastructure"
	pricingapp "github.com/wyfcoding/spothedge/internal/pricing/application"
	pricingdomain "github.com/wyfcoding/spothedge/internal/pricing/domain"
	pricinghttp "github.com/wyfcoding/spothedge/internal/pricing/interfaces"
	riskapp "github.com/wyfcoding/spothedge/internal/risk/application"
	riskdomain "github.com/wyfcoding/spothedge/internal/risk/domain"
	riskclient "github.com/wyfcoding/spothedge/internal/risk/infrastructure/client"
	riskhttp "github.com/wyfcoding/spothedge/internal/risk/interfaces"
	sorapp "github.com/wyfcoding/spothedge/internal/sor/application"
	sordomain "github.com/wyfcoding/spothedge/internal/sor/domain"
	sorclient "github.com/wyfcoding/spothedge/internal/sor/infrastructure/client"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/hedging/config.toml", "config file path")

// Config 服务扩展配置
type Config struct {
	config.Config `mapstructure:",squash"`
	Hedging       struct {
		CycleIntervalSeconds int     `mapstructure:"cycle_interval_seconds" toml:"cycle_interval_seconds"`
		VolSymbol            string  `mapstructure:"vol_symbol" toml:"vol_symbol"`
		VolVenue             string  `mapstructure:"vol_venue" toml:"vol_venue"`
		MockSeed             int64   `mapstructure:"mock_seed" toml:"mock_seed"`
		Venues               []Venue `mapstructure:"venues" toml:"venues"`
	} `mapstructure:"hedging" toml:"hedging"`
}

// Venue 可路由交易所及其吃单费率
type Venue struct {
	Name         string  `mapstructure:"name" toml:"name"`
	TakerFeeRate float64 `mapstructure:"taker_fee_rate" toml:"taker_fee_rate"`
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
		if err := db.RawDB().AutoMigrate(
			&hedgingdomain.MonitoredPosition{},
			&hedgingdomain.HedgeRecord{},
			&outbox.Message{},
		); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. Kafka & Outbox
	kafkaProducer := kafka.NewProducer(&cfg.MessageQueue.Kafka, logger, metricsImpl)
	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		return kafkaProducer.PublishToTopic(ctx, topic, []byte(key), payload)
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)
	publisher := outbox.NewPublisher(outboxMgr)

	// 6. 行情网关 (生产环境替换为交易所适配器)
	gateway := mdinfra.NewMockGateway(cfg.Hedging.MockSeed)

	// 7. 风控
	riskMarketData := riskclient.NewMarketDataAdapter(gateway)
	betaEstimator := riskdomain.NewBetaEstimator(riskMarketData, logger.Logger)
	riskService := riskapp.NewRiskService(betaEstimator, riskMarketData, logger.Logger)

	// 8. 智能路由
	venues := make([]sordomain.VenueConfig, 0, len(cfg.Hedging.Venues))
	for _, v := range cfg.Hedging.Venues {
		venues = append(venues, sordomain.VenueConfig{Name: v.Name, TakerFeeRate: decimal.NewFromFloat(v.TakerFeeRate)})
	}
	if len(venues) == 0 {
		venues = []sordomain.VenueConfig{{Name: "mock", TakerFeeRate: decimal.NewFromFloat(0.0005)}}
	}
	depthProvider := sorclient.NewGatewayDepthProvider(gateway)
	router := sordomain.NewRouter(venues, depthProvider, logger.Logger)
	executionService := sorapp.NewExecutionService(router, logger.Logger)

	// 9. 期权定价
	volVenue, volSymbol := cfg.Hedging.VolVenue, cfg.Hedging.VolSymbol
	if volSymbol == "" {
		volVenue, volSymbol = venues[0].Name, "BTCUSDT"
	}
	forecaster := mdinfra.NewRealizedVolForecaster(gateway, volVenue, volSymbol)
	pricingService := pricingapp.NewPricingService(
		pricingdomain.NewQuotedGreeksSource(),
		pricingdomain.NewForecastGreeksSource(forecaster, 0),
		logger.Logger,
	)

	// 10. 对冲
	positionRepo := hedgingmysql.NewMonitoredPositionRepository(db.RawDB())
	recordRepo := hedgingmysql.NewHedgeRecordRepository(db.RawDB())
	hedgeService := hedgingapp.NewHedgeService(
		positionRepo,
		recordRepo,
		hedgingclient.NewMarketDataAdapter(gateway),
		riskService,
		hedgingclient.NewExecutionPlannerAdapter(executionService),
		publisher,
		logger.Logger,
	)

	// 11. Consumers
	eventHandler := hedgingconsumer.NewEventHandler(hedgeService, logger.Logger)
	consumerTopics := []string{
		hedgingconsumer.TopicPositionUpdated,
		hedgingconsumer.TopicHedgeConfirmed,
	}
	for _, topic := range consumerTopics {
		consumerCfg := cfg.MessageQueue.Kafka
		consumerCfg.Topic = topic
		if consumerCfg.GroupID == "" {
			consumerCfg.GroupID = "hedging-group"
		}
		consumer := kafka.NewConsumer(&consumerCfg, logger, metricsImpl)
		consumer.Start(context.Background(), 3, eventHandler.Handle)
	}

	// 12. Interfaces
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
		hedginghttp.NewHTTPHandler(hedgeService).RegisterRoutes(api)
		riskhttp.NewHTTPHandler(riskService).RegisterRoutes(api)
		pricinghttp.NewHTTPHandler(pricingService).RegisterRoutes(api)
	}

	// 13. Start
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	// 周期性对冲评估
	cycleInterval := time.Duration(cfg.Hedging.CycleIntervalSeconds) * time.Second
	if cycleInterval <= 0 {
		cycleInterval = 5 * time.Minute
	}
	g.Go(func() error {
		ticker := time.NewTicker(cycleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := hedgeService.RunCycle(ctx); err != nil {
					slog.Warn("hedge cycle failed", "error", err)
				}
			}
		}
	})

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.HTTP.Port), Handler: r}
	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// 14. Graceful Shutdown
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
		if kafkaProducer != nil {
			kafkaProducer.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
