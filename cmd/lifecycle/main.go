package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	calendardomain "github.com/wyfcoding/optionlifecycle/internal/calendar/domain"
	contractapp "github.com/wyfcoding/optionlifecycle/internal/contract/application"
	contractdomain "github.com/wyfcoding/optionlifecycle/internal/contract/domain"
	contractmemory "github.com/wyfcoding/optionlifecycle/internal/contract/infrastructure/persistence/memory"
	contractmysql "github.com/wyfcoding/optionlifecycle/internal/contract/infrastructure/persistence/mysql"
	lifecycleapp "github.com/wyfcoding/optionlifecycle/internal/lifecycle/application"
	lifecycledomain "github.com/wyfcoding/optionlifecycle/internal/lifecycle/domain"
	"github.com/wyfcoding/optionlifecycle/internal/lifecycle/infrastructure/publisher"
	httpserver "github.com/wyfcoding/optionlifecycle/internal/lifecycle/interfaces/http"
	positionapp "github.com/wyfcoding/optionlifecycle/internal/position/application"
	positiondomain "github.com/wyfcoding/optionlifecycle/internal/position/domain"
	"github.com/wyfcoding/optionlifecycle/internal/position/infrastructure/gateway"
	positionmemory "github.com/wyfcoding/optionlifecycle/internal/position/infrastructure/persistence/memory"
	positionmysql "github.com/wyfcoding/optionlifecycle/internal/position/infrastructure/persistence/mysql"
	"github.com/wyfcoding/optionlifecycle/pkg/config"
	"github.com/wyfcoding/optionlifecycle/pkg/db"
	"github.com/wyfcoding/optionlifecycle/pkg/logger"
	"github.com/wyfcoding/optionlifecycle/pkg/metrics"
	"github.com/wyfcoding/optionlifecycle/pkg/middleware"
	"github.com/wyfcoding/optionlifecycle/pkg/mq"
	"github.com/wyfcoding/optionlifecycle/pkg/ratelimit"
)

var configPath = flag.String("config", "configs/lifecycle/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	log := logger.Get()

	// 3. Metrics
	metricsImpl := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		go metricsImpl.ExposeHTTP(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 4. Repositories
	var (
		contractRepo contractdomain.ContractRepository
		positionRepo positiondomain.PositionRepository
	)
	switch cfg.Database.Driver {
	case "mysql":
		database, err := db.Init(db.Config{
			Driver:             cfg.Database.Driver,
			DSN:                cfg.Database.DSN,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			LogEnabled:         cfg.Database.LogEnabled,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		})
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer database.Close()

		if cfg.Environment == "dev" {
			if err := database.AutoMigrate(&contractmysql.ContractModel{}, &positionmysql.PositionModel{}); err != nil {
				log.Error("failed to migrate database", "error", err)
				os.Exit(1)
			}
		}

		contractRepo = contractmysql.NewContractRepository(database.DB)
		positionRepo = positionmysql.NewPositionRepository(database.DB)
	default:
		contractRepo = contractmemory.NewContractRepository()
		positionRepo = positionmemory.NewPositionRepository()
	}

	// 5. Trading calendar
	holidays := make([]time.Time, 0, len(cfg.Simulation.Holidays))
	for _, h := range cfg.Simulation.Holidays {
		d, err := time.Parse("2006-01-02", h)
		if err != nil {
			log.Error("invalid holiday in config", "date", h, "error", err)
			os.Exit(1)
		}
		holidays = append(holidays, d)
	}
	calendar := calendardomain.NewTradingCalendar(cfg.Simulation.Market, holidays)

	// 6. Event publisher
	var delistPublisher lifecycledomain.DelistingPublisher
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			log.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		delistPublisher = publisher.NewKafkaDelistingPublisher(producer, cfg.Kafka.DelistTopic)
	}

	// 7. Application services
	registry := contractapp.NewRegistryService(contractRepo, log, metricsImpl)
	ledger := positionapp.NewLedgerService(positionRepo, gateway.NewRegistryGateway(registry), log, metricsImpl)
	engine := lifecycleapp.NewLifecycleEngine(contractRepo, calendar, ledger, delistPublisher, log, metricsImpl)

	// 8. HTTP interface
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.Metrics(metricsImpl))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(ratelimit.NewLimiter(ratelimit.Limit{
			Rate:  cfg.RateLimit.QPS,
			Burst: cfg.RateLimit.Burst,
		})))
	}

	handler := httpserver.NewLifecycleHandler(registry, ledger, engine)
	handler.RegisterRoutes(r.Group(""))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	// 9. Start
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		log.Info("server started",
			"addr", srv.Addr,
			"market", calendar.Market(),
			"driver", cfg.Database.Driver,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-ctx.Done():
		}

		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
