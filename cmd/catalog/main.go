package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-storefront-sync/internal/app"
	"github.com/ariefcatur/go-storefront-sync/internal/broker"
	"github.com/ariefcatur/go-storefront-sync/internal/catalog"
	"github.com/ariefcatur/go-storefront-sync/internal/config"
	"github.com/ariefcatur/go-storefront-sync/internal/dispatch"
	"github.com/ariefcatur/go-storefront-sync/internal/httpx"
	"github.com/ariefcatur/go-storefront-sync/internal/inventory"
	kafkax "github.com/ariefcatur/go-storefront-sync/internal/kafka"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/postgres"
	"github.com/ariefcatur/go-storefront-sync/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load("catalog", ":8082")

	logger, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("schema", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka
	ch := kafkax.NewChannel(kafkax.ChannelConfig{
		Brokers:        cfg.KafkaBrokers,
		Group:          cfg.KafkaGroup,
		Workers:        cfg.ConsumerWorkers,
		HandlerTimeout: cfg.HandlerTimeout,
	}, logger)
	defer ch.Close()

	stock := inventory.NewAdjuster(
		inventory.NewPostgresStore(db),
		redisx.NewDedup(rdb, cfg.ServiceName),
		logger,
	)
	svc := catalog.New(catalog.NewPostgresProducts(db), stock, broker.NewPublisher(ch, logger), logger)

	d := dispatch.New(logger)
	svc.Register(d)

	router := httpx.NewRouter(logger)
	(&httpx.CatalogHandler{Svc: svc}).Register(router)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	if err := app.Run(ctx, logger, srv, ch, broker.Catalog, d.Handle); err != nil {
		logger.Error("catalog stopped", zap.Error(err))
		os.Exit(1)
	}
}
