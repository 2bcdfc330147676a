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
	"github.com/ariefcatur/go-storefront-sync/internal/cart"
	"github.com/ariefcatur/go-storefront-sync/internal/config"
	"github.com/ariefcatur/go-storefront-sync/internal/dispatch"
	"github.com/ariefcatur/go-storefront-sync/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront-sync/internal/kafka"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/mongox"
	"github.com/ariefcatur/go-storefront-sync/internal/orders"
	"github.com/ariefcatur/go-storefront-sync/internal/redisx"
	"github.com/ariefcatur/go-storefront-sync/internal/shopping"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load("shopping", ":8083")

	logger, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mongo
	db, err := mongox.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer db.Client().Disconnect(context.Background())

	orderStore := orders.NewMongoStore(db, "orders")
	if err := orderStore.CreateIndexes(ctx); err != nil {
		logger.Fatal("order indexes", zap.Error(err))
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
	pub := broker.NewPublisher(ch, logger)

	carts := cart.NewCachedStore(cart.NewMongoStore(db, "carts"), rdb, logger)
	svc := shopping.New(
		cart.NewMutator(carts, logger),
		orders.NewAssembler(carts, orderStore, pub, logger),
		pub,
		logger,
	)

	d := dispatch.New(logger)
	svc.Register(d)

	router := httpx.NewRouter(logger)
	(&httpx.ShoppingHandler{Svc: svc}).Register(router)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	if err := app.Run(ctx, logger, srv, ch, broker.Shopping, d.Handle); err != nil {
		logger.Error("shopping stopped", zap.Error(err))
		os.Exit(1)
	}
}
