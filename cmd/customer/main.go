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
	"github.com/ariefcatur/go-storefront-sync/internal/customer"
	"github.com/ariefcatur/go-storefront-sync/internal/dispatch"
	"github.com/ariefcatur/go-storefront-sync/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront-sync/internal/kafka"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/mongox"
	"github.com/ariefcatur/go-storefront-sync/internal/orders"
	"github.com/ariefcatur/go-storefront-sync/internal/wishlist"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load("customer", ":8081")

	logger, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mongox.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer db.Client().Disconnect(context.Background())

	history := orders.NewMongoStore(db, "order_history")
	if err := history.CreateIndexes(ctx); err != nil {
		logger.Fatal("history indexes", zap.Error(err))
	}

	ch := kafkax.NewChannel(kafkax.ChannelConfig{
		Brokers:        cfg.KafkaBrokers,
		Group:          cfg.KafkaGroup,
		Workers:        cfg.ConsumerWorkers,
		HandlerTimeout: cfg.HandlerTimeout,
	}, logger)
	defer ch.Close()

	svc := customer.New(
		wishlist.NewMutator(wishlist.NewMongoStore(db), logger),
		cart.NewMutator(cart.NewMongoStore(db, "carts"), logger),
		history,
		broker.NewPublisher(ch, logger),
		logger,
	)

	d := dispatch.New(logger)
	svc.Register(d)

	router := httpx.NewRouter(logger)
	(&httpx.CustomerHandler{Svc: svc}).Register(router)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	if err := app.Run(ctx, logger, srv, ch, broker.Customer, d.Handle); err != nil {
		logger.Error("customer stopped", zap.Error(err))
		os.Exit(1)
	}
}
