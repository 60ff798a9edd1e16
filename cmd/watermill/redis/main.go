package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-servici/internal/servici"
	"github.com/mateusmacedo/go-servici/internal/servici/infrastructure"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-servici/pkg/infrastructure"
	"github.com/mateusmacedo/go-servici/pkg/infrastructure/config"
	redisAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/redis/adapter"
	wmAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/zaplogger/adapter"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}

	appLogger, err := zapAdapter.NewZapAppLogger(cfg.AppName)
	if err != nil {
		panic(err)
	}
	logger := wmAdapter.NewWatermillLoggerAdapter(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisOpts := redisAdapter.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Publisher e subscribers fecham o client que recebem; cada um tem o seu.
	publisher, err := redisAdapter.NewPublisher(redisAdapter.NewRedisClient(redisOpts), logger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "error creating redis publisher", err, nil)
		os.Exit(1)
	}
	defer publisher.Close()

	consumer := cfg.Instance()

	subscriber, err := redisAdapter.NewSubscriber(redisAdapter.NewRedisClient(redisOpts), cfg.AppName, consumer, logger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "error creating redis subscriber", err, nil)
		os.Exit(1)
	}
	defer subscriber.Close()

	// Grupo de respostas exclusivo e estável por instância, lido a partir do fim do stream.
	replySubscriber, err := redisAdapter.NewReplySubscriber(redisAdapter.NewRedisClient(redisOpts), cfg.AppName+"-replies-"+consumer, consumer, logger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "error creating redis reply subscriber", err, nil)
		os.Exit(1)
	}
	defer replySubscriber.Close()

	store, closeStore, err := infrastructure.NewPersistable(ctx, cfg, appLogger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "error initializing store", err, map[string]interface{}{"driver": cfg.StoreDriver})
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			pkgApp.LogError(context.Background(), appLogger, "error closing store", err, nil)
		}
	}()

	buses, err := servici.NewWatermillBuses(ctx, publisher, subscriber, replySubscriber, wmAdapter.DefaultRetry(logger), appLogger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "error creating buses", err, nil)
		os.Exit(1)
	}

	slice := servici.NewServiciSlice(buses, store, pkgInfra.UUIDGenerator(), cfg.EntityID, cfg.RequestTimeout, appLogger)

	router := chi.NewRouter()
	slice.RegisterRoutes(router)

	if err := servici.Serve(ctx, cfg.HTTPAddr, router, appLogger); err != nil {
		os.Exit(1)
	}
}
