package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-servici/internal/servici"
	"github.com/mateusmacedo/go-servici/internal/servici/application"
	"github.com/mateusmacedo/go-servici/internal/servici/infrastructure"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-servici/pkg/infrastructure"
	"github.com/mateusmacedo/go-servici/pkg/infrastructure/config"
	kafkaAdapter "github.com/mateusmacedo/go-servici/pkg/infrastructure/kafka/adapter"
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

	kafkaCfg := kafkaAdapter.Config{
		Brokers:       cfg.KafkaBrokers,
		ConsumerGroup: cfg.KafkaConsumerGroup,
		ClientID:      cfg.AppName,
	}

	publisher, err := kafkaAdapter.NewPublisher(kafkaCfg, logger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "error creating kafka publisher", err, nil)
		os.Exit(1)
	}
	defer publisher.Close()

	subscriber, err := kafkaAdapter.NewSubscriber(kafkaCfg, logger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "error creating kafka subscriber", err, nil)
		os.Exit(1)
	}
	defer subscriber.Close()

	// As respostas de consulta não podem ser divididas com outras instâncias:
	// cada instância tem um grupo estável próprio que começa no offset mais novo.
	replyCfg := kafkaCfg
	replyCfg.ConsumerGroup = cfg.KafkaConsumerGroup + "-replies-" + cfg.Instance()
	replySubscriber, err := kafkaAdapter.NewReplySubscriber(replyCfg, logger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "error creating kafka reply subscriber", err, nil)
		os.Exit(1)
	}
	defer replySubscriber.Close()

	err = kafkaAdapter.InitializeTopics(subscriber,
		application.ExecuteCommandName,
		application.SaveMessageName,
		application.FindMessageName,
		application.FindMessageName+wmAdapter.ResponseTopicSuffix,
		application.CommandExecutedName,
		application.ExecuteCommandName+wmAdapter.PoisonTopicSuffix,
		application.SaveMessageName+wmAdapter.PoisonTopicSuffix,
		application.CommandExecutedName+wmAdapter.PoisonTopicSuffix,
	)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "error initializing kafka topics", err, nil)
		os.Exit(1)
	}

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
