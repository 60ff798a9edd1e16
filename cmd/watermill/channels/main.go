package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-servici/internal/servici"
	"github.com/mateusmacedo/go-servici/internal/servici/infrastructure"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-servici/pkg/infrastructure"
	"github.com/mateusmacedo/go-servici/pkg/infrastructure/config"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Canais em memória: publisher e subscriber são o mesmo GoChannel.
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, wmAdapter.NewWatermillLoggerAdapter(appLogger))
	defer pubSub.Close()

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

	buses, err := servici.NewWatermillBuses(ctx, pubSub, pubSub, pubSub, wmAdapter.DefaultRetry(wmAdapter.NewWatermillLoggerAdapter(appLogger)), appLogger)
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
