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
	pkgDomain "github.com/mateusmacedo/go-servici/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-servici/pkg/infrastructure"
	"github.com/mateusmacedo/go-servici/pkg/infrastructure/config"
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

	buses := servici.Buses{
		Execute: pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.ExecuteCommandData], application.ExecuteCommandData](appLogger),
		Save:    pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.SaveMessageData], application.SaveMessageData](appLogger),
		Find:    pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindMessageData], application.FindMessageData, string](appLogger),
		Events:  pkgInfra.NewSimpleEventBus[pkgDomain.Event[application.Response], application.Response](appLogger),
	}

	slice := servici.NewServiciSlice(buses, store, pkgInfra.UUIDGenerator(), cfg.EntityID, cfg.RequestTimeout, appLogger)

	router := chi.NewRouter()
	slice.RegisterRoutes(router)

	if err := servici.Serve(ctx, cfg.HTTPAddr, router, appLogger); err != nil {
		os.Exit(1)
	}
}
