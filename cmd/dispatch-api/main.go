// README: Entry point; loads config, wires module services, starts HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tavolo/internal/config"
	httptransport "tavolo/internal/http"
	"tavolo/internal/infra"
	"tavolo/internal/maps"
	"tavolo/internal/modules/batching"
	"tavolo/internal/modules/courier"
	"tavolo/internal/modules/dispatch"
	"tavolo/internal/modules/order"
	"tavolo/internal/modules/pricing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := infra.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.WithError(err).Fatal("postgres init")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	orderStore := order.NewStore(dbPool)
	routeStore := batching.NewStore(dbPool)
	coordinator := batching.NewCoordinator(routeStore, logger)
	courierDir := courier.NewDirectory(redisClient)
	pricingSvc := pricing.NewService(pricing.NewStore(dbPool), logger)

	var oracle dispatch.EtaOracle
	if cfg.Maps.APIKey != "" {
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			logger.WithError(err).Fatal("maps init")
		}
		oracle = routeSvc
	}

	dispatchSvc := dispatch.NewService(dispatch.Deps{
		Orders:   orderStore,
		Routes:   coordinator,
		Couriers: courierDir,
		Pricing:  pricingSvc,
		Oracle:   oracle,
	}, dispatch.Config{
		RadiusKm:                cfg.Dispatch.RadiusKm,
		AvgSpeedKmh:             cfg.Dispatch.AvgSpeedKmh,
		MaxAcceptableEtaMinutes: cfg.Dispatch.MaxAcceptableEtaMinutes,
	}, logger)

	router := httptransport.NewRouter(httptransport.ServerDeps{
		Dispatch: dispatchSvc,
		Orders:   orderStore,
		Routes:   routeStore,
		Couriers: courierDir,
		Log:      logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("shutdown")
		}
	}()

	logger.WithField("addr", cfg.HTTP.Addr).Info("dispatch api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("server")
	}
}
