// Package server boots and runs the saydalia application: config,
// stores, background workers, HTTP and gRPC, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/saydalia/saydalia/app/controllers"
	appgraphql "github.com/saydalia/saydalia/app/graphql"
	"github.com/saydalia/saydalia/app/jobs"
	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/app/routes"
	"github.com/saydalia/saydalia/app/services"
	"github.com/saydalia/saydalia/config"
	"github.com/saydalia/saydalia/pkg/cache"
	"github.com/saydalia/saydalia/pkg/database"
	grpcserver "github.com/saydalia/saydalia/pkg/grpc"
	"github.com/saydalia/saydalia/pkg/logger"
	"github.com/saydalia/saydalia/pkg/notification"
	"github.com/saydalia/saydalia/pkg/queue"
	"github.com/saydalia/saydalia/pkg/router"
	"github.com/saydalia/saydalia/pkg/storage"
	"github.com/saydalia/saydalia/pkg/workerpool"
	"github.com/saydalia/saydalia/pkg/ws"
)

const (
	queueWorkers  = 4
	poolSize      = 8
	shutdownGrace = 10 * time.Second
)

// Start boots every subsystem and blocks until SIGINT/SIGTERM, then
// shuts down in reverse order. Redis, S3 and SMTP are optional; Mongo
// is not.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if err := database.Connect(); err != nil {
		return err
	}

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 15*time.Second)
	if err := database.EnsureIndexes(bootCtx, database.DB); err != nil {
		cancelBoot()
		return err
	}
	cancelBoot()

	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, caching and redis queue disabled", "error", err)
	}
	storage.Connect()

	// Repositories and services.
	users := repositories.NewUserRepository(database.DB)
	pharmacies := repositories.NewPharmacyRepository(database.DB)
	orders := repositories.NewOrderRepository(database.DB)
	notifications := repositories.NewNotificationRepository(database.DB)

	pool := workerpool.New(poolSize)

	authSvc := services.NewAuthService(users, pharmacies)
	userSvc := services.NewUserService(users)
	pharmacySvc := services.NewPharmacyService(pharmacies, users)
	notificationSvc := services.NewNotificationService(notifications)
	orderSvc := services.NewOrderService(orders, pharmacies, notificationSvc)
	dashboardSvc := services.NewDashboardService(pharmacies, orders, notifications, pool)

	// Background delivery: websocket hub, queue and the job that fans
	// notifications out through both.
	hub := ws.NewHub()
	go hub.Run()
	notification.SetHub(hub)

	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	} else {
		queue.SetDriver(queue.NewMemoryDriver())
	}
	queue.UseDB(database.DB)
	jobs.Boot(users)

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	queue.StartWorkers(workersCtx, queueWorkers)

	// HTTP surface.
	gqlHandler, err := appgraphql.NewHandler(pharmacySvc)
	if err != nil {
		return err
	}

	r := router.New()
	routes.Register(r, routes.API{
		Auth:          controllers.NewAuthController(authSvc),
		Users:         controllers.NewUserController(userSvc),
		Pharmacies:    controllers.NewPharmacyController(pharmacySvc),
		Orders:        controllers.NewOrderController(orderSvc),
		Notifications: controllers.NewNotificationController(notificationSvc, hub),
		Dashboard:     controllers.NewDashboardController(dashboardSvc),
		Health:        controllers.NewHealthController(),
		GraphQL:       gqlHandler,
		Resolve:       resolveUser(users),
	})

	httpSrv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	grpcSrv, _, err := grpcserver.Start(config.GRPCPort(), database.Ping)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("saydalia listening", "addr", httpSrv.Addr, "env", config.AppEnv())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	grpcserver.Stop(grpcSrv)
	stopWorkers()
	pool.Shutdown()

	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error("mongo disconnect", "error", err)
	}

	return nil
}

// resolveUser adapts the user repository to the auth middleware, so every
// request re-reads the account and revoked or re-roled users lose access
// before their token expires.
func resolveUser(users repositories.UserRepository) func(ctx context.Context, userID string) (models.User, error) {
	return func(ctx context.Context, userID string) (models.User, error) {
		id, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return models.User{}, err
		}
		return users.FindByID(ctx, id)
	}
}
