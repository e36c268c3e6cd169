package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/autopay-bridge/api"
	"github.com/angelmondragon/autopay-bridge/api/routes"
	"github.com/angelmondragon/autopay-bridge/internal/notifications"
	"github.com/angelmondragon/autopay-bridge/internal/payments"
	"github.com/angelmondragon/autopay-bridge/internal/plans"
	"github.com/angelmondragon/autopay-bridge/internal/sessions"
	"github.com/angelmondragon/autopay-bridge/internal/subscriptions"
	"github.com/angelmondragon/autopay-bridge/internal/webhooks"
	razorpaywebhook "github.com/angelmondragon/autopay-bridge/internal/webhooks/razorpay"
	shopifywebhook "github.com/angelmondragon/autopay-bridge/internal/webhooks/shopify"
	"github.com/angelmondragon/autopay-bridge/pkg/config"
	"github.com/angelmondragon/autopay-bridge/pkg/db"
	"github.com/angelmondragon/autopay-bridge/pkg/instance"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/metrics"
	"github.com/angelmondragon/autopay-bridge/pkg/migrate"
	"github.com/angelmondragon/autopay-bridge/pkg/razorpay"
	"github.com/angelmondragon/autopay-bridge/pkg/redis"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

const (
	serviceName     = "api"
	shutdownTimeout = 20 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	handler, dispatcher, err := buildHandler(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire api", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"port":     cfg.App.Port,
		"instance": instance.ID(),
	})

	server := api.NewServer(cfg, handler)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logg.Info(ctx, "api server shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			logg.Warn(ctx, "notifications still in flight at shutdown")
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

// buildHandler wires repositories, services and guards into the router.
func buildHandler(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (http.Handler, *notifications.Dispatcher, error) {
	gateway, err := razorpay.NewClient(cfg.Razorpay, logg)
	if err != nil {
		return nil, nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	admins, err := sessions.NewResolver(sessions.NewRepository(dbClient.DB()), shopify.Options{
		APIVersion: cfg.Shopify.APIVersion,
		Timeout:    cfg.Shopify.Timeout,
		Transport:  transport,
	}, logg)
	if err != nil {
		return nil, nil, err
	}

	dispatcher := notifications.NewDispatcher(
		notifications.NewFromConfig(cfg.Sendgrid, logg),
		cfg.Webhooks.NotifyTimeout,
		logg,
	)

	mappings := subscriptions.NewRepository(dbClient.DB())
	records := payments.NewRepository(dbClient.DB())

	provisioner, err := subscriptions.NewProvisioner(subscriptions.ProvisionerParams{
		Repo:               mappings,
		Gateway:            gateway,
		Notifier:           dispatcher,
		SettlementCurrency: cfg.Razorpay.SettlementCurrency,
		Logger:             logg,
	})
	if err != nil {
		return nil, nil, err
	}
	reconciler, err := payments.NewReconciler(payments.ReconcilerParams{
		Records:  records,
		Mappings: mappings,
		Admins:   admins,
		Tx:       dbClient,
		Notifier: dispatcher,
		Logger:   logg,
	})
	if err != nil {
		return nil, nil, err
	}

	razorpayService, err := razorpaywebhook.NewService(razorpaywebhook.ServiceParams{
		Mappings:   mappings,
		Records:    records,
		Reconciler: reconciler,
		Logger:     logg,
	})
	if err != nil {
		return nil, nil, err
	}
	shopifyService, err := shopifywebhook.NewService(shopifywebhook.ServiceParams{
		Admins:      admins,
		Mappings:    mappings,
		Plans:       plans.NewRepository(dbClient.DB()),
		Provisioner: provisioner,
		AppHandle:   cfg.Shopify.AppHandle,
		Logger:      logg,
	})
	if err != nil {
		return nil, nil, err
	}

	razorpayGuard, err := webhooks.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "razorpay")
	if err != nil {
		return nil, nil, err
	}
	shopifyGuard, err := webhooks.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "shopify")
	if err != nil {
		return nil, nil, err
	}

	handler := routes.NewRouter(routes.Params{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		RazorpayService: razorpayService,
		RazorpayClient:  gateway,
		RazorpayGuard:   razorpayGuard,
		ShopifyService:  shopifyService,
		ShopifyGuard:    shopifyGuard,
		WebhookMetrics:  metrics.NewWebhookMetrics(prometheus.DefaultRegisterer),
	})
	return handler, dispatcher, nil
}
