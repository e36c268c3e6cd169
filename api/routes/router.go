package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/autopay-bridge/api/controllers"
	webhookcontrollers "github.com/angelmondragon/autopay-bridge/api/controllers/webhooks"
	"github.com/angelmondragon/autopay-bridge/api/middleware"
	"github.com/angelmondragon/autopay-bridge/pkg/config"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
)

// Params carries everything the router wires into handlers.
type Params struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis controllers.Pinger

	RazorpayService webhookcontrollers.RazorpayWebhookService
	RazorpayClient  webhookcontrollers.SigningClient
	RazorpayGuard   webhookcontrollers.DeliveryGuard

	ShopifyService webhookcontrollers.ShopifyOrderService
	ShopifyGuard   webhookcontrollers.DeliveryGuard

	WebhookMetrics webhookcontrollers.OutcomeObserver
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": p.Redis,
		}))
	})

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/webhooks", func(r chi.Router) {
		r.Use(middleware.BodyLimit(cfg.Webhooks.MaxBodyBytes))

		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(p.RazorpayService, p.RazorpayClient, p.RazorpayGuard, p.WebhookMetrics, logg))

		r.With(middleware.ShopifyWebhook(cfg.Shopify.APISecret, logg)).
			Post("/shopify/orders-create", webhookcontrollers.ShopifyOrderCreated(p.ShopifyService, p.ShopifyGuard, p.WebhookMetrics, logg))
	})

	return r
}
