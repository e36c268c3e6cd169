package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/autopay-bridge/pkg/config"
	"github.com/angelmondragon/autopay-bridge/pkg/enums"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/metrics"
	"github.com/angelmondragon/autopay-bridge/pkg/razorpay"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubRazorpayService struct{ calls int }

func (s *stubRazorpayService) HandleEvent(context.Context, *razorpay.WebhookEvent) (enums.WebhookOutcome, error) {
	s.calls++
	return enums.WebhookOutcomeIgnored, nil
}

type stubShopifyService struct{ calls int }

func (s *stubShopifyService) HandleOrderCreated(context.Context, string, shopify.OrderWebhook) (enums.WebhookOutcome, error) {
	s.calls++
	return enums.WebhookOutcomeIgnored, nil
}

type stubSigner struct{}

func (stubSigner) SigningSecret() string { return "rzp_secret" }

func newTestRouter(t *testing.T) (http.Handler, *stubRazorpayService, *stubShopifyService) {
	t.Helper()
	reg := prometheus.NewRegistry()
	rzp := &stubRazorpayService{}
	shp := &stubShopifyService{}
	cfg := &config.Config{
		App:      config.AppConfig{Env: "test"},
		Webhooks: config.WebhooksConfig{MaxBodyBytes: 1 << 20},
		Shopify:  config.ShopifyConfig{APISecret: "shpss_secret"},
	}
	h := NewRouter(Params{
		Config:          cfg,
		Logger:          logger.Nop(),
		DB:              stubPinger{},
		Redis:           stubPinger{},
		RazorpayService: rzp,
		RazorpayClient:  stubSigner{},
		ShopifyService:  shp,
		WebhookMetrics:  metrics.NewWebhookMetrics(reg),
		Gatherer:        reg,
	})
	return h, rzp, shp
}

func TestRouterHealth(t *testing.T) {
	h, _, _ := newTestRouter(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: expected request id header", path)
		}
	}
}

func TestRouterWebhooksAndMetrics(t *testing.T) {
	h, rzp, shp := newTestRouter(t)

	body := []byte(`{"event":"payment.failed","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(razorpay.SignatureHeader, razorpay.SignWebhookBody(body, "rzp_secret"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rzp.calls != 1 {
		t.Fatalf("expected razorpay webhook routed, got %d", rec.Code)
	}

	order := []byte(`{"id":1001}`)
	req = httptest.NewRequest(http.MethodPost, "/webhooks/shopify/orders-create", bytes.NewReader(order))
	req.Header.Set(shopify.HmacHeader, shopify.SignWebhookBody(order, "shpss_secret"))
	req.Header.Set(shopify.ShopDomainHeader, "demo.myshopify.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || shp.calls != 1 {
		t.Fatalf("expected shopify webhook routed, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `webhook_deliveries_total{outcome="ignored",source="razorpay"} 1`) {
		t.Fatalf("expected razorpay counter in metrics output:\n%s", rec.Body.String())
	}
}

func TestRouterRejectsUnsignedShopifyWebhook(t *testing.T) {
	h, _, shp := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify/orders-create", bytes.NewReader([]byte(`{"id":1}`)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || shp.calls != 0 {
		t.Fatalf("expected 401 without service call, got %d", rec.Code)
	}
}
