package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

func TestShopifyWebhookAcceptsSignedBody(t *testing.T) {
	body := []byte(`{"id":1001,"admin_graphql_api_id":"gid://shopify/Order/1001"}`)
	var gotShop, gotBody, gotID string
	handler := ShopifyWebhook("shpss_test", logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotShop = ShopFromContext(r.Context())
		gotID = WebhookIDFromContext(r.Context())
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify/orders-create", bytes.NewReader(body))
	req.Header.Set(shopify.HmacHeader, shopify.SignWebhookBody(body, "shpss_test"))
	req.Header.Set(shopify.ShopDomainHeader, "Demo.myshopify.com")
	req.Header.Set(shopify.WebhookIDHeader, "wh_1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotShop != "demo.myshopify.com" {
		t.Fatalf("unexpected shop %q", gotShop)
	}
	if gotBody != string(body) {
		t.Fatalf("expected body to be replayed, got %q", gotBody)
	}
	if gotID != "wh_1" {
		t.Fatalf("unexpected webhook id %q", gotID)
	}
}

func TestShopifyWebhookRejectsBadHMAC(t *testing.T) {
	called := false
	handler := ShopifyWebhook("shpss_test", logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify/orders-create", strings.NewReader(`{"id":1}`))
	req.Header.Set(shopify.HmacHeader, shopify.SignWebhookBody([]byte(`{"id":2}`), "shpss_test"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler must not run on hmac mismatch")
	}
}

func TestBodyLimitRejectsOversizedWebhook(t *testing.T) {
	body := bytes.Repeat([]byte("a"), 64)
	handler := BodyLimit(16)(ShopifyWebhook("shpss_test", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set(shopify.HmacHeader, shopify.SignWebhookBody(body, "shpss_test"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequestIDPrefersDeliveryID(t *testing.T) {
	var seen string
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(requestIDHeader)
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", nil)
	req.Header.Set("X-Razorpay-Event-Id", "evt_1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "evt_1" {
		t.Fatalf("expected delivery id, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "" || seen == "evt_1" {
		t.Fatalf("expected generated id, got %q", seen)
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	handler := Logging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 passthrough, got %d", rec.Code)
	}
}
