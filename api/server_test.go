package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/autopay-bridge/pkg/config"
)

func TestNewServer(t *testing.T) {
	cfg := &config.Config{
		App:      config.AppConfig{Port: "9090"},
		Shopify:  config.ShopifyConfig{Timeout: 10 * time.Second},
		Razorpay: config.RazorpayConfig{Timeout: 5 * time.Second},
	}
	srv := NewServer(cfg, http.NotFoundHandler())
	if srv.Addr != ":9090" {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
	if srv.WriteTimeout != 35*time.Second {
		t.Fatalf("unexpected write timeout %v", srv.WriteTimeout)
	}

	srv = NewServer(&config.Config{App: config.AppConfig{Port: "8080"}}, http.NotFoundHandler())
	if srv.WriteTimeout != time.Minute {
		t.Fatalf("expected default write timeout, got %v", srv.WriteTimeout)
	}
}
