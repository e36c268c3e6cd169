package api

import (
	"net/http"
	"time"

	"github.com/angelmondragon/autopay-bridge/pkg/config"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
)

// NewServer returns the HTTP server that cmd/api runs. Write timeouts cover
// the slowest webhook path: a storefront order created from a payment.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	write := cfg.Shopify.Timeout*3 + cfg.Razorpay.Timeout
	if write <= 0 {
		write = time.Minute
	}
	return &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readHeaderTimeout * 3,
		WriteTimeout:      write,
		IdleTimeout:       idleTimeout,
	}
}
