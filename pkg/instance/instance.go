// Package instance names the running process for logs and lock ownership.
package instance

import (
	"os"
	"strings"

	"github.com/angelmondragon/autopay-bridge/pkg/env"
)

// ID prefers AUTOPAY_INSTANCE_ID, then the platform dyno name, then the hostname.
func ID() string {
	if id := env.Get("AUTOPAY_INSTANCE_ID", ""); id != "" {
		return id
	}
	if id := strings.TrimSpace(os.Getenv("DYNO")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
