package razorpay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"github.com/angelmondragon/autopay-bridge/pkg/config"
	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
)

const (
	defaultBaseURL = "https://api.razorpay.com/v1"
	defaultTimeout = 20 * time.Second
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

var validate = newValidator()

// Client is a thin REST wrapper over the gateway API with centralized auth,
// logging and error mapping.
type Client struct {
	http          *resty.Client
	webhookSecret string
	logg          *logger.Logger
}

// NewClient builds a client from config. The underlying connection pool is
// shared for the process lifetime.
func NewClient(cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		webhookSecret: cfg.SigningSecret(),
		logg:          logg,
	}
	c.http = resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(keyID, keySecret).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnAfterResponse(c.logResponse)
	return c, nil
}

// SigningSecret returns the webhook HMAC secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// APIError is the gateway's error body.
type APIError struct {
	Status      int    `json:"-"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Field       string `json:"field"`
	Reason      string `json:"reason"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("razorpay %d %s: %s (field %s)", e.Status, e.Code, e.Description, e.Field)
	}
	return fmt.Sprintf("razorpay %d %s: %s", e.Status, e.Code, e.Description)
}

// HTTPStatus exposes the response status to error dumps.
func (e *APIError) HTTPStatus() int {
	if e == nil {
		return 0
	}
	return e.Status
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&errorEnvelope{})
}

// mapError converts transport and API failures into typed errors.
func mapError(op string, resp *resty.Response, err error) error {
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay "+op)
	}
	if resp == nil || !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if env, ok := resp.Error().(*errorEnvelope); ok && env != nil {
		apiErr.Code = env.Error.Code
		apiErr.Description = env.Error.Description
		apiErr.Field = env.Error.Field
		apiErr.Reason = env.Error.Reason
	}
	switch resp.StatusCode() {
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, apiErr, "razorpay "+op)
	case http.StatusUnauthorized:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, apiErr, "razorpay credentials rejected")
	case http.StatusBadRequest:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, apiErr, "razorpay "+op+" rejected").
			WithDetails(map[string]any{"field": apiErr.Field})
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, apiErr, "razorpay "+op)
	}
}

func validateRequest(op string, req any) error {
	if err := validate.Struct(req); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "razorpay "+op+" request invalid")
	}
	return nil
}

func (c *Client) logResponse(_ *resty.Client, resp *resty.Response) error {
	if c.logg == nil || resp == nil || resp.Request == nil {
		return nil
	}
	ctx := c.logg.WithFields(resp.Request.Context(), map[string]any{
		"gateway":     "razorpay",
		"method":      resp.Request.Method,
		"url":         resp.Request.URL,
		"status":      resp.StatusCode(),
		"duration_ms": resp.Time().Milliseconds(),
	})
	if resp.IsError() {
		c.logg.Warn(ctx, "gateway.response.error")
		return nil
	}
	c.logg.Debug(ctx, "gateway.response")
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
