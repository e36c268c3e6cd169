package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
)

const (
	DefaultAPIVersion = "2025-01"
	defaultTimeout    = 20 * time.Second
	accessTokenHeader = "X-Shopify-Access-Token"
)

var (
	errShopRequired   = errors.New("shopify shop domain is required")
	errTokenRequired  = errors.New("shopify access token is required")
	errLoggerRequired = errors.New("shopify logger is required")
)

type Options struct {
	APIVersion string
	// BaseURL overrides https://{shop}; used by tests.
	BaseURL    string
	Timeout    time.Duration
	// Transport is shared across shop clients when set.
	Transport  http.RoundTripper
}

// Admin is the storefront surface the pipeline calls.
type Admin interface {
	Shop() string
	GetOrder(ctx context.Context, orderGID string) (*Order, error)
	UpdateOrderNote(ctx context.Context, orderGID, note string) error
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error)
	EnsureCustomer(ctx context.Context, email, name string) (*Customer, error)
	CreateDraftOrder(ctx context.Context, input DraftOrderInput) (string, error)
	CompleteDraftOrder(ctx context.Context, draftOrderGID string) (string, error)
}

// AdminClient talks to one shop's Admin GraphQL endpoint with an offline token.
type AdminClient struct {
	shop string
	http *resty.Client
	logg *logger.Logger
}

func NewAdminClient(shop, accessToken string, opts Options, logg *logger.Logger) (*AdminClient, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return nil, errShopRequired
	}
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, errTokenRequired
	}
	version := strings.TrimSpace(opts.APIVersion)
	if version == "" {
		version = DefaultAPIVersion
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://" + shop
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &AdminClient{shop: shop, logg: logg}
	c.http = resty.New().
		SetBaseURL(fmt.Sprintf("%s/admin/api/%s", baseURL, version)).
		SetTimeout(timeout).
		SetHeader(accessTokenHeader, accessToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnAfterResponse(c.logResponse)
	if opts.Transport != nil {
		c.http.SetTransport(opts.Transport)
	}
	return c, nil
}

func (c *AdminClient) Shop() string {
	return c.shop
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// do posts one GraphQL operation and decodes data into out.
func (c *AdminClient) do(ctx context.Context, op, query string, variables map[string]any, out any) error {
	if variables == nil {
		variables = map[string]any{}
	}
	var envelope graphQLResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: query, Variables: variables}).
		SetResult(&envelope).
		Post("/graphql.json")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "shopify "+op)
	}
	if resp.IsError() {
		code := pkgerrors.CodeDependency
		if resp.StatusCode() == http.StatusNotFound {
			code = pkgerrors.CodeNotFound
		}
		return pkgerrors.New(code, fmt.Sprintf("shopify %s: status %d", op, resp.StatusCode()))
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify %s: %s", op, strings.Join(msgs, "; ")))
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "shopify "+op+" decode")
	}
	return nil
}

func userErrorsErr(op string, userErrors []UserError) error {
	if len(userErrors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(userErrors))
	for _, ue := range userErrors {
		if len(ue.Field) > 0 {
			msgs = append(msgs, strings.Join(ue.Field, ".")+": "+ue.Message)
			continue
		}
		msgs = append(msgs, ue.Message)
	}
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify %s: %s", op, strings.Join(msgs, "; "))).
		WithDetails(userErrors)
}

func (c *AdminClient) logResponse(_ *resty.Client, resp *resty.Response) error {
	if c.logg == nil || resp == nil || resp.Request == nil {
		return nil
	}
	ctx := c.logg.WithFields(resp.Request.Context(), map[string]any{
		"platform":    "shopify",
		"shop":        c.shop,
		"status":      resp.StatusCode(),
		"duration_ms": resp.Time().Milliseconds(),
	})
	if resp.IsError() {
		c.logg.Warn(ctx, "storefront.response.error")
		return nil
	}
	c.logg.Debug(ctx, "storefront.response")
	return nil
}
