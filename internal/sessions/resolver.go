package sessions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
	"github.com/angelmondragon/autopay-bridge/pkg/logger"
	"github.com/angelmondragon/autopay-bridge/pkg/shopify"
)

// ErrNoOfflineSession means the shop never granted background access.
var ErrNoOfflineSession = errors.New("no offline session for shop")

// Resolver builds per-shop Admin API clients from stored offline tokens.
// All clients share one transport so connections are pooled for the process.
type Resolver struct {
	repo Repository
	opts shopify.Options
	logg *logger.Logger
}

func NewResolver(repo Repository, opts shopify.Options, logg *logger.Logger) (*Resolver, error) {
	if repo == nil {
		return nil, errors.New("session repository required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	return &Resolver{repo: repo, opts: opts, logg: logg}, nil
}

func (r *Resolver) AdminForShop(ctx context.Context, shop string) (shopify.Admin, error) {
	session, err := r.repo.FindOffline(ctx, shop)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load offline session")
	}
	if session == nil || strings.TrimSpace(session.AccessToken) == "" {
		return nil, ErrNoOfflineSession
	}
	client, err := shopify.NewAdminClient(shop, session.AccessToken, r.opts, r.logg)
	if err != nil {
		return nil, err
	}
	return client, nil
}
