package sessions

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/autopay-bridge/internal/repo"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
)

// Repository reads storefront sessions persisted by the admin app.
type Repository interface {
	FindOffline(ctx context.Context, shop string) (*models.ShopifySession, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

// FindOffline returns the background-capable session for shop, or nil.
func (r *repository) FindOffline(ctx context.Context, shop string) (*models.ShopifySession, error) {
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return nil, nil
	}
	return repo.FirstOrNil[models.ShopifySession](r.DB(ctx).
		Where("shop = ? AND is_online = ?", shop, false).
		Order("created_at DESC"))
}
