package plans

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/autopay-bridge/internal/repo"
	"github.com/angelmondragon/autopay-bridge/pkg/db/models"
)

// Repository reads merchant plan definitions. Plans are written by the admin app.
type Repository interface {
	FindBySellingPlanGroupID(ctx context.Context, groupID string) (*models.SubscriptionPlan, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) FindBySellingPlanGroupID(ctx context.Context, groupID string) (*models.SubscriptionPlan, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, nil
	}
	return repo.FirstOrNil[models.SubscriptionPlan](r.DB(ctx).Where("selling_plan_group_id = ?", groupID))
}
