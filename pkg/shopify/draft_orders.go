package shopify

import (
	"context"

	pkgerrors "github.com/angelmondragon/autopay-bridge/pkg/errors"
)

const draftOrderCreateMutation = `mutation draftOrderCreate($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder { id }
    userErrors { field message }
  }
}`

const draftOrderCompleteMutation = `mutation draftOrderComplete($id: ID!) {
  draftOrderComplete(id: $id) {
    draftOrder { id order { id } }
    userErrors { field message }
  }
}`

// CreateDraftOrder returns the draft order gid.
func (c *AdminClient) CreateDraftOrder(ctx context.Context, input DraftOrderInput) (string, error) {
	if len(input.LineItems) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "draft order needs at least one line item")
	}
	var out struct {
		DraftOrderCreate struct {
			DraftOrder *struct {
				ID string `json:"id"`
			} `json:"draftOrder"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"draftOrderCreate"`
	}
	if err := c.do(ctx, "create draft order", draftOrderCreateMutation, map[string]any{"input": input}, &out); err != nil {
		return "", err
	}
	if err := userErrorsErr("create draft order", out.DraftOrderCreate.UserErrors); err != nil {
		return "", err
	}
	if out.DraftOrderCreate.DraftOrder == nil || out.DraftOrderCreate.DraftOrder.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "shopify create draft order: no draft order returned")
	}
	return out.DraftOrderCreate.DraftOrder.ID, nil
}

// CompleteDraftOrder finalizes a draft and returns the resulting order gid.
func (c *AdminClient) CompleteDraftOrder(ctx context.Context, draftOrderGID string) (string, error) {
	var out struct {
		DraftOrderComplete struct {
			DraftOrder *struct {
				Order *struct {
					ID string `json:"id"`
				} `json:"order"`
			} `json:"draftOrder"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"draftOrderComplete"`
	}
	if err := c.do(ctx, "complete draft order", draftOrderCompleteMutation, map[string]any{"id": draftOrderGID}, &out); err != nil {
		return "", err
	}
	if err := userErrorsErr("complete draft order", out.DraftOrderComplete.UserErrors); err != nil {
		return "", err
	}
	draft := out.DraftOrderComplete.DraftOrder
	if draft == nil || draft.Order == nil || draft.Order.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "shopify complete draft order: no order returned")
	}
	return draft.Order.ID, nil
}
