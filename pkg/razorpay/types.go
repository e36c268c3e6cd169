package razorpay

import (
	"bytes"
	"encoding/json"
)

// Notes is the gateway's free-form key/value bag. The API renders an empty
// bag as [] rather than {}.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]")) {
		*n = Notes{}
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	out := make(Notes, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			b, _ := json.Marshal(val)
			out[k] = string(b)
		}
	}
	*n = out
	return nil
}

type Customer struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Contact   string `json:"contact"`
	Notes     Notes  `json:"notes"`
	CreatedAt int64  `json:"created_at"`
}

type CustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	// FailExisting "0" returns the existing customer instead of erroring.
	FailExisting string `json:"fail_existing"`
	Notes        Notes  `json:"notes,omitempty"`
}

type PlanItem struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	Description string `json:"description,omitempty"`
}

type Plan struct {
	ID        string   `json:"id"`
	Entity    string   `json:"entity"`
	Interval  int      `json:"interval"`
	Period    string   `json:"period"`
	Item      PlanItem `json:"item"`
	Notes     Notes    `json:"notes"`
	CreatedAt int64    `json:"created_at"`
}

type PlanRequest struct {
	Period   string   `json:"period" validate:"oneof=daily weekly monthly yearly"`
	Interval int      `json:"interval" validate:"gte=1"`
	Item     PlanItem `json:"item"`
	Notes    Notes    `json:"notes,omitempty"`
}

// Matches reports whether an existing plan mirrors the request.
func (p Plan) Matches(req PlanRequest) bool {
	return p.Period == req.Period &&
		p.Interval == req.Interval &&
		p.Item.Amount == req.Item.Amount &&
		p.Item.Currency == req.Item.Currency &&
		p.Item.Name == req.Item.Name
}

type Subscription struct {
	ID             string `json:"id"`
	Entity         string `json:"entity"`
	PlanID         string `json:"plan_id"`
	CustomerID     string `json:"customer_id"`
	Status         string `json:"status"`
	TotalCount     int    `json:"total_count"`
	PaidCount      int    `json:"paid_count"`
	RemainingCount *int   `json:"remaining_count"`
	CurrentStart   *int64 `json:"current_start"`
	CurrentEnd     *int64 `json:"current_end"`
	ChargeAt       *int64 `json:"charge_at"`
	ShortURL       string `json:"short_url"`
	Notes          Notes  `json:"notes"`
	CreatedAt      int64  `json:"created_at"`
}

type SubscriptionRequest struct {
	PlanID     string `json:"plan_id" validate:"required"`
	CustomerID string `json:"customer_id" validate:"required"`
	// TotalCount 0 requests open-ended billing.
	TotalCount     int   `json:"total_count" validate:"gte=0"`
	CustomerNotify int   `json:"customer_notify"`
	StartAt        int64 `json:"start_at,omitempty"`
	Notes          Notes `json:"notes,omitempty"`
}

type listResponse[T any] struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
	Items  []T    `json:"items"`
}
