package checkout

import (
	"context"

	"urbane-subscription-api/models"
)

// FetchPlans loads the package catalog. A failure returns an empty
// slice alongside the error so callers can render an empty state with
// a retry banner rather than crash on nil.
func (c *Client) FetchPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	if err := c.get(ctx, "/api/plans", &plans); err != nil {
		return []models.SubscriptionPlan{}, err
	}
	if plans == nil {
		plans = []models.SubscriptionPlan{}
	}
	return plans, nil
}
