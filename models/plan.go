package models

// SubscriptionPlan is a purchasable package as returned by /api/plans.
// Immutable once fetched; Price is in whole rupees.
type SubscriptionPlan struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Price           int      `json:"price"`
	Features        []string `json:"features"`
	Popular         bool     `json:"popular"`
	RequiresAddress bool     `json:"requires_address"`
	HasDigital      bool     `json:"has_digital"`
}
