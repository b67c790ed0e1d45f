package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"urbane-subscription-api/database"
	"urbane-subscription-api/models"
)

type PlanHandler struct {
	db *database.Connection
}

func NewPlanHandler(db *database.Connection) *PlanHandler {
	return &PlanHandler{db: db}
}

// GetPlans returns the package catalog as a bare JSON array. Clients
// render an empty catalog with a retry banner when this fails.
func (h *PlanHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.db.GetPlans()
	if err != nil {
		log.Printf("Error fetching plans: %v", err)
		http.Error(w, "failed to load subscription plans", http.StatusInternalServerError)
		return
	}

	if plans == nil {
		plans = []models.SubscriptionPlan{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plans)
}
