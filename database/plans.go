package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"urbane-subscription-api/models"
)

// GetPlans returns the active subscription packages. Features are
// stored as a JSON array per plan.
func (c *Connection) GetPlans() ([]models.SubscriptionPlan, error) {
	query := `
        SELECT id, name, price, features, popular, requires_address, has_digital
        FROM plans
        WHERE deleted_at IS NULL
        ORDER BY price ASC
    `

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.SubscriptionPlan
	for rows.Next() {
		var plan models.SubscriptionPlan
		var featuresJSON string
		err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.Price,
			&featuresJSON,
			&plan.Popular,
			&plan.RequiresAddress,
			&plan.HasDigital,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(featuresJSON), &plan.Features); err != nil {
			log.Printf("Warning: bad features json for plan %s: %v", plan.ID, err)
			plan.Features = []string{}
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

func (c *Connection) GetPlanByID(id string) (*models.SubscriptionPlan, error) {
	query := `
        SELECT id, name, price, features, popular, requires_address, has_digital
        FROM plans
        WHERE id = ? AND deleted_at IS NULL
    `

	var plan models.SubscriptionPlan
	var featuresJSON string
	err := c.db.QueryRow(query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.Price,
		&featuresJSON,
		&plan.Popular,
		&plan.RequiresAddress,
		&plan.HasDigital,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(featuresJSON), &plan.Features); err != nil {
		plan.Features = []string{}
	}
	return &plan, nil
}
