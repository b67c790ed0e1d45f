package models

import "time"

// AuthRequest is the login payload.
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthUser is the authenticated user view attached to request contexts
// and cached client-side after activation.
type AuthUser struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	HasDigitalAccess bool   `json:"has_digital_access"`
	ActivePlanID     string `json:"active_plan_id,omitempty"`
}

// AuthResponse is returned by login and by subscription activation.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      AuthUser  `json:"user"`
}
