package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"urbane-subscription-api/models"
)

func hashPassword(password string) string {
	hasher := sha256.New()
	hasher.Write([]byte(password))
	return hex.EncodeToString(hasher.Sum(nil))
}

// UpsertUser creates the buyer's account during checkout, or refreshes
// name/phone/address on an existing one. Checkout doubles as signup, so
// an existing email is not an error.
func (c *Connection) UpsertUser(details *models.CustomerDetails) error {
	if err := c.ensureConnection(); err != nil {
		return fmt.Errorf("database connection check failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.db.ExecContext(ctx, `
        INSERT INTO users
        (email, name, phone, passphrase, address_line1, address_line2,
         city, state, postal_code, country, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
        ON DUPLICATE KEY UPDATE
        name = VALUES(name),
        phone = VALUES(phone),
        address_line1 = VALUES(address_line1),
        address_line2 = VALUES(address_line2),
        city = VALUES(city),
        state = VALUES(state),
        postal_code = VALUES(postal_code),
        country = VALUES(country)
    `, details.Email, details.Name, details.Phone, hashPassword(details.Password),
		details.Address.Line1, details.Address.Line2, details.Address.City,
		details.Address.State, details.Address.PostalCode, details.Address.Country)

	if err != nil {
		return fmt.Errorf("error upserting user: %v", err)
	}
	return nil
}

// ActivateSubscription grants the plan's entitlements to the user.
// Idempotent: activating the same order twice leaves one subscription.
func (c *Connection) ActivateSubscription(email, packageID string, hasDigital bool, gatewayOrderID string) error {
	if err := c.ensureConnection(); err != nil {
		return fmt.Errorf("database connection check failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.db.ExecContext(ctx, `
        INSERT INTO subscriptions
        (email, package_id, gateway_order_id, has_digital, starts_at, expires_at)
        VALUES (?, ?, ?, ?, NOW(), NOW() + INTERVAL 1 YEAR)
        ON DUPLICATE KEY UPDATE
        has_digital = VALUES(has_digital)
    `, email, packageID, gatewayOrderID, hasDigital)

	if err != nil {
		return fmt.Errorf("error activating subscription: %v", err)
	}

	log.Printf("Activated subscription for %s on package %s (digital=%v)", email, packageID, hasDigital)
	return nil
}

// GetUserAccess returns the user's profile with current entitlements,
// used when issuing tokens and refreshing cached profiles.
func (c *Connection) GetUserAccess(email string) (*models.AuthUser, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.AuthUser
	var planID sql.NullString
	var hasDigital sql.NullBool

	err := c.db.QueryRowContext(ctx, `
        SELECT u.email, u.name,
               s.package_id, s.has_digital
        FROM users u
        LEFT JOIN subscriptions s
          ON s.email = u.email AND s.expires_at > NOW()
        WHERE u.email = ?
        ORDER BY s.starts_at DESC
        LIMIT 1
    `, email).Scan(&user.Email, &user.Name, &planID, &hasDigital)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user access: %v", err)
	}

	if planID.Valid {
		user.ActivePlanID = planID.String
	}
	user.HasDigitalAccess = hasDigital.Valid && hasDigital.Bool

	return &user, nil
}

// Authenticate checks email/password and returns the user view, or
// sql.ErrNoRows via the wrapped error when credentials do not match.
func (c *Connection) Authenticate(email, password string) (*models.AuthUser, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var stored string
	err := c.db.QueryRowContext(ctx,
		`SELECT passphrase FROM users WHERE email = ?`, email).Scan(&stored)
	if err != nil {
		return nil, err
	}

	if stored != hashPassword(password) {
		return nil, sql.ErrNoRows
	}

	return c.GetUserAccess(email)
}
