package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"urbane-subscription-api/models"
)

// SaveOrder records a freshly minted gateway order. Every checkout
// attempt gets its own row; re-submission after a failure inserts a
// new order rather than reusing the old one.
func (c *Connection) SaveOrder(rec *models.OrderRecord) error {
	if err := c.ensureConnection(); err != nil {
		return fmt.Errorf("database connection check failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.db.ExecContext(ctx, `
        INSERT INTO orders
        (gateway_order_id, gateway, package_id, email, amount, currency, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
    `, rec.GatewayOrderID, rec.Gateway, rec.PackageID, rec.Email,
		rec.Amount, rec.Currency, models.OrderStatusCreated)

	if err != nil {
		return fmt.Errorf("error saving order: %v", err)
	}
	return nil
}

func (c *Connection) GetOrder(gatewayOrderID string) (*models.OrderRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var rec models.OrderRecord
	err := c.db.QueryRowContext(ctx, `
        SELECT gateway_order_id, gateway, package_id, email, amount, currency, status, created_at
        FROM orders
        WHERE gateway_order_id = ?
    `, gatewayOrderID).Scan(
		&rec.GatewayOrderID,
		&rec.Gateway,
		&rec.PackageID,
		&rec.Email,
		&rec.Amount,
		&rec.Currency,
		&rec.Status,
		&rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s not found", gatewayOrderID)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting order: %v", err)
	}
	return &rec, nil
}

// SetOrderStatus moves an order to a terminal state. The transition is
// guarded so a paid order can never be overwritten by a later expiry
// sweep or a replayed failure.
func (c *Connection) SetOrderStatus(gatewayOrderID, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `
        UPDATE orders
        SET status = ?, updated_at = NOW()
        WHERE gateway_order_id = ? AND status != ?
    `, status, gatewayOrderID, models.OrderStatusPaid)

	if err != nil {
		return fmt.Errorf("error updating order status: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("order %s not updated (missing or already paid)", gatewayOrderID)
	}
	return nil
}

// ExpireStaleOrders marks unpaid orders older than the cutoff as
// expired. The worker runs this for orders that were abandoned mid
// checkout; no gateway cleanup call is needed, the gateway side lapses
// on its own.
func (c *Connection) ExpireStaleOrders(olderThan time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `
        UPDATE orders
        SET status = ?, updated_at = NOW()
        WHERE status = ? AND created_at < NOW() - INTERVAL ? SECOND
    `, models.OrderStatusExpired, models.OrderStatusCreated, int(olderThan.Seconds()))

	if err != nil {
		return 0, fmt.Errorf("error expiring stale orders: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows > 0 {
		log.Printf("Expired %d stale orders", rows)
	}
	return rows, nil
}
