// Package storage is the persistence boundary: one port, a remote
// database implementation, an in-memory local fallback, and a resilient
// decorator that tries remote first and degrades to local on any error.
package storage

import (
	"context"
	"fmt"
	"time"

	"annapurna-pos/internal/database/models"
)

// Store is the table-store port. Logical tables: menu_items,
// completed_orders, daily_bill_counters.
type Store interface {
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, itemID string, patch map[string]interface{}) error
	DeleteMenuItem(ctx context.Context, itemID string) error

	SaveCompletedOrder(ctx context.Context, order *models.CompletedOrder) error
	UpdateCompletedOrder(ctx context.Context, orderID string, patch map[string]interface{}) error
	FetchRecentOrders(ctx context.Context) ([]models.CompletedOrder, error)

	IncrementBillCounter(ctx context.Context, date string) (int, error)
	SetBillCounter(ctx context.Context, date string, value int) error
	ResetBillCounter(ctx context.Context, date string) error
}

const (
	recentWindow = 24 * time.Hour
	recentLimit  = 20
)

func newRecordID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
