package storage

import (
	"context"
	"log"

	"annapurna-pos/internal/database/models"
)

// ResilientStore tries the remote store first and falls back to the local
// store on any error. Failures are logged, never surfaced to the caller:
// a remote outage must not abort a user action in progress.
type ResilientStore struct {
	remote Store // nil when the database never came up
	local  Store
}

func NewResilientStore(remote, local Store) *ResilientStore {
	return &ResilientStore{remote: remote, local: local}
}

func (s *ResilientStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if s.remote != nil {
		if err := s.remote.CreateMenuItem(ctx, item); err == nil {
			return nil
		} else {
			log.Printf("remote menu_items insert failed, using local store: %v", err)
		}
	}
	return s.local.CreateMenuItem(ctx, item)
}

func (s *ResilientStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	if s.remote != nil {
		if items, err := s.remote.ListMenuItems(ctx); err == nil {
			return items, nil
		} else {
			log.Printf("remote menu_items read failed, using local store: %v", err)
		}
	}
	return s.local.ListMenuItems(ctx)
}

func (s *ResilientStore) UpdateMenuItem(ctx context.Context, itemID string, patch map[string]interface{}) error {
	if s.remote != nil {
		if err := s.remote.UpdateMenuItem(ctx, itemID, patch); err == nil {
			return nil
		} else {
			log.Printf("remote menu_items update failed, using local store: %v", err)
		}
	}
	return s.local.UpdateMenuItem(ctx, itemID, patch)
}

func (s *ResilientStore) DeleteMenuItem(ctx context.Context, itemID string) error {
	if s.remote != nil {
		if err := s.remote.DeleteMenuItem(ctx, itemID); err == nil {
			return nil
		} else {
			log.Printf("remote menu_items delete failed, using local store: %v", err)
		}
	}
	return s.local.DeleteMenuItem(ctx, itemID)
}

func (s *ResilientStore) SaveCompletedOrder(ctx context.Context, order *models.CompletedOrder) error {
	if s.remote != nil {
		if err := s.remote.SaveCompletedOrder(ctx, order); err == nil {
			return nil
		} else {
			log.Printf("remote completed_orders insert failed, using local store: %v", err)
		}
	}
	return s.local.SaveCompletedOrder(ctx, order)
}

func (s *ResilientStore) UpdateCompletedOrder(ctx context.Context, orderID string, patch map[string]interface{}) error {
	if s.remote != nil {
		if err := s.remote.UpdateCompletedOrder(ctx, orderID, patch); err == nil {
			return nil
		} else {
			log.Printf("remote completed_orders update failed, using local store: %v", err)
		}
	}
	return s.local.UpdateCompletedOrder(ctx, orderID, patch)
}

func (s *ResilientStore) FetchRecentOrders(ctx context.Context) ([]models.CompletedOrder, error) {
	if s.remote != nil {
		if orders, err := s.remote.FetchRecentOrders(ctx); err == nil {
			return orders, nil
		} else {
			log.Printf("remote completed_orders read failed, using local store: %v", err)
		}
	}
	return s.local.FetchRecentOrders(ctx)
}

func (s *ResilientStore) IncrementBillCounter(ctx context.Context, date string) (int, error) {
	if s.remote != nil {
		if n, err := s.remote.IncrementBillCounter(ctx, date); err == nil {
			// mirror so a later remote outage continues the sequence
			_ = s.local.SetBillCounter(ctx, date, n)
			return n, nil
		} else {
			log.Printf("remote bill counter increment failed, using local store: %v", err)
		}
	}
	return s.local.IncrementBillCounter(ctx, date)
}

func (s *ResilientStore) SetBillCounter(ctx context.Context, date string, value int) error {
	if s.remote != nil {
		if err := s.remote.SetBillCounter(ctx, date, value); err != nil {
			log.Printf("remote bill counter set failed: %v", err)
		}
	}
	return s.local.SetBillCounter(ctx, date, value)
}

func (s *ResilientStore) ResetBillCounter(ctx context.Context, date string) error {
	if s.remote != nil {
		if err := s.remote.ResetBillCounter(ctx, date); err != nil {
			log.Printf("remote bill counter reset failed: %v", err)
		}
	}
	return s.local.ResetBillCounter(ctx, date)
}
