package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"annapurna-pos/internal/database/models"
)

// LocalStore keeps one in-memory list per logical table. It is the
// fallback when the remote store is unreachable; contents do not survive
// a restart and concurrent sessions each see their own copy.
type LocalStore struct {
	mu       sync.Mutex
	menu     []models.MenuItem
	orders   []models.CompletedOrder
	counters map[string]int
}

func NewLocalStore() *LocalStore {
	return &LocalStore{counters: make(map[string]int)}
}

func (s *LocalStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ItemID == "" {
		item.ItemID = newRecordID("itm")
	}
	s.menu = append(s.menu, *item)
	return nil
}

func (s *LocalStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.MenuItem, len(s.menu))
	copy(items, s.menu)
	return items, nil
}

func (s *LocalStore) UpdateMenuItem(ctx context.Context, itemID string, patch map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menu {
		if s.menu[i].ItemID == itemID {
			applyMenuPatch(&s.menu[i], patch)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *LocalStore) DeleteMenuItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menu {
		if s.menu[i].ItemID == itemID {
			s.menu = append(s.menu[:i], s.menu[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *LocalStore) SaveCompletedOrder(ctx context.Context, order *models.CompletedOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.OrderID == "" {
		order.OrderID = newRecordID("ord")
	}
	s.orders = append(s.orders, *order)
	return nil
}

func (s *LocalStore) UpdateCompletedOrder(ctx context.Context, orderID string, patch map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].OrderID == orderID {
			applyOrderPatch(&s.orders[i], patch)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *LocalStore) FetchRecentOrders(ctx context.Context) ([]models.CompletedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-recentWindow)
	var recent []models.CompletedOrder
	for _, o := range s.orders {
		if o.Timestamp.After(cutoff) {
			recent = append(recent, o)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return recent, nil
}

// IncrementBillCounter is not safe across concurrent sessions; it assumes
// a single process, which is all the fallback promises.
func (s *LocalStore) IncrementBillCounter(ctx context.Context, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[date]++
	return s.counters[date], nil
}

func (s *LocalStore) SetBillCounter(ctx context.Context, date string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[date] = value
	return nil
}

func (s *LocalStore) ResetBillCounter(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, date)
	return nil
}

func applyMenuPatch(item *models.MenuItem, patch map[string]interface{}) {
	for k, v := range patch {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				item.Name = s
			}
		case "price":
			if s, ok := v.(string); ok {
				item.Price = s
			}
		case "category":
			if s, ok := v.(string); ok {
				item.Category = s
			}
		case "description":
			if s, ok := v.(*string); ok {
				item.Description = s
			}
		case "available":
			if b, ok := v.(bool); ok {
				item.Available = b
			}
		}
	}
}

func applyOrderPatch(order *models.CompletedOrder, patch map[string]interface{}) {
	for k, v := range patch {
		switch k {
		case "kot_printed":
			if b, ok := v.(bool); ok {
				order.KotPrinted = b
			}
		case "customer_bill_printed":
			if b, ok := v.(bool); ok {
				order.CustomerBillPrinted = b
			}
		case "bill_number":
			if s, ok := v.(string); ok {
				order.BillNumber = s
			}
		case "status":
			if s, ok := v.(string); ok {
				order.Status = s
			}
		}
	}
}
