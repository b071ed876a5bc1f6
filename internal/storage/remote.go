package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"annapurna-pos/internal/database/models"
)

// RemoteStore persists to the shared database through gorm.
type RemoteStore struct {
	db *gorm.DB
}

func NewRemoteStore(db *gorm.DB) *RemoteStore {
	return &RemoteStore{db: db}
}

func (s *RemoteStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if item.ItemID == "" {
		item.ItemID = newRecordID("itm")
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *RemoteStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Order("category, name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RemoteStore) UpdateMenuItem(ctx context.Context, itemID string, patch map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.MenuItem{}).Where("item_id = ?", itemID).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *RemoteStore) DeleteMenuItem(ctx context.Context, itemID string) error {
	return s.db.WithContext(ctx).Where("item_id = ?", itemID).Delete(&models.MenuItem{}).Error
}

func (s *RemoteStore) SaveCompletedOrder(ctx context.Context, order *models.CompletedOrder) error {
	if order.OrderID == "" {
		order.OrderID = newRecordID("ord")
	}
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *RemoteStore) UpdateCompletedOrder(ctx context.Context, orderID string, patch map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.CompletedOrder{}).Where("order_id = ?", orderID).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *RemoteStore) FetchRecentOrders(ctx context.Context) ([]models.CompletedOrder, error) {
	var orders []models.CompletedOrder
	cutoff := time.Now().Add(-recentWindow)
	err := s.db.WithContext(ctx).
		Where("timestamp >= ?", cutoff).
		Order("timestamp DESC").
		Limit(recentLimit).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *RemoteStore) IncrementBillCounter(ctx context.Context, date string) (int, error) {
	var next int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter models.DailyBillCounter
		err := tx.Where("counter_date = ?", date).First(&counter).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			counter = models.DailyBillCounter{CounterDate: date, LastNumber: 1}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			counter.LastNumber++
			if err := tx.Save(&counter).Error; err != nil {
				return err
			}
		}
		next = counter.LastNumber
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *RemoteStore) SetBillCounter(ctx context.Context, date string, value int) error {
	var counter models.DailyBillCounter
	err := s.db.WithContext(ctx).Where("counter_date = ?", date).First(&counter).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.WithContext(ctx).Create(&models.DailyBillCounter{CounterDate: date, LastNumber: value}).Error
	}
	if err != nil {
		return err
	}
	counter.LastNumber = value
	return s.db.WithContext(ctx).Save(&counter).Error
}

func (s *RemoteStore) ResetBillCounter(ctx context.Context, date string) error {
	return s.db.WithContext(ctx).Where("counter_date = ?", date).Delete(&models.DailyBillCounter{}).Error
}
