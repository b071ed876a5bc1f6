// Package menu manages the menu item catalogue.
package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"annapurna-pos/internal/database/models"
	"annapurna-pos/internal/storage"
)

const (
	menuCacheKey = "pos:menu"
	cacheTTL     = 30 * time.Minute
)

var (
	ErrPriceTooHigh  = errors.New("price exceeds the maximum allowed")
	ErrNegativePrice = errors.New("price must be non-negative")
	ErrEmptyName     = errors.New("item name is required")
)

type Service struct {
	store    storage.Store
	redis    *redis.Client // nil disables caching
	maxPrice decimal.Decimal
}

func NewService(store storage.Store, rdb *redis.Client, maxPrice float64) *Service {
	return &Service{store: store, redis: rdb, maxPrice: decimal.NewFromFloat(maxPrice)}
}

type ItemInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

// Create validates and stores a new menu item. The price bound is the
// one validation whose failure aborts the operation with a user-visible
// message.
func (s *Service) Create(ctx context.Context, in ItemInput) (*models.MenuItem, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrEmptyName
	}
	price := decimal.NewFromFloat(in.Price)
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if price.GreaterThan(s.maxPrice) {
		return nil, fmt.Errorf("%w (max %s)", ErrPriceTooHigh, s.maxPrice.StringFixed(0))
	}

	available := true
	if in.Available != nil {
		available = *in.Available
	}
	item := &models.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Price:       price.String(),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Available:   available,
	}
	if err := s.store.CreateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return item, nil
}

// List returns all menu items, served from the redis cache when warm.
func (s *Service) List(ctx context.Context) ([]models.MenuItem, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, menuCacheKey).Result(); err == nil {
			var items []models.MenuItem
			if err := json.Unmarshal([]byte(cached), &items); err == nil {
				return items, nil
			}
		}
	}

	items, err := s.store.ListMenuItems(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(items); err == nil {
			if err := s.redis.Set(ctx, menuCacheKey, data, cacheTTL).Err(); err != nil {
				log.Printf("menu cache set failed: %v", err)
			}
		}
	}
	return items, nil
}

// Get finds one item by its id.
func (s *Service) Get(ctx context.Context, itemID string) (*models.MenuItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ItemID == itemID {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("menu item %s not found", itemID)
}

type ItemPatch struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Available   *bool    `json:"available,omitempty"`
}

func (s *Service) Update(ctx context.Context, itemID string, in ItemPatch) error {
	patch := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return ErrEmptyName
		}
		patch["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		price := decimal.NewFromFloat(*in.Price)
		if price.IsNegative() {
			return ErrNegativePrice
		}
		if price.GreaterThan(s.maxPrice) {
			return fmt.Errorf("%w (max %s)", ErrPriceTooHigh, s.maxPrice.StringFixed(0))
		}
		patch["price"] = price.String()
	}
	if in.Category != nil {
		patch["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		patch["description"] = in.Description
	}
	if in.Available != nil {
		patch["available"] = *in.Available
	}
	if len(patch) == 0 {
		return nil
	}

	if err := s.store.UpdateMenuItem(ctx, itemID, patch); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, itemID string) error {
	if err := s.store.DeleteMenuItem(ctx, itemID); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// Categories lists distinct categories, deduplicated case-insensitively
// keeping the first-seen casing.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var categories []string
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		key := strings.ToLower(item.Category)
		if !seen[key] {
			seen[key] = true
			categories = append(categories, item.Category)
		}
	}
	return categories, nil
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, menuCacheKey).Err(); err != nil {
		log.Printf("menu cache invalidation failed: %v", err)
	}
}
