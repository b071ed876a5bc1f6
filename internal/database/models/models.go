package models

import "time"

// MenuItem is a dish on the menu. ItemID is the stable string id that order
// lines reference; money columns are decimal strings.
type MenuItem struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"-"`
	ItemID      string     `gorm:"uniqueIndex;not null" json:"id"`
	Name        string     `gorm:"type:varchar(128);not null" json:"name"`
	Price       string     `gorm:"type:varchar(32);not null" json:"price"`
	Category    string     `gorm:"type:varchar(64);not null" json:"category"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Available   bool       `gorm:"not null;default:true" json:"available"`
	CreatedAt   *time.Time `gorm:"autoCreateTime" json:"created_at,omitempty"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
}

// CompletedOrder is the persisted shape of a checked-out order.
type CompletedOrder struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID             string    `gorm:"uniqueIndex;not null" json:"id"`
	TableNumber         int       `gorm:"not null;index" json:"table_number"`
	ServiceCharge       int       `gorm:"not null" json:"service_charge"`
	ParcelCharges       string    `gorm:"type:varchar(32);not null" json:"parcel_charges"`
	Subtotal            string    `gorm:"type:varchar(32);not null" json:"subtotal"`
	Total               string    `gorm:"type:varchar(32);not null" json:"total"`
	Status              string    `gorm:"type:varchar(16);not null" json:"status"`
	KotPrinted          bool      `gorm:"not null" json:"kot_printed"`
	CustomerBillPrinted bool      `gorm:"not null" json:"customer_bill_printed"`
	BillNumber          string    `gorm:"type:varchar(8)" json:"bill_number"`
	RestaurantID        string    `gorm:"type:varchar(64);not null;index" json:"restaurant_id"`
	Timestamp           time.Time `gorm:"index" json:"timestamp"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`

	Items []CompletedOrderItem `gorm:"foreignKey:OrderRef" json:"items"`
}

type CompletedOrderItem struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderRef     int64  `gorm:"index;not null" json:"-"`
	ItemID       string `gorm:"not null" json:"item_id"`
	Name         string `gorm:"type:varchar(128);not null" json:"name"`
	Quantity     int    `gorm:"not null" json:"quantity"`
	UnitPrice    string `gorm:"type:varchar(32);not null" json:"unit_price"`
	IsParcel     bool   `gorm:"not null" json:"is_parcel"`
	ParcelCharge string `gorm:"type:varchar(32);not null" json:"parcel_charge"`
	LineTotal    string `gorm:"type:varchar(32);not null" json:"line_total"`
}

// DailyBillCounter holds the last issued sequential bill number for a
// calendar date (ISO date string). One row per day.
type DailyBillCounter struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"-"`
	CounterDate string     `gorm:"type:varchar(10);uniqueIndex;not null" json:"date"`
	LastNumber  int        `gorm:"not null" json:"last_number"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime" json:"-"`
}
