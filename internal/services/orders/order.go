// Package orders owns the live application state: the fixed table set,
// the order being edited, and the day's order history. All mutation goes
// through the Controller.
package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"annapurna-pos/internal/database/models"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// DefaultParcelCharge is the flat per-item charge applied when a line is
// marked as parcel.
var DefaultParcelCharge = decimal.NewFromInt(5)

// ServiceChargeRates is the fixed set of selectable service-charge percentages.
var ServiceChargeRates = []int{0, 5, 10, 15}

type OrderItem struct {
	ItemID       string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Quantity     int             `json:"quantity"`
	IsParcel     bool            `json:"is_parcel"`
	ParcelCharge decimal.Decimal `json:"parcel_charge"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID                  string          `json:"id"`
	TableNumber         int             `json:"table_number"`
	Items               []OrderItem     `json:"items"`
	ServiceCharge       int             `json:"service_charge"`
	ParcelCharges       decimal.Decimal `json:"parcel_charges"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	Total               decimal.Decimal `json:"total"`
	Timestamp           time.Time       `json:"timestamp"`
	Status              string          `json:"status"`
	KotPrinted          bool            `json:"kot_printed"`
	CustomerBillPrinted bool            `json:"customer_bill_printed"`
	BillNumber          string          `json:"bill_number"`
}

// Recompute derives subtotal, parcel charges and total from the item
// lines. Totals are never stored independently of their components.
func (o *Order) Recompute() {
	subtotal := decimal.Zero
	parcel := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal())
		if item.IsParcel {
			parcel = parcel.Add(item.ParcelCharge)
		}
	}
	o.Subtotal = subtotal
	o.ParcelCharges = parcel
	o.Total = subtotal.Add(parcel).Add(o.ServiceChargeAmount())
}

// ServiceChargeAmount is the service-charge percentage of the subtotal,
// rounded to whole currency units.
func (o *Order) ServiceChargeAmount() decimal.Decimal {
	return o.Subtotal.Mul(decimal.NewFromInt(int64(o.ServiceCharge))).Div(decimal.NewFromInt(100)).Round(0)
}

func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

type Table struct {
	Number       int       `json:"number"`
	Status       string    `json:"status"`
	OrderID      string    `json:"order_id,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

// ToRecord converts a live order into its persisted shape.
func (o *Order) ToRecord(restaurantID string) *models.CompletedOrder {
	rec := &models.CompletedOrder{
		OrderID:             o.ID,
		TableNumber:         o.TableNumber,
		ServiceCharge:       o.ServiceCharge,
		ParcelCharges:       o.ParcelCharges.String(),
		Subtotal:            o.Subtotal.String(),
		Total:               o.Total.String(),
		Status:              o.Status,
		KotPrinted:          o.KotPrinted,
		CustomerBillPrinted: o.CustomerBillPrinted,
		BillNumber:          o.BillNumber,
		RestaurantID:        restaurantID,
		Timestamp:           o.Timestamp,
	}
	for _, item := range o.Items {
		rec.Items = append(rec.Items, models.CompletedOrderItem{
			ItemID:       item.ItemID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.Price.String(),
			IsParcel:     item.IsParcel,
			ParcelCharge: item.ParcelCharge.String(),
			LineTotal:    item.LineTotal().String(),
		})
	}
	return rec
}
