package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"annapurna-pos/internal/database/models"
	"annapurna-pos/internal/storage"
)

var (
	ErrNoTableSelected     = errors.New("no table selected")
	ErrTableOutOfRange     = errors.New("table number out of range")
	ErrItemNotInOrder      = errors.New("item not in order")
	ErrEmptyOrder          = errors.New("order has no items")
	ErrInvalidServiceRate  = errors.New("service charge rate not allowed")
	ErrNegativeCharge      = errors.New("charge must be non-negative")
	ErrNothingToPrint      = errors.New("nothing to print")
	ErrInvalidPrintType    = errors.New("unknown print type")
	ErrInvalidQuantity     = errors.New("quantity must be non-negative")
)

type PrintType string

const (
	PrintKOT      PrintType = "kot"
	PrintCustomer PrintType = "customer"
	PrintBoth     PrintType = "both"
)

// BillNumberSource issues the next daily sequential bill number.
type BillNumberSource interface {
	NextBillNumber(ctx context.Context) (string, error)
}

// Printer renders an order to the print surface. "both" emits the KOT
// first, then the customer bill after a fixed delay.
type Printer interface {
	Print(o *Order, t PrintType)
}

// Controller is the order state manager. HTTP handlers run concurrently,
// so every operation serializes on the mutex.
type Controller struct {
	mu sync.Mutex

	tables  map[int]*Table
	orders  []*Order // day's history: saved active orders and completed ones
	current *Order

	store        storage.Store
	billing      BillNumberSource
	printer      Printer
	events       *EventPublisher
	restaurantID string
	tableCount   int
	clock        func() time.Time
}

func NewController(store storage.Store, billing BillNumberSource, printer Printer, events *EventPublisher, restaurantID string, tableCount int) *Controller {
	c := &Controller{
		tables:       make(map[int]*Table, tableCount),
		store:        store,
		billing:      billing,
		printer:      printer,
		events:       events,
		restaurantID: restaurantID,
		tableCount:   tableCount,
		clock:        time.Now,
	}
	for n := 1; n <= tableCount; n++ {
		c.tables[n] = &Table{Number: n, Status: TableAvailable}
	}
	return c
}

// SetClock overrides the controller clock. Used by tests.
func (c *Controller) SetClock(clock func() time.Time) { c.clock = clock }

func (c *Controller) newOrder(tableNumber int) *Order {
	return &Order{
		ID:            fmt.Sprintf("ord-%d-%d", tableNumber, c.clock().UnixNano()),
		TableNumber:   tableNumber,
		Items:         []OrderItem{},
		ParcelCharges: decimal.Zero,
		Subtotal:      decimal.Zero,
		Total:         decimal.Zero,
		Timestamp:     c.clock(),
		Status:        StatusActive,
	}
}

// SelectTable resumes the table's active order if one exists, otherwise
// opens a fresh empty order and marks the table occupied.
func (c *Controller) SelectTable(n int) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, ok := c.tables[n]
	if !ok {
		return nil, ErrTableOutOfRange
	}

	// leaving an in-progress order keeps it resumable
	if c.current != nil && len(c.current.Items) > 0 {
		c.upsertOrder(c.current)
	}

	if c.current != nil && c.current.TableNumber == n {
		return c.snapshot(c.current), nil
	}

	if active := c.activeOrderForTable(n); active != nil {
		c.current = active
	} else if cached := c.orderByID(table.OrderID); cached != nil && cached.Status == StatusActive {
		c.current = cached
	} else {
		c.current = c.newOrder(n)
	}

	table.Status = TableOccupied
	table.OrderID = c.current.ID
	table.LastActivity = c.clock()
	return c.snapshot(c.current), nil
}

// AddItemToOrder appends a line for the menu item, or bumps the quantity
// when the line already exists.
func (c *Controller) AddItemToOrder(item models.MenuItem) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoTableSelected
	}

	found := false
	for i := range c.current.Items {
		if c.current.Items[i].ItemID == item.ItemID {
			c.current.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("bad price on menu item %s: %w", item.ItemID, err)
		}
		c.current.Items = append(c.current.Items, OrderItem{
			ItemID:       item.ItemID,
			Name:         item.Name,
			Price:        price,
			Category:     item.Category,
			Quantity:     1,
			ParcelCharge: decimal.Zero,
		})
	}
	c.current.Recompute()
	c.touchTable(c.current.TableNumber)
	return c.snapshot(c.current), nil
}

// UpdateItemQuantity sets a line's quantity; zero removes the line. When
// the order empties, it is dropped from the history and the table freed.
func (c *Controller) UpdateItemQuantity(itemID string, qty int) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoTableSelected
	}
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}

	idx := c.itemIndex(itemID)
	if idx < 0 {
		return nil, ErrItemNotInOrder
	}

	if qty == 0 {
		c.current.Items = append(c.current.Items[:idx], c.current.Items[idx+1:]...)
		if len(c.current.Items) == 0 {
			c.removeOrder(c.current.ID)
			c.freeTable(c.current.TableNumber)
		}
	} else {
		c.current.Items[idx].Quantity = qty
	}
	c.current.Recompute()
	return c.snapshot(c.current), nil
}

// ToggleItemParcel flips the parcel flag and resets the charge to the
// default (on) or zero (off). Totals are deliberately not recomputed
// here; the next recomputing operation picks the charge up.
func (c *Controller) ToggleItemParcel(itemID string) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoTableSelected
	}
	idx := c.itemIndex(itemID)
	if idx < 0 {
		return nil, ErrItemNotInOrder
	}

	item := &c.current.Items[idx]
	item.IsParcel = !item.IsParcel
	if item.IsParcel {
		item.ParcelCharge = DefaultParcelCharge
	} else {
		item.ParcelCharge = decimal.Zero
	}
	return c.snapshot(c.current), nil
}

func (c *Controller) UpdateItemParcelCharge(itemID string, charge decimal.Decimal) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoTableSelected
	}
	if charge.IsNegative() {
		return nil, ErrNegativeCharge
	}
	idx := c.itemIndex(itemID)
	if idx < 0 {
		return nil, ErrItemNotInOrder
	}

	c.current.Items[idx].ParcelCharge = charge
	c.current.Recompute()
	return c.snapshot(c.current), nil
}

func (c *Controller) UpdateServiceCharge(percent int) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoTableSelected
	}
	allowed := false
	for _, rate := range ServiceChargeRates {
		if rate == percent {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidServiceRate
	}

	c.current.ServiceCharge = percent
	c.current.Recompute()
	return c.snapshot(c.current), nil
}

// SaveOrder upserts the current order into the history and keeps the
// table occupied. No-op when the order has no items.
func (c *Controller) SaveOrder() (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoTableSelected
	}
	if len(c.current.Items) == 0 {
		return c.snapshot(c.current), nil
	}
	c.upsertOrder(c.current)
	c.occupyTable(c.current.TableNumber, c.current.ID)
	return c.snapshot(c.current), nil
}

// CompleteOrder checks the current order out: assigns a bill number,
// persists the order best-effort and opens a fresh empty order for the
// same table so the billing screen stays usable.
func (c *Controller) CompleteOrder(ctx context.Context) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoTableSelected
	}
	if len(c.current.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	if c.current.BillNumber == "" {
		billNo, err := c.billing.NextBillNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("bill number: %w", err)
		}
		c.current.BillNumber = billNo
	}

	c.current.Recompute()
	c.current.Status = StatusCompleted
	c.current.Timestamp = c.clock()

	// persistence is best-effort; checkout succeeds regardless
	if err := c.store.SaveCompletedOrder(ctx, c.current.ToRecord(c.restaurantID)); err != nil {
		log.Printf("failed to persist completed order %s: %v", c.current.ID, err)
	}
	c.upsertOrder(c.current)
	c.events.PublishOrderCompleted(ctx, c.current)

	completed := c.snapshot(c.current)
	fresh := c.newOrder(completed.TableNumber)
	c.current = fresh
	c.occupyTable(fresh.TableNumber, fresh.ID)
	return completed, nil
}

// BackToTables saves the current order when it has items, otherwise
// discards it and frees the table. Either way editing stops.
func (c *Controller) BackToTables() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	if len(c.current.Items) > 0 {
		c.upsertOrder(c.current)
		c.occupyTable(c.current.TableNumber, c.current.ID)
	} else {
		c.removeOrder(c.current.ID)
		c.freeTable(c.current.TableNumber)
	}
	c.current = nil
	return nil
}

// HandlePrint renders the current order (or, right after completion, the
// latest billed order for the table) and flips the printed flags.
func (c *Controller) HandlePrint(ctx context.Context, t PrintType) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t != PrintKOT && t != PrintCustomer && t != PrintBoth {
		return nil, ErrInvalidPrintType
	}
	if c.current == nil {
		return nil, ErrNoTableSelected
	}

	target := c.current
	if len(target.Items) == 0 {
		target = c.latestBilledOrderForTable(target.TableNumber)
		if target == nil {
			return nil, ErrNothingToPrint
		}
	}

	if target.BillNumber == "" {
		billNo, err := c.billing.NextBillNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("bill number: %w", err)
		}
		target.BillNumber = billNo
	}

	c.printer.Print(c.snapshot(target), t)

	patch := map[string]interface{}{"bill_number": target.BillNumber}
	if t == PrintKOT || t == PrintBoth {
		target.KotPrinted = true
		patch["kot_printed"] = true
	}
	if t == PrintCustomer || t == PrintBoth {
		target.CustomerBillPrinted = true
		patch["customer_bill_printed"] = true
	}

	if target.Status == StatusCompleted {
		if err := c.store.UpdateCompletedOrder(ctx, target.ID, patch); err != nil {
			log.Printf("failed to persist printed flags for %s: %v", target.ID, err)
		}
	}
	c.events.PublishOrderPrinted(ctx, target, string(t))
	return c.snapshot(target), nil
}

// ClearAllOrders wipes the day's in-memory state. Wired to the midnight task.
func (c *Controller) ClearAllOrders() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.orders = nil
	c.current = nil
	for _, table := range c.tables {
		table.Status = TableAvailable
		table.OrderID = ""
	}
	log.Printf("daily order clear: all tables freed")
}

// Tables returns the table set with derived status, sorted by number.
func (c *Controller) Tables() []Table {
	c.mu.Lock()
	defer c.mu.Unlock()

	tables := make([]Table, 0, len(c.tables))
	for _, t := range c.tables {
		tables = append(tables, *t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables
}

func (c *Controller) CurrentOrder() *Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	return c.snapshot(c.current)
}

func (c *Controller) Orders() []Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Order, 0, len(c.orders))
	for _, o := range c.orders {
		out = append(out, *c.snapshot(o))
	}
	return out
}

// --- internal helpers, caller holds c.mu ---

func (c *Controller) snapshot(o *Order) *Order {
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func (c *Controller) itemIndex(itemID string) int {
	for i := range c.current.Items {
		if c.current.Items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func (c *Controller) activeOrderForTable(n int) *Order {
	for _, o := range c.orders {
		if o.TableNumber == n && o.Status == StatusActive {
			return o
		}
	}
	return nil
}

func (c *Controller) latestBilledOrderForTable(n int) *Order {
	var latest *Order
	for _, o := range c.orders {
		if o.TableNumber != n || o.Status != StatusCompleted || o.BillNumber == "" {
			continue
		}
		if latest == nil || o.Timestamp.After(latest.Timestamp) {
			latest = o
		}
	}
	return latest
}

func (c *Controller) orderByID(id string) *Order {
	if id == "" {
		return nil
	}
	for _, o := range c.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (c *Controller) upsertOrder(o *Order) {
	for i, existing := range c.orders {
		if existing.ID == o.ID {
			c.orders[i] = o
			return
		}
	}
	c.orders = append(c.orders, o)
}

func (c *Controller) removeOrder(id string) {
	for i, o := range c.orders {
		if o.ID == id {
			c.orders = append(c.orders[:i], c.orders[i+1:]...)
			return
		}
	}
}

func (c *Controller) occupyTable(n int, orderID string) {
	if table, ok := c.tables[n]; ok {
		table.Status = TableOccupied
		table.OrderID = orderID
		table.LastActivity = c.clock()
	}
}

func (c *Controller) freeTable(n int) {
	if table, ok := c.tables[n]; ok {
		table.Status = TableAvailable
		table.OrderID = ""
		table.LastActivity = c.clock()
	}
}

func (c *Controller) touchTable(n int) {
	if table, ok := c.tables[n]; ok {
		table.Status = TableOccupied
		table.LastActivity = c.clock()
	}
}
