package printing

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annapurna-pos/internal/scheduler"
	"annapurna-pos/internal/services/orders"
)

type recordingSink struct {
	jobs []string
	err  error
}

func (s *recordingSink) Print(content string) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, content)
	return nil
}

func sampleOrder() *orders.Order {
	o := &orders.Order{
		ID:          "ord-1",
		TableNumber: 5,
		BillNumber:  "007",
		Items: []orders.OrderItem{
			{ItemID: "itm-idly", Name: "Idly", Price: decimal.NewFromInt(20), Quantity: 2, IsParcel: true, ParcelCharge: decimal.NewFromInt(5)},
			{ItemID: "itm-dosa", Name: "Dosa", Price: decimal.NewFromInt(45), Quantity: 1},
		},
		ServiceCharge: 10,
		Status:        orders.StatusActive,
	}
	o.Recompute()
	return o
}

func newTestService(sink Sink) *Service {
	s := NewService("Annapurna Restaurant", sink, scheduler.Immediate{}, 0)
	s.SetClock(func() time.Time {
		return time.Date(2025, 3, 14, 13, 45, 0, 0, time.Local)
	})
	return s
}

func TestRenderKOT(t *testing.T) {
	s := newTestService(&recordingSink{})
	content := s.RenderKOT(sampleOrder())

	assert.Contains(t, content, "Annapurna Restaurant")
	assert.Contains(t, content, "KITCHEN ORDER TICKET")
	assert.Contains(t, content, "Bill No: 007    Table: 5")
	assert.Contains(t, content, "2 x Idly  [PARCEL]")
	assert.Contains(t, content, "1 x Dosa")
	assert.NotContains(t, content, "Dosa  [PARCEL]")
	assert.Contains(t, content, "Total Items: 3")
	assert.Contains(t, content, "14 Mar 2025")
}

func TestRenderKOTDeterministic(t *testing.T) {
	s := newTestService(&recordingSink{})
	assert.Equal(t, s.RenderKOT(sampleOrder()), s.RenderKOT(sampleOrder()))
}

func TestRenderCustomerBill(t *testing.T) {
	s := newTestService(&recordingSink{})
	content := s.RenderCustomerBill(sampleOrder())

	// subtotal 85, parcel 5, service 10% -> 9 (rounded), total 99
	assert.Contains(t, content, "Subtotal: 85")
	assert.Contains(t, content, "Service Charge (10%): 9")
	assert.Contains(t, content, "Parcel Charges: 5")
	assert.Contains(t, content, "TOTAL: 99")
	assert.Contains(t, content, "Ninety Nine Rupees only")
	assert.Contains(t, content, "Idly")
	assert.Contains(t, content, "Dosa")
}

func TestRenderCustomerBillHidesZeroCharges(t *testing.T) {
	s := newTestService(&recordingSink{})
	o := &orders.Order{
		ID:          "ord-2",
		TableNumber: 1,
		BillNumber:  "001",
		Items: []orders.OrderItem{
			{ItemID: "itm-idly", Name: "Idly", Price: decimal.NewFromInt(20), Quantity: 1},
		},
	}
	o.Recompute()
	content := s.RenderCustomerBill(o)

	assert.NotContains(t, content, "Service Charge")
	assert.NotContains(t, content, "Parcel Charges")
	assert.Contains(t, content, "TOTAL: 20")
	assert.Contains(t, content, "Twenty Rupees only")
}

func TestRenderCustomerBillLargeTotalPlaceholder(t *testing.T) {
	s := newTestService(&recordingSink{})
	o := &orders.Order{
		ID:          "ord-3",
		TableNumber: 1,
		BillNumber:  "002",
		Items: []orders.OrderItem{
			{ItemID: "itm-feast", Name: "Family Feast", Price: decimal.NewFromInt(500), Quantity: 3},
		},
	}
	o.Recompute()
	content := s.RenderCustomerBill(o)
	assert.Contains(t, content, AmountPlaceholder)
}

func TestPrintBothEmitsKOTThenCustomerBill(t *testing.T) {
	sink := &recordingSink{}
	s := newTestService(sink)

	s.Print(sampleOrder(), orders.PrintBoth)

	require.Len(t, sink.jobs, 2)
	assert.True(t, strings.Contains(sink.jobs[0], "KITCHEN ORDER TICKET"))
	assert.True(t, strings.Contains(sink.jobs[1], "Rupees only"))
}

func TestPrintSingleTypes(t *testing.T) {
	sink := &recordingSink{}
	s := newTestService(sink)

	s.Print(sampleOrder(), orders.PrintKOT)
	require.Len(t, sink.jobs, 1)

	s.Print(sampleOrder(), orders.PrintCustomer)
	require.Len(t, sink.jobs, 2)
	assert.Contains(t, sink.jobs[1], "TOTAL:")
}

func TestPrintSinkFailureIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("no surface")}
	s := newTestService(sink)

	// must not panic or surface the error
	s.Print(sampleOrder(), orders.PrintBoth)
	assert.Empty(t, sink.jobs)
}
