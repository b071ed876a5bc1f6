// Package printing renders orders into KOT and customer-bill text blocks
// and hands them to a print sink. Rendering is pure: identical input
// yields identical output apart from the embedded timestamp.
package printing

import (
	"fmt"
	"log"
	"strings"
	"time"

	"annapurna-pos/internal/scheduler"
	"annapurna-pos/internal/services/orders"
)

const divider = "--------------------------------"

// Sink receives rendered print content. Failures are skipped silently:
// a missing print surface never aborts the order flow.
type Sink interface {
	Print(content string) error
}

// LogSink writes print jobs to the process log. The browser-facing
// handlers return the rendered content themselves; this sink is the
// server-side record.
type LogSink struct{}

func (LogSink) Print(content string) error {
	log.Printf("print job:\n%s", content)
	return nil
}

type Service struct {
	restaurantName string
	sink           Sink
	sched          scheduler.Scheduler
	secondJobDelay time.Duration
	clock          func() time.Time
}

func NewService(restaurantName string, sink Sink, sched scheduler.Scheduler, secondJobDelay time.Duration) *Service {
	return &Service{
		restaurantName: restaurantName,
		sink:           sink,
		sched:          sched,
		secondJobDelay: secondJobDelay,
		clock:          time.Now,
	}
}

func (s *Service) SetClock(clock func() time.Time) { s.clock = clock }

// Print dispatches render jobs for the order. "both" sends the KOT at
// once and schedules the customer bill after the configured delay; the
// second job is fire-and-forget with no completion tracking.
func (s *Service) Print(o *orders.Order, t orders.PrintType) {
	switch t {
	case orders.PrintKOT:
		s.emit(s.RenderKOT(o))
	case orders.PrintCustomer:
		s.emit(s.RenderCustomerBill(o))
	case orders.PrintBoth:
		s.emit(s.RenderKOT(o))
		s.sched.After(s.secondJobDelay, func() {
			s.emit(s.RenderCustomerBill(o))
		})
	}
}

func (s *Service) emit(content string) {
	if err := s.sink.Print(content); err != nil {
		log.Printf("print sink failed, job dropped: %v", err)
	}
}

// RenderKOT produces the kitchen-facing preparation slip.
func (s *Service) RenderKOT(o *orders.Order) string {
	var b strings.Builder
	b.WriteString(divider + "\n")
	b.WriteString(center(s.restaurantName) + "\n")
	b.WriteString(center("KITCHEN ORDER TICKET") + "\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Bill No: %s    Table: %d\n", o.BillNumber, o.TableNumber)
	fmt.Fprintf(&b, "Time: %s\n", s.clock().Format("02 Jan 2006 03:04 PM"))
	b.WriteString(divider + "\n")
	for _, item := range o.Items {
		flag := ""
		if item.IsParcel {
			flag = "  [PARCEL]"
		}
		fmt.Fprintf(&b, "%d x %s%s\n", item.Quantity, item.Name, flag)
	}
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Total Items: %d\n", o.ItemCount())
	return b.String()
}

// RenderCustomerBill produces the itemized customer bill with the totals
// block and the amount in words.
func (s *Service) RenderCustomerBill(o *orders.Order) string {
	var b strings.Builder
	b.WriteString(divider + "\n")
	b.WriteString(center(s.restaurantName) + "\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Bill No: %s    Table: %d\n", o.BillNumber, o.TableNumber)
	fmt.Fprintf(&b, "Date: %s\n", s.clock().Format("02 Jan 2006 03:04 PM"))
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "%-3s %-14s %3s %6s %6s\n", "No", "Item", "Qty", "Rate", "Amt")
	for i, item := range o.Items {
		fmt.Fprintf(&b, "%-3d %-14s %3d %6s %6s\n",
			i+1, clip(item.Name, 14), item.Quantity, item.Price.StringFixed(0), item.LineTotal().StringFixed(0))
	}
	b.WriteString(divider + "\n")

	subtotal := o.Subtotal.Round(0)
	fmt.Fprintf(&b, "Subtotal: %s\n", subtotal.StringFixed(0))
	if sc := o.ServiceChargeAmount(); sc.IsPositive() {
		fmt.Fprintf(&b, "Service Charge (%d%%): %s\n", o.ServiceCharge, sc.StringFixed(0))
	}
	if o.ParcelCharges.IsPositive() {
		fmt.Fprintf(&b, "Parcel Charges: %s\n", o.ParcelCharges.StringFixed(0))
	}
	fmt.Fprintf(&b, "TOTAL: %s\n", o.Total.StringFixed(0))
	b.WriteString(divider + "\n")
	b.WriteString(AmountInWords(int(o.Total.Round(0).IntPart())) + "\n")
	return b.String()
}

func center(s string) string {
	width := len(divider)
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
