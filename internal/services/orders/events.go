package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	EventOrderCompleted = "order.completed"
	EventOrderPrinted   = "order.printed"
)

type OrderEvent struct {
	EventType   string    `json:"event_type"`
	OrderID     string    `json:"order_id"`
	TableNumber int       `json:"table_number"`
	BillNumber  string    `json:"bill_number"`
	Total       string    `json:"total"`
	PrintType   string    `json:"print_type,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventPublisher pushes order lifecycle events onto redis pub/sub
// channels. With no redis connection it is a no-op.
type EventPublisher struct {
	redis *redis.Client
}

func NewEventPublisher(rdb *redis.Client) *EventPublisher {
	return &EventPublisher{redis: rdb}
}

func (p *EventPublisher) PublishOrderCompleted(ctx context.Context, o *Order) {
	p.publish(ctx, OrderEvent{
		EventType:   EventOrderCompleted,
		OrderID:     o.ID,
		TableNumber: o.TableNumber,
		BillNumber:  o.BillNumber,
		Total:       o.Total.String(),
		Timestamp:   time.Now(),
	})
}

func (p *EventPublisher) PublishOrderPrinted(ctx context.Context, o *Order, printType string) {
	p.publish(ctx, OrderEvent{
		EventType:   EventOrderPrinted,
		OrderID:     o.ID,
		TableNumber: o.TableNumber,
		BillNumber:  o.BillNumber,
		Total:       o.Total.String(),
		PrintType:   printType,
		Timestamp:   time.Now(),
	})
}

func (p *EventPublisher) publish(ctx context.Context, event OrderEvent) {
	if p == nil || p.redis == nil {
		return
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", event.EventType, err)
		return
	}

	channel := fmt.Sprintf("pos:events:%s", event.EventType)
	if err := p.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		log.Printf("failed to publish %s event: %v", event.EventType, err)
		return
	}
	if err := p.redis.Publish(ctx, "pos:events:all", eventJSON).Err(); err != nil {
		log.Printf("failed to publish to all channel: %v", err)
	}
}
