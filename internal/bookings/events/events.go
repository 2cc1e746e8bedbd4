// Package events publishes booking lifecycle events to the message
// bus. Downstream consumers (notifications, analytics) react to them;
// the booking flow itself never depends on delivery.
package events

import (
	"context"
	"time"

	"srida/pkg/kafka"
	"srida/pkg/logger"
	"srida/pkg/model"
)

const (
	Topic = "srida.bookings"

	Source = "marketplace"

	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status-changed"
	TypeBookingCancelled     = "booking.cancelled"
)

// BookingEvent is the wire payload for every booking lifecycle event.
// Status fields are empty where they do not apply.
type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	BuyerID    string    `json:"buyer_id"`
	SellerID   string    `json:"seller_id"`
	ServiceID  string    `json:"service_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	StatusChanged(ctx context.Context, booking *model.Booking, from, to model.BookingStatus)
	Cancelled(ctx context.Context, booking *model.Booking, from model.BookingStatus, reason string)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingCreated, BookingEvent{
		BookingID:  booking.ID,
		BuyerID:    booking.BuyerID,
		SellerID:   booking.SellerID,
		ServiceID:  booking.ServiceID,
		ToStatus:   string(booking.Status),
		OccurredAt: time.Now().UTC(),
	})
}

func (p *kafkaPublisher) StatusChanged(ctx context.Context, booking *model.Booking, from, to model.BookingStatus) {
	p.publish(ctx, TypeBookingStatusChanged, BookingEvent{
		BookingID:  booking.ID,
		BuyerID:    booking.BuyerID,
		SellerID:   booking.SellerID,
		ServiceID:  booking.ServiceID,
		FromStatus: string(from),
		ToStatus:   string(to),
		OccurredAt: time.Now().UTC(),
	})
}

func (p *kafkaPublisher) Cancelled(ctx context.Context, booking *model.Booking, from model.BookingStatus, reason string) {
	p.publish(ctx, TypeBookingCancelled, BookingEvent{
		BookingID:  booking.ID,
		BuyerID:    booking.BuyerID,
		SellerID:   booking.SellerID,
		ServiceID:  booking.ServiceID,
		FromStatus: string(from),
		ToStatus:   string(model.StatusCancelled),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}

// publish logs and drops on failure. Events are best-effort: a broker
// outage must not fail a booking that is already persisted.
func (p *kafkaPublisher) publish(ctx context.Context, eventType string, event BookingEvent) {
	msg, err := kafka.NewMessage(event.BookingID, eventType, Source, event)
	if err != nil {
		p.log.Error("Failed to encode booking event", "event_type", eventType, "booking_id", event.BookingID, "error", err)
		return
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event", "event_type", eventType, "booking_id", event.BookingID, "error", err)
	}
}

// nopPublisher is wired when the message bus is disabled.
type nopPublisher struct{}

func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) BookingCreated(context.Context, *model.Booking) {}

func (nopPublisher) StatusChanged(context.Context, *model.Booking, model.BookingStatus, model.BookingStatus) {
}

func (nopPublisher) Cancelled(context.Context, *model.Booking, model.BookingStatus, string) {}
