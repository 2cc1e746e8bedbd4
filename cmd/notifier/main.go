// The notifier consumes booking lifecycle events and logs the
// notifications that would be dispatched to buyers and sellers. It is
// the marketplace's downstream of the booking event stream.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"srida/internal/bookings/events"
	"srida/pkg/kafka"
	kafkaconfig "srida/pkg/kafka/config"
	kafkamiddleware "srida/pkg/kafka/middleware"
	"srida/pkg/logger"
)

const ServiceName = "notifier"

func main() {
	log := logger.New(logger.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  logger.FormatJSON,
		Service: ServiceName,
	})

	kafkaCfg := kafkaconfig.Load()
	if !kafkaCfg.Enabled() {
		log.Fatal("KAFKA_BROKERS must be set for the notifier")
	}
	if err := kafkaCfg.Validate(); err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}

	consumer, err := kafka.NewConsumer(kafkaCfg, events.Topic, handleEvent(log))
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(log))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdown
		log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	log.Info("Notifier started", "topic", events.Topic)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("Consumer stopped unexpectedly", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close Kafka consumer", "error", err)
	}
	log.Info("Notifier stopped gracefully")
}

func handleEvent(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event events.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			log.Error("Failed to decode booking event", "event_id", msg.EventID(), "error", err)
			// Malformed events are skipped, not retried.
			return nil
		}

		switch msg.EventType() {
		case events.TypeBookingCreated:
			log.Info("Notify seller of new booking",
				"booking_id", event.BookingID,
				"seller_id", event.SellerID,
				"service_id", event.ServiceID,
			)
		case events.TypeBookingStatusChanged:
			log.Info("Notify buyer of status change",
				"booking_id", event.BookingID,
				"buyer_id", event.BuyerID,
				"from", event.FromStatus,
				"to", event.ToStatus,
			)
		case events.TypeBookingCancelled:
			log.Info("Notify seller of cancellation",
				"booking_id", event.BookingID,
				"seller_id", event.SellerID,
				"reason", event.Reason,
			)
		default:
			log.Warn("Unknown booking event type", "event_type", msg.EventType(), "event_id", msg.EventID())
		}
		return nil
	}
}
