package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"ms-booking/internal/models"
)

// Event types carried on the booking topic.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
)

// Envelope is the message body published for every booking state change.
type Envelope struct {
	Type    string         `json:"type"`
	Booking models.Booking `json:"booking"`
}

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

func (p *Producer) publish(eventType string, b models.Booking) error {
	msgBytes, err := json.Marshal(Envelope{Type: eventType, Booking: b})
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(b.ID),
			Value: msgBytes,
		},
	)
}

// PublishBookingCreated streams the confirmed booking to Kafka
func (p *Producer) PublishBookingCreated(b models.Booking) error {
	return p.publish(TypeBookingCreated, b)
}

// PublishBookingCancelled streams the cancellation to Kafka
func (p *Producer) PublishBookingCancelled(b models.Booking) error {
	return p.publish(TypeBookingCancelled, b)
}

func (p *Producer) Close() error {
	if p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}
