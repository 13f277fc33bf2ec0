package attendance

import (
	"context"
	"encoding/json"
	"errors"

	"go-attendance/internal/events"

	"github.com/segmentio/kafka-go"
)

type EventPublisher interface {
	PublishAttendanceEvent(ctx context.Context, event events.AttendanceEvent) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) PublishAttendanceEvent(context.Context, events.AttendanceEvent) error {
	return nil
}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

type kafkaEventPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaEventPublisher(writer *kafka.Writer, topic string) EventPublisher {
	if topic == "" {
		topic = events.AttendanceLifecycleTopic
	}
	return &kafkaEventPublisher{writer: writer, topic: topic}
}

func (p *kafkaEventPublisher) PublishAttendanceEvent(ctx context.Context, event events.AttendanceEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
}

type fanoutPublisher []EventPublisher

// NewFanoutPublisher delivers each event to every publisher and joins
// their errors.
func NewFanoutPublisher(publishers ...EventPublisher) EventPublisher {
	return fanoutPublisher(publishers)
}

func (f fanoutPublisher) PublishAttendanceEvent(ctx context.Context, event events.AttendanceEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishAttendanceEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
