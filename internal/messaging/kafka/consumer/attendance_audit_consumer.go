package consumer

import (
	"context"
	"encoding/json"

	"go-attendance/internal/bootstrap"
	"go-attendance/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumeAttendanceLifecycle writes one audit entry per check-in/check-out
// event until ctx is cancelled.
func ConsumeAttendanceLifecycle(
	ctx context.Context,
	reader MessageReader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.attendance_lifecycle")
	log.Info("attendance lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("attendance lifecycle consumer stopped")
				return
			}
			log.Error("fetch attendance lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.AttendanceEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode attendance event failed", zap.Error(err), zap.Int64("offset", msg.Offset))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		action, ok := auditAction(event.EventType)
		if !ok {
			log.Warn("unknown attendance event type, skipping", zap.String("event_type", event.EventType))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		audit.Log(ctx, bootstrap.AuditLog{
			Action:  action,
			Message: "attendance " + event.EventType,
			Meta: map[string]any{
				"attendance_id": event.AttendanceID,
				"user_id":       event.UserID,
				"date":          event.Date,
				"status":        event.Status,
				"total_hours":   event.TotalHours,
				"occurred_at":   event.OccurredAt,
			},
		})

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit attendance lifecycle message failed", zap.Error(err))
			continue
		}
	}
}

func auditAction(eventType string) (string, bool) {
	switch eventType {
	case events.AttendanceCheckedIn:
		return "ATTENDANCE_CHECK_IN", true
	case events.AttendanceCheckedOut:
		return "ATTENDANCE_CHECK_OUT", true
	default:
		return "", false
	}
}
