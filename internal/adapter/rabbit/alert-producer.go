package rabbit

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
	"github.com/famhub/location-tracking-system/pkg/metrics"
	"github.com/famhub/location-tracking-system/pkg/rabbit"
)

const (
	alertExchange = "family_topic"

	publishAttempts = 3
	publishBackoff  = 200 * time.Millisecond
)

// AlertProducer publishes alert records to the notification exchange. The
// consumers (push, SMS, whatever the notification platform runs) live in
// another service.
type AlertProducer struct {
	client *rabbit.RabbitMQ
}

func NewAlertProducer(client *rabbit.RabbitMQ) *AlertProducer {
	return &AlertProducer{
		client: client,
	}
}

// Notify publishes one alert. Routing key is alert.<event_type> so
// consumers can bind to enters, exits or both.
func (r *AlertProducer) Notify(ctx context.Context, alert models.AlertRecord, ev models.GeofenceEvent) error {
	const op = "AlertProducer.Notify"

	msg := models.AlertMessage{
		AlertID:      alert.ID,
		EventType:    alert.EventType,
		FamilyID:     alert.FamilyID,
		SubjectID:    alert.SubjectID,
		TargetID:     alert.TargetID,
		GeofenceID:   alert.GeofenceID,
		GeofenceName: ev.GeofenceName,
		Message:      alert.Message,
		Timestamp:    alert.CreatedAt,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		ctx = wrap.WithAction(ctx, "marshal_alert")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	key := fmt.Sprintf("alert.%s", alert.EventType)

	err = retry(publishAttempts, publishBackoff, func() error {
		if err := r.client.EnsureConnection(ctx); err != nil {
			return err
		}
		return r.client.Channel.PublishWithContext(
			ctx,
			alertExchange, // exchange
			key,           // routing key
			false,         // mandatory
			false,         // immediate
			amqp091.Publishing{
				ContentType: "application/json",
				Body:        body,
				Timestamp:   time.Now(),
			},
		)
	})

	metrics.RecordRabbitMQPublish("tracking-service", alertExchange, err)

	if err != nil {
		ctx = wrap.WithAction(ctx, "publish_message")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish with context: %w", op, err))
	}
	return nil
}
