package services

import (
	"context"
	"encoding/json"

	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/portfolio-site/portfolio/types"
)

// Publisher is the broker operation the site needs. *mq.MQ satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// EventPublisher announces site changes on a broker channel. A nil
// *EventPublisher drops every event, which is how the site runs without a
// broker.
type EventPublisher struct {
	broker  Publisher
	channel string
	logger  logging.Logger
}

func NewEventPublisher(broker Publisher, channel string, logger logging.Logger) *EventPublisher {
	return &EventPublisher{
		broker:  broker,
		channel: channel,
		logger:  logger,
	}
}

// Publish sends event to the channel. Delivery failures are logged and never
// fail the caller's request.
func (p *EventPublisher) Publish(ctx context.Context, event types.Event) {
	if p == nil || p.broker == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "encode event", "type", event.Type, "error", err)
		return
	}

	id, err := p.broker.Publish(ctx, p.channel, data, map[string]string{"type": string(event.Type)})
	if err != nil {
		p.logger.Warn(ctx, "publish event", "type", event.Type, "channel", p.channel, "error", err)
		return
	}
	p.logger.Debug(ctx, "event published", "type", event.Type, "id", id)
}

// DecodeEvent parses a payload produced by Publish.
func DecodeEvent(data []byte) (types.Event, error) {
	var event types.Event
	err := json.Unmarshal(data, &event)
	return event, err
}
