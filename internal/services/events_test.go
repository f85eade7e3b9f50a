package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/portfolio-site/portfolio/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPublisher_NilIsNoop(t *testing.T) {
	var p *EventPublisher
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), types.Event{Type: types.EventPostCreated})
	})
}

func TestEventPublisher_EncodesEvent(t *testing.T) {
	broker := &fakeBroker{}
	p := NewEventPublisher(broker, "site-events", logging.NewJSONLogger(io.Discard, "error"))

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p.Publish(context.Background(), types.Event{Type: types.EventPostUpdated, UserID: 3, PostID: 9, OccurredAt: at})

	require.Len(t, broker.messages, 1)
	msg := broker.messages[0]
	assert.Equal(t, "site-events", msg.channel)
	assert.Equal(t, "post.updated", msg.attrs["type"])

	event, err := DecodeEvent(msg.data)
	require.NoError(t, err)
	assert.Equal(t, 9, event.PostID)
	assert.True(t, at.Equal(event.OccurredAt))
}

func TestEventPublisher_SwallowsBrokerErrors(t *testing.T) {
	broker := &fakeBroker{err: errors.New("connection refused")}
	svc := newTestUserService(newFakeUserRepo(), broker)

	_, err := svc.Register(context.Background(), "bob", "hunter2")
	assert.NoError(t, err)
}
