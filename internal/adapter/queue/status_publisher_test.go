package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/srgjo27/resort_booking/internal/core/domain"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestPublishStatusCommand(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewStatusPublisher(ch, "", zaptest.NewLogger(t))

	cmd := domain.StatusCommand{
		ReservationID: uuid.New(),
		ReferenceCode: "RSV-0A1B2C3D",
		From:          domain.BookingPending,
		Target:        domain.BookingConfirmed,
		Action:        domain.ActionApprove,
		IssuedAt:      time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, pub.PublishStatusCommand(context.Background(), cmd))

	assert.Equal(t, "", ch.exchange)
	assert.Equal(t, DefaultStatusQueue, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, cmd.ReservationID.String(), ch.msg.CorrelationId)
	assert.Equal(t, "approve", ch.msg.Type)

	var got domain.StatusCommand
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, cmd, got)
}

func TestPublishStatusCommand_BrokerError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	pub := NewStatusPublisher(ch, "custom.queue", nil)

	err := pub.PublishStatusCommand(context.Background(), domain.StatusCommand{ReservationID: uuid.New()})

	assert.ErrorContains(t, err, "channel closed")
	assert.Equal(t, "custom.queue", ch.key)
}
