package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/srgjo27/resort_booking/internal/core/domain"
)

const DefaultStatusQueue = "reservation.status"

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// StatusPublisher hands approved status changes to whoever applies them
// downstream (notification, accounting). Messages are persistent JSON.
type StatusPublisher struct {
	ch    publishChannel
	queue string
	log   *zap.Logger
}

func NewStatusPublisher(ch publishChannel, queue string, log *zap.Logger) *StatusPublisher {
	if queue == "" {
		queue = DefaultStatusQueue
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusPublisher{ch: ch, queue: queue, log: log}
}

// Dial connects to the broker and declares the durable status queue. The
// returned close func shuts down both channel and connection.
func Dial(url, queue string, log *zap.Logger) (*StatusPublisher, func() error, error) {
	if queue == "" {
		queue = DefaultStatusQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	closeFn := func() error {
		_ = ch.Close()
		return conn.Close()
	}

	return NewStatusPublisher(ch, queue, log), closeFn, nil
}

func (p *StatusPublisher) PublishStatusCommand(ctx context.Context, cmd domain.StatusCommand) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal status command: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		MessageId:     fmt.Sprintf("%s:%s", cmd.ReservationID, cmd.Target),
		CorrelationId: cmd.ReservationID.String(),
		Type:          string(cmd.Action),
		Body:          body,
	}

	if err := p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	p.log.Debug("status command published",
		zap.String("queue", p.queue),
		zap.String("reservation_id", cmd.ReservationID.String()),
		zap.String("target", string(cmd.Target)),
	)

	return nil
}
