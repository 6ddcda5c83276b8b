package rabbit

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	"github.com/Temutjin2k/route-guard/pkg/metrics"
	"github.com/Temutjin2k/route-guard/pkg/rabbit"
)

const (
	ExchangeRouteTopic = "route_topic"

	QueueRouteModeration = "route_moderation"

	routeStoredKeyPattern = "route.stored.*"
)

// Topology is declared by both services on startup
var Topology = rabbit.Topology{
	Exchange:     ExchangeRouteTopic,
	ExchangeType: "topic",
	Bindings: []rabbit.Binding{
		{Queue: QueueRouteModeration, RoutingKey: routeStoredKeyPattern},
	},
}

// RouteStoredKey returns the routing key, e.g. route.stored.anonymous
func RouteStoredKey(msg models.RouteStoredMessage) string {
	return fmt.Sprintf("route.stored.%s", msg.SharingLevel)
}

type RouteBroker struct {
	client  *rabbit.RabbitMQ
	service string
	l       logger.Logger
}

func NewRouteBroker(client *rabbit.RabbitMQ, service string, l logger.Logger) *RouteBroker {
	return &RouteBroker{
		client:  client,
		service: service,
		l:       l,
	}
}

func (r *RouteBroker) publish(ctx context.Context, exchange, routingKey string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Body:          body,
		Timestamp:     time.Now(),
		CorrelationId: wrap.GetRequestID(ctx),
	}

	err = retry(ctx, 3, time.Second, func() error {
		if err := r.client.EnsureConnection(ctx); err != nil {
			return err
		}
		ch := r.client.Chan()
		if ch == nil {
			return fmt.Errorf("channel is closed")
		}
		return ch.PublishWithContext(ctx, exchange, routingKey, false, false, pub)
	})
	metrics.RecordRabbitMQPublish(r.service, exchange, err)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// PublishRouteStored queues a stored route for moderation
func (r *RouteBroker) PublishRouteStored(ctx context.Context, msg models.RouteStoredMessage) error {
	ctx = wrap.WithAction(ctx, "publish_route_stored")

	if err := r.publish(ctx, ExchangeRouteTopic, RouteStoredKey(msg), msg); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %w", types.ErrFailedToPublishRoute, err))
	}
	return nil
}

type RouteStoredHandlerFunc func(ctx context.Context, msg models.RouteStoredMessage) error

// ConsumeRouteStored reads the moderation queue until ctx is done, reconnecting on failures.
func (r *RouteBroker) ConsumeRouteStored(ctx context.Context, fn RouteStoredHandlerFunc) error {
	const op = "RouteBroker.ConsumeRouteStored"
	ctx = wrap.WithAction(ctx, "consume_route_stored")

	for {
		if ctx.Err() != nil {
			r.l.Debug(ctx, "route consumer stopped by context")
			return nil
		}

		if err := r.client.EnsureConnection(ctx); err != nil {
			r.l.Error(ctx, "ensure connection failed", err, "op", op)
			sleep(ctx, 2*time.Second)
			continue
		}

		ch := r.client.Chan()
		if ch == nil {
			sleep(ctx, 2*time.Second)
			continue
		}

		msgs, err := ch.Consume(QueueRouteModeration, "", false, false, false, false, nil)
		if err != nil {
			r.l.Error(ctx, "consume failed", err, "op", op)
			sleep(ctx, 2*time.Second)
			continue
		}

		r.l.Info(ctx, "start consuming stored routes", "queue", QueueRouteModeration)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				r.l.Info(ctx, "route consumer shutting down", "op", op)
				return nil

			case msg, ok := <-msgs:
				if !ok {
					r.l.Warn(ctx, "message channel closed, reconnecting...", "op", op)
					sleep(ctx, 2*time.Second)
					break consumeLoop
				}

				r.handleRouteStored(ctx, fn, msg)
			}
		}
	}
}

func (r *RouteBroker) handleRouteStored(ctx context.Context, fn RouteStoredHandlerFunc, msg amqp.Delivery) {
	var req models.RouteStoredMessage
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		r.l.Error(ctx, "decode failed", err)
		metrics.RecordRabbitMQConsume(r.service, QueueRouteModeration, err)
		_ = msg.Nack(false, false)
		return
	}

	ctx = wrap.WithRequestID(wrap.WithRouteID(ctx, req.RouteID.String()), msg.CorrelationId)

	err := fn(ctx, req)
	metrics.RecordRabbitMQConsume(r.service, QueueRouteModeration, err)
	if err != nil {
		r.l.Error(wrap.ErrorCtx(ctx, err), "failed to handle stored route", err)
		// requeue once on transient failures, drop otherwise
		_ = msg.Nack(false, isRecoverableError(err) && !msg.Redelivered)
		return
	}

	if err := msg.Ack(false); err != nil {
		r.l.Warn(ctx, "ack failed", "error", err.Error())
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
