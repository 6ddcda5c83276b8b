package rabbit

import (
	"context"
	"fmt"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/pkg/logger"
)

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestHandleRouteStored_AckPolicy(t *testing.T) {
	valid, err := json.Marshal(models.RouteStoredMessage{
		RouteID:      uuid.New(),
		SharingLevel: types.SharingAnonymous,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name        string
		body        []byte
		redelivered bool
		handlerErr  error
		wantCalled  bool
		wantAck     bool
		wantRequeue bool
	}{
		{name: "bad json is dropped", body: []byte("{not json"), wantCalled: false},
		{name: "database failure requeued once", body: valid, handlerErr: fmt.Errorf("save: %w", types.ErrDatabaseFailed), wantCalled: true, wantRequeue: true},
		{name: "database failure on redelivery dropped", body: valid, redelivered: true, handlerErr: types.ErrDatabaseFailed, wantCalled: true},
		{name: "missing route dropped", body: valid, handlerErr: types.ErrRouteNotFound, wantCalled: true},
		{name: "success acked", body: valid, wantCalled: true, wantAck: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewRouteBroker(nil, "test", logger.NewNop())
			ack := &fakeAck{}
			called := false

			b.handleRouteStored(context.Background(), func(ctx context.Context, msg models.RouteStoredMessage) error {
				called = true
				return tt.handlerErr
			}, amqp.Delivery{Acknowledger: ack, Body: tt.body, Redelivered: tt.redelivered})

			if called != tt.wantCalled {
				t.Fatalf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if ack.acked != tt.wantAck {
				t.Fatalf("acked = %v, want %v", ack.acked, tt.wantAck)
			}
			if ack.nacked == tt.wantAck {
				t.Fatalf("nacked = %v, want %v", ack.nacked, !tt.wantAck)
			}
			if ack.requeue != tt.wantRequeue {
				t.Fatalf("requeue = %v, want %v", ack.requeue, tt.wantRequeue)
			}
		})
	}
}
