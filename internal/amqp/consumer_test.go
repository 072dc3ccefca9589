package amqp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type ackRecorder struct {
	acks    []uint64
	nacks   []uint64
	requeue []bool
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.acks = append(a.acks, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks = append(a.nacks, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func quietClient() *Client {
	return &Client{queueName: "obras.progress_approved", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func delivery(ack *ackRecorder, tag uint64, body []byte, redelivered bool) amqp091.Delivery {
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body, Redelivered: redelivered}
}

func TestDispatch_AckNackPolicy(t *testing.T) {
	good, _ := NewProgressApprovedMessage("1", "Centro Comunitario Norte", 75, "activa", "").ToJSON()
	bad, _ := NewProgressApprovedMessage("2", "Parque Infantil Sur", 25, "pendiente", "").ToJSON()

	ack := &ackRecorder{}
	deliveries := make(chan amqp091.Delivery, 5)
	deliveries <- delivery(ack, 1, good, false)
	deliveries <- delivery(ack, 2, []byte("{not json"), false)
	deliveries <- delivery(ack, 3, bad, false)
	deliveries <- delivery(ack, 4, bad, true)
	close(deliveries)

	var handled []string
	handler := func(ctx context.Context, msg *ProgressApprovedMessage) error {
		handled = append(handled, msg.ProjectID)
		if msg.ProjectID == "2" {
			return errors.New("journal unavailable")
		}
		return nil
	}

	err := quietClient().dispatch(context.Background(), deliveries, handler)
	if err == nil {
		t.Fatal("closed delivery channel should end dispatch with an error")
	}

	if len(ack.acks) != 1 || ack.acks[0] != 1 {
		t.Errorf("acks = %v, want [1]", ack.acks)
	}
	wantNacks := []uint64{2, 3, 4}
	wantRequeue := []bool{false, true, false}
	if len(ack.nacks) != len(wantNacks) {
		t.Fatalf("nacks = %v, want %v", ack.nacks, wantNacks)
	}
	for i := range wantNacks {
		if ack.nacks[i] != wantNacks[i] || ack.requeue[i] != wantRequeue[i] {
			t.Errorf("nack %d = (%d, requeue=%v), want (%d, requeue=%v)",
				i, ack.nacks[i], ack.requeue[i], wantNacks[i], wantRequeue[i])
		}
	}
	if len(handled) != 3 {
		t.Errorf("handler called %d times, want 3", len(handled))
	}
}

func TestDispatch_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	deliveries := make(chan amqp091.Delivery)

	errCh := make(chan error, 1)
	go func() {
		errCh <- quietClient().dispatch(ctx, deliveries, func(context.Context, *ProgressApprovedMessage) error { return nil })
	}()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("dispatch did not stop after cancel")
	}
}

func TestConsume_NotConnected(t *testing.T) {
	err := quietClient().ConsumeProgressApproved(context.Background(), nil)
	if !errors.Is(err, errNotConnected) {
		t.Fatalf("expected not connected, got %v", err)
	}
}
