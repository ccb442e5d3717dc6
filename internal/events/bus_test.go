package events

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/satti-simulator/internal/logging"
	"github.com/signalsfoundry/satti-simulator/model"
)

func TestBusPublishAndSubscribe(t *testing.T) {
	bus, err := NewBus(-1, logging.Noop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	want := model.CommandEvent{
		CommandID:   "cmd-deadbeef0001",
		SatelliteID: "sat-1",
		State:       model.StateAcked,
		Message:     "Uplink ACK received from satellite",
		At:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	bus.CommandTransition(ctx, want)

	select {
	case got := <-ch:
		if got.CommandID != want.CommandID || got.State != want.State || got.Message != want.Message {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestBusSubscribeCancellationClosesChannel(t *testing.T) {
	bus, err := NewBus(-1, logging.Noop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after context cancellation")
	}
}

func TestFanoutDeliverAfterShutdownIsDropped(t *testing.T) {
	fan := newFanout(1)
	fan.deliver(model.CommandEvent{CommandID: "cmd-1", State: model.StateQueued})
	fan.shutdown()

	// A callback that raced the shutdown must drop its event instead of
	// sending on the closed channel.
	fan.deliver(model.CommandEvent{CommandID: "cmd-2", State: model.StateAcked})
	fan.shutdown()

	ev, ok := <-fan.ch
	if !ok || ev.CommandID != "cmd-1" {
		t.Fatalf("first receive = %+v, %v", ev, ok)
	}
	if _, ok := <-fan.ch; ok {
		t.Fatal("expected closed channel after shutdown")
	}
}

func TestBusCancelDuringPublishDoesNotPanic(t *testing.T) {
	bus, err := NewBus(-1, logging.Noop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			bus.CommandTransition(context.Background(), model.CommandEvent{
				CommandID: "cmd-race",
				State:     model.StateCapturing,
			})
		}
	}()
	cancel()
	<-done

	for {
		if _, ok := <-ch; !ok {
			return
		}
	}
}

func TestBusMultipleCommandsShareSubscription(t *testing.T) {
	bus, err := NewBus(-1, logging.Noop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	ids := []string{"cmd-a1", "cmd-b2", "cmd-c3"}
	for _, id := range ids {
		bus.CommandTransition(ctx, model.CommandEvent{CommandID: id, State: model.StateQueued})
	}

	seen := map[string]bool{}
	timeout := time.After(5 * time.Second)
	for len(seen) < len(ids) {
		select {
		case ev := <-ch:
			seen[ev.CommandID] = true
		case <-timeout:
			t.Fatalf("only received %v before timeout", seen)
		}
	}
}
