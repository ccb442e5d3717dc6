// Package events runs an embedded NATS server and fans command state
// transitions out to in-process subscribers, such as the live event stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/signalsfoundry/satti-simulator/internal/logging"
	"github.com/signalsfoundry/satti-simulator/model"
)

const subjectPrefix = "satti.commands."

// commandSubject returns the per-command transition subject.
func commandSubject(commandID string) string {
	return subjectPrefix + commandID + ".state"
}

// Bus is an embedded NATS server plus a client connection bound to it.
type Bus struct {
	server *server.Server
	nc     *nats.Conn
	log    logging.Logger
}

// NewBus starts the embedded server and connects to it. Port -1 picks a
// random free port.
func NewBus(port int, log logging.Logger) (*Bus, error) {
	if log == nil {
		log = logging.Noop()
	}
	if port == -1 {
		port = server.RANDOM_PORT
	}

	opts := &server.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoSigs: true,
		NoLog:  true,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready for connections")
	}

	nc, err := nats.Connect(ns.ClientURL(),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Warn(context.Background(), "event bus error", logging.String("error", err.Error()))
		}),
	)
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("connect to embedded NATS: %w", err)
	}

	log.Info(context.Background(), "event bus started", logging.String("url", ns.ClientURL()))
	return &Bus{server: ns, nc: nc, log: log}, nil
}

// CommandTransition publishes the event on the per-command subject. Publish
// failures are logged, not surfaced; the bus is an observer of the
// lifecycle, never a gate on it.
func (b *Bus) CommandTransition(ctx context.Context, ev model.CommandEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Warn(ctx, "event marshal failed", logging.String("command_id", ev.CommandID))
		return
	}
	if err := b.nc.Publish(commandSubject(ev.CommandID), payload); err != nil {
		b.log.Warn(ctx, "event publish failed",
			logging.String("command_id", ev.CommandID),
			logging.String("error", err.Error()),
		)
	}
}

// Subscribe delivers every command transition to the returned channel until
// ctx is cancelled. Slow consumers drop events rather than block the bus.
func (b *Bus) Subscribe(ctx context.Context) (<-chan model.CommandEvent, error) {
	fan := newFanout(64)

	sub, err := b.nc.Subscribe(subjectPrefix+"*.state", func(msg *nats.Msg) {
		var ev model.CommandEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			b.log.Warn(context.Background(), "event decode failed", logging.String("subject", msg.Subject))
			return
		}
		fan.deliver(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to command events: %w", err)
	}

	go func() {
		<-ctx.Done()
		// Unsubscribe does not wait for an in-flight callback, so the
		// channel close is serialized through the fanout lock instead.
		sub.Unsubscribe()
		fan.shutdown()
	}()
	return fan.ch, nil
}

// fanout hands subscription callbacks off to a channel. Delivery and
// shutdown share a lock so the channel is never closed mid-send.
type fanout struct {
	mu     sync.Mutex
	closed bool
	ch     chan model.CommandEvent
}

func newFanout(buffer int) *fanout {
	return &fanout{ch: make(chan model.CommandEvent, buffer)}
}

func (f *fanout) deliver(ev model.CommandEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- ev:
	default:
	}
}

func (f *fanout) shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.ch)
}

// Close drains the client connection and stops the server.
func (b *Bus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
	if b.server != nil {
		b.server.Shutdown()
		b.server.WaitForShutdown()
	}
}
