package notifier

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	defaultBuffer          = 256
	defaultDeliveryTimeout = 5 * time.Second
)

// Sink delivers an alert to one channel (console, broker, push...).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, alert Alert) error
}

type Config struct {
	Sinks           []Sink
	Buffer          int
	DeliveryTimeout time.Duration
}

// Dispatcher hands alerts to its sinks from a background goroutine so the
// ingestion path never waits on delivery.
type Dispatcher struct {
	sinks     []Sink
	queue     chan Alert
	timeout   time.Duration
	attempted atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
}

func NewDispatcher(cfg Config) *Dispatcher {
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	timeout := cfg.DeliveryTimeout
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}
	return &Dispatcher{
		sinks:   cfg.Sinks,
		queue:   make(chan Alert, buffer),
		timeout: timeout,
	}
}

// Dispatch queues alert for delivery and reports whether it was accepted.
// A full queue drops the alert.
func (d *Dispatcher) Dispatch(alert Alert) bool {
	select {
	case d.queue <- alert:
		d.attempted.Add(1)
		return true
	default:
		d.dropped.Add(1)
		slog.Warn("Alert queue full, dropping alert", "address", alert.Address)
		return false
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	slog.InfoContext(ctx, "Alert dispatcher started...", "sinks", len(d.sinks))
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Alert dispatcher stopped...", "pending", len(d.queue))
			return
		case alert := <-d.queue:
			d.deliver(ctx, alert)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, alert Alert) {
	ok := true
	for _, sink := range d.sinks {
		deliverCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := sink.Deliver(deliverCtx, alert)
		cancel()
		if err != nil {
			ok = false
			slog.ErrorContext(ctx, "Error delivering alert",
				"sink", sink.Name(),
				"address", alert.Address,
				"error", err,
			)
		}
	}
	if ok {
		d.delivered.Add(1)
	}
}

func (d *Dispatcher) Attempted() int64 { return d.attempted.Load() }

func (d *Dispatcher) Delivered() int64 { return d.delivered.Load() }

func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }
