package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	k "ble-visibility-map/internal/kafka"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrMarshalAlert = errors.New("error marshalling alert")
	ErrWriteAlert   = errors.New("error writing alert")
	ErrCircuitOpen  = errors.New("alert circuit open")
)

// LogSink writes alerts to the structured log.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Deliver(ctx context.Context, alert Alert) error {
	slog.WarnContext(ctx, "Tagged device detected",
		"alert", alert.Message(),
		"address", alert.Address,
		"display_name", alert.DisplayName,
		"rssi", alert.SignalStrength,
		"risk", alert.RiskScore,
	)
	return nil
}

const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

type BreakerConfig struct {
	MaxFailures uint32
	Timeout     time.Duration
	Interval    time.Duration
}

type KafkaSinkConfig struct {
	Brokers string
	Topic   string
	Breaker BreakerConfig
}

// KafkaSink publishes alerts keyed by address. Repeated broker failures open
// the breaker so a dead broker does not stall the dispatcher.
type KafkaSink struct {
	writer  k.Writer
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewKafkaSink(cfg KafkaSinkConfig) *KafkaSink {
	return newKafkaSink(kafka.NewWriter(kafka.WriterConfig{
		Brokers: []string{cfg.Brokers},
		Topic:   cfg.Topic,
	}), cfg.Breaker)
}

func newKafkaSink(writer k.Writer, cfg BreakerConfig) *KafkaSink {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-alerts",
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return &KafkaSink{writer: writer, breaker: cb}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Deliver(ctx context.Context, alert Alert) error {
	const fn = "KafkaSink:Deliver"
	out, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrMarshalAlert, err)
	}
	_, err = s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(alert.Address), Value: out})
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s:%w:%w", fn, ErrCircuitOpen, err)
	}
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrWriteAlert, err)
	}
	return nil
}

func (s *KafkaSink) State() gobreaker.State {
	return s.breaker.State()
}

func (s *KafkaSink) Close(ctx context.Context) {
	slog.InfoContext(ctx, "Closing alert sink resources...")
	s.writer.Close()
}
