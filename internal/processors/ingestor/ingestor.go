package ingestor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ble-visibility-map/internal/device"
	k "ble-visibility-map/internal/kafka" // alias to avoid name conflict
	"ble-visibility-map/internal/pipeline"
	"ble-visibility-map/internal/worker"

	"github.com/segmentio/kafka-go"
)

var (
	ErrReadMessage   = errors.New("error reading message")
	ErrIngest        = errors.New("error ingesting observation")
	ErrCommitMessage = errors.New("error committing message")
)

const defaultRetryDelay = 2 * time.Second

type ingester interface {
	Ingest(ctx context.Context, scan device.ScanInput) (pipeline.Result, error)
}

type Config struct {
	Brokers         string
	ConsumerGroupID string
	ConsumerTopic   string
	Pipeline        ingester
	// RetryDelay spaces out retries of an observation that failed to persist.
	RetryDelay time.Duration
}

// Ingestor feeds gateway observations from Kafka through the pipeline.
type Ingestor struct {
	worker     *worker.Worker
	reader     k.Reader
	pipeline   ingester
	pending    *kafka.Message
	retryDelay time.Duration
}

func New(cfg Config) *Ingestor {
	ingestor := &Ingestor{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{cfg.Brokers},
			GroupID: cfg.ConsumerGroupID,
			Topic:   cfg.ConsumerTopic,
		}),
		pipeline:   cfg.Pipeline,
		retryDelay: cfg.RetryDelay,
	}
	if ingestor.retryDelay <= 0 {
		ingestor.retryDelay = defaultRetryDelay
	}

	ingestor.worker = worker.New(worker.Config{
		Name:      "ingestor-worker",
		Processor: ingestor,
	})
	return ingestor
}

func (i *Ingestor) Run(ctx context.Context) {
	i.worker.Run(ctx)
}

func (i *Ingestor) Close(ctx context.Context) {
	slog.InfoContext(ctx, "Closing ingestor resources...")
	i.reader.Close()
}

// ProcessMessage handles one gateway observation. The offset is committed
// once the observation is stored, or once it is known it never will be
// (malformed or invalid). A persistence failure leaves the message pending
// and the next call retries it after RetryDelay.
func (i *Ingestor) ProcessMessage(ctx context.Context) error {
	const fn = "Ingestor:ProcessMessage"
	m, err := i.next(ctx)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrReadMessage, err)
	}

	var event k.ObservationEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		slog.WarnContext(ctx, "Malformed observation, skipping", "error", err, "offset", m.Offset)
		return i.commit(ctx, m)
	}
	scan, err := event.ScanInput()
	if err != nil {
		i.skipInvalid(ctx, event, err)
		return i.commit(ctx, m)
	}

	res, err := i.pipeline.Ingest(ctx, scan)
	if err != nil {
		if errors.Is(err, device.ErrValidation) {
			i.skipInvalid(ctx, event, err)
			return i.commit(ctx, m)
		}
		i.pending = &m
		return fmt.Errorf("%s:%w:%w", fn, ErrIngest, err)
	}

	slog.InfoContext(ctx, "Ingested observation",
		"mac_address", res.Profile.Address,
		"gateway_id", event.GatewayID,
		"new_device", res.IsNew,
		"alerted", res.Alerted,
	)
	return i.commit(ctx, m)
}

// next returns the pending message if a previous ingestion failed, else
// fetches a new one.
func (i *Ingestor) next(ctx context.Context) (kafka.Message, error) {
	if i.pending == nil {
		return i.reader.FetchMessage(ctx)
	}
	m := *i.pending
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case <-time.After(i.retryDelay):
	}
	slog.InfoContext(ctx, "Retrying observation", "offset", m.Offset)
	return m, nil
}

func (i *Ingestor) commit(ctx context.Context, m kafka.Message) error {
	const fn = "Ingestor:commit"
	i.pending = nil
	if err := i.reader.CommitMessages(ctx, m); err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrCommitMessage, err)
	}
	return nil
}

func (i *Ingestor) skipInvalid(ctx context.Context, event k.ObservationEvent, err error) {
	slog.WarnContext(ctx, "Invalid observation, skipping",
		"error", err,
		"mac_address", event.MacAddress,
		"gateway_id", event.GatewayID,
	)
}
