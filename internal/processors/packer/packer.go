package packer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"ble-visibility-map/internal/device"
	k "ble-visibility-map/internal/kafka"

	"github.com/segmentio/kafka-go"
)

var (
	ErrMarshalRecord = errors.New("error marshalling record")
	ErrWriteMessage  = errors.New("error writing message")
)

type Config struct {
	Brokers        string
	PublisherTopic string
	// AuditTopic receives every committed observation. It must not be
	// compacted.
	AuditTopic string
}

// Packer packs committed profiles into Connect records and publishes them
// keyed by address, so a compacted topic keeps the latest profile per
// device. Observations go to the audit topic under the same key.
type Packer struct {
	writer      k.Writer
	auditWriter k.Writer
}

func New(cfg Config) *Packer {
	return &Packer{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers: []string{cfg.Brokers},
			Topic:   cfg.PublisherTopic,
		}),
		auditWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: []string{cfg.Brokers},
			Topic:   cfg.AuditTopic,
		}),
	}
}

func (p *Packer) Close(ctx context.Context) {
	slog.InfoContext(ctx, "Closing packer resources...")
	p.writer.Close()
	p.auditWriter.Close()
}

func (p *Packer) Publish(ctx context.Context, profile device.Profile) error {
	const fn = "Packer:Publish"
	out, err := json.Marshal(k.NewProfileRecord(profile))
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrMarshalRecord, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(profile.Address), Value: out})
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrWriteMessage, err)
	}
	slog.DebugContext(ctx, "Published packed profile", "mac_address", profile.Address)
	return nil
}

func (p *Packer) Record(ctx context.Context, obs device.Observation) error {
	const fn = "Packer:Record"
	out, err := json.Marshal(k.NewObservationRecord(obs))
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrMarshalRecord, err)
	}
	err = p.auditWriter.WriteMessages(ctx, kafka.Message{Key: []byte(obs.Address), Value: out})
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrWriteMessage, err)
	}
	return nil
}
