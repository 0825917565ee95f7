package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Reader is the subset of *kafka.Reader the processors depend on.
// ReadMessage commits on its own when the reader belongs to a group;
// FetchMessage leaves the commit to CommitMessages.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Lag() int64
	Close() error
}

// Writer is the subset of *kafka.Writer the processors depend on.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
