package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	k "ble-visibility-map/internal/kafka"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func Test_KafkaSink_Deliver(t *testing.T) {
	alert := Alert{
		Address:        "D4:A6:51:11:22:33",
		DisplayName:    "Suspicious Tracker",
		SignalStrength: -60,
		RiskScore:      0.4,
		DetectedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	alertBytes, _ := json.Marshal(alert)

	cases := []struct {
		name        string
		setupWriter func() k.Writer
		expectedErr error
	}{
		{
			name: "published",
			setupWriter: func() k.Writer {
				w := k.NewMockWriter(t)
				w.EXPECT().WriteMessages(
					mock.Anything,
					[]kafka.Message{{Key: []byte(alert.Address), Value: alertBytes}},
				).Return(nil)
				return w
			},
			expectedErr: nil,
		},
		{
			name: "writer failed",
			setupWriter: func() k.Writer {
				w := k.NewMockWriter(t)
				w.EXPECT().WriteMessages(mock.Anything, mock.Anything).Return(errors.New("failed"))
				return w
			},
			expectedErr: ErrWriteAlert,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			sink := newKafkaSink(tt.setupWriter(), BreakerConfig{})
			err := sink.Deliver(context.Background(), alert)
			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_KafkaSink_BreakerOpens(t *testing.T) {
	w := k.NewMockWriter(t)
	w.EXPECT().WriteMessages(mock.Anything, mock.Anything).Return(errors.New("broker down")).Times(2)

	sink := newKafkaSink(w, BreakerConfig{MaxFailures: 2, Timeout: time.Minute})
	alert := Alert{Address: "AA:BB:CC:DD:EE:FF"}

	assert.ErrorIs(t, sink.Deliver(context.Background(), alert), ErrWriteAlert)
	assert.ErrorIs(t, sink.Deliver(context.Background(), alert), ErrWriteAlert)
	assert.Equal(t, gobreaker.StateOpen, sink.State())

	// the writer is not called while the breaker is open
	assert.ErrorIs(t, sink.Deliver(context.Background(), alert), ErrCircuitOpen)
}
