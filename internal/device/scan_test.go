package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func Test_NormalizeAddress(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lower case", input: "aa:bb:cc:dd:ee:ff", expected: "AA:BB:CC:DD:EE:FF"},
		{name: "already normalized", input: "AA:BB:CC:DD:EE:FF", expected: "AA:BB:CC:DD:EE:FF"},
		{name: "dash delimited", input: "aa-bb-cc-dd-ee-ff", expected: "AA:BB:CC:DD:EE:FF"},
		{name: "surrounding whitespace", input: "  d4:a6:51:11:22:33\n", expected: "D4:A6:51:11:22:33"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAddress(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, NormalizeAddress(got))
		})
	}
}

func Test_Validate(t *testing.T) {
	cases := []struct {
		name        string
		input       ScanInput
		expectedErr error
	}{
		{
			name:        "valid scan",
			input:       ScanInput{Address: "aa:bb:cc:dd:ee:ff", SignalStrength: intPtr(-60)},
			expectedErr: nil,
		},
		{
			name:        "missing address",
			input:       ScanInput{Address: "   ", SignalStrength: intPtr(-60)},
			expectedErr: ErrValidation,
		},
		{
			name:        "missing rssi",
			input:       ScanInput{Address: "aa:bb:cc:dd:ee:ff"},
			expectedErr: ErrValidation,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_Observation(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sent := time.Date(2024, 5, 1, 11, 59, 0, 0, time.FixedZone("CET", 3600))

	obs := ScanInput{Address: "d4:a6:51:11:22:33", SignalStrength: intPtr(-60)}.Observation(now)
	assert.Equal(t, "D4:A6:51:11:22:33", obs.Address)
	assert.Equal(t, DefaultGateway, obs.GatewayID)
	assert.Equal(t, now, obs.Timestamp)
	assert.Equal(t, -60, obs.SignalStrength)
	assert.NotEqual(t, [16]byte{}, [16]byte(obs.ID))

	obs = ScanInput{Address: "d4:a6:51:11:22:33", SignalStrength: intPtr(-70), GatewayID: "gw-1", Timestamp: &sent}.Observation(now)
	assert.Equal(t, "gw-1", obs.GatewayID)
	assert.True(t, sent.Equal(obs.Timestamp))
	assert.Equal(t, time.UTC, obs.Timestamp.Location())
}

func Test_ParseTimestamp(t *testing.T) {
	cases := []struct {
		name        string
		input       string
		expected    *time.Time
		expectedErr error
	}{
		{name: "empty", input: "", expected: nil},
		{
			name:     "rfc3339",
			input:    "2024-05-01T12:00:00Z",
			expected: ptrTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		},
		{
			name:     "rfc3339 with offset",
			input:    "2024-05-01T14:00:00+02:00",
			expected: ptrTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		},
		{
			name:     "naive isoformat with micros",
			input:    "2024-05-01T12:00:00.250000",
			expected: ptrTime(time.Date(2024, 5, 1, 12, 0, 0, 250000000, time.UTC)),
		},
		{name: "garbage", input: "yesterday", expectedErr: ErrValidation},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			assert.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			assert.True(t, tt.expected.Equal(*got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
