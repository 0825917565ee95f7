package device

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	errMissingAddress   = errors.New("mac_address is required")
	errMissingRSSI      = errors.New("rssi is required")
	errInvalidTimestamp = errors.New("timestamp is not ISO 8601")
)

// Gateways built on naive UTC clocks send timestamps without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ScanInput is an observation as submitted by a gateway, before it is
// validated and stamped.
type ScanInput struct {
	Address           string
	SignalStrength    *int
	GatewayID         string
	AdvertisementData string
	Timestamp         *time.Time
}

func (s ScanInput) Validate() error {
	const fn = "Device:Validate"
	if NormalizeAddress(s.Address) == "" {
		return fmt.Errorf("%s:%w:%w", fn, ErrValidation, errMissingAddress)
	}
	if s.SignalStrength == nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrValidation, errMissingRSSI)
	}
	return nil
}

// Observation stamps a validated scan. The timestamp falls back to now when
// the gateway did not send one.
func (s ScanInput) Observation(now time.Time) Observation {
	ts := now.UTC()
	if s.Timestamp != nil && !s.Timestamp.IsZero() {
		ts = s.Timestamp.UTC()
	}
	gateway := s.GatewayID
	if gateway == "" {
		gateway = DefaultGateway
	}
	var rssi int
	if s.SignalStrength != nil {
		rssi = *s.SignalStrength
	}
	return Observation{
		ID:                uuid.New(),
		Address:           NormalizeAddress(s.Address),
		SignalStrength:    rssi,
		GatewayID:         gateway,
		AdvertisementData: s.AdvertisementData,
		Timestamp:         ts,
	}
}

// ParseTimestamp parses an optional scan timestamp. An empty string yields
// nil; timestamps without an offset are taken as UTC.
func ParseTimestamp(value string) (*time.Time, error) {
	const fn = "Device:ParseTimestamp"
	if value == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("%s:%w:%w", fn, ErrValidation, errInvalidTimestamp)
}
