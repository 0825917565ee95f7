package device

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	UnknownVendor  = "Unknown"
	Uncategorized  = "Uncategorized"
	DefaultGateway = "default_gateway"
)

// Profile is the persistent record of one physical device, keyed by its
// normalized hardware address.
type Profile struct {
	Address          string    `json:"mac_address"`
	DisplayName      string    `json:"friendly_name"`
	IsTagged         bool      `json:"is_tagged"`
	NotifyOnSight    bool      `json:"allow_notifications"`
	Vendor           string    `json:"vendor"`
	DeviceType       string    `json:"device_type"`
	RiskScore        float64   `json:"threat_score"`
	FirstSeenAt      time.Time `json:"first_seen"`
	LastSeenAt       time.Time `json:"last_seen"`
	ObservationCount int64     `json:"total_detections"`
}

// Classified reports whether the vendor has been resolved. Once true the
// classification fields of the profile are locked.
func (p Profile) Classified() bool {
	return p.Vendor != "" && p.Vendor != UnknownVendor
}

// Observation is one raw detection of a device by a gateway. It is never
// mutated after ingestion.
type Observation struct {
	ID                uuid.UUID `json:"id"`
	Address           string    `json:"mac_address"`
	SignalStrength    int       `json:"rssi"`
	GatewayID         string    `json:"gateway_id"`
	AdvertisementData string    `json:"advertisement_data"`
	Timestamp         time.Time `json:"timestamp"`
}

type Classification struct {
	Vendor     string  `json:"vendor"`
	DeviceType string  `json:"device_type"`
	RiskScore  float64 `json:"threat_score"`
}

// NormalizeAddress folds a hardware address into its canonical form:
// trimmed, upper case, colon delimited.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	address = strings.ReplaceAll(address, "-", ":")
	return strings.ToUpper(address)
}
