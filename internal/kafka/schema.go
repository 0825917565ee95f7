package kafka

import "ble-visibility-map/internal/device"

// ObservationEvent is a gateway scan as published on the observations
// topic. Timestamp is optional and may omit the UTC offset.
type ObservationEvent struct {
	MacAddress        string `json:"mac_address"`
	RSSI              *int   `json:"rssi"`
	GatewayID         string `json:"gateway_id"`
	AdvertisementData string `json:"advertisement_data"`
	Timestamp         string `json:"timestamp,omitempty"`
}

func (e ObservationEvent) ScanInput() (device.ScanInput, error) {
	ts, err := device.ParseTimestamp(e.Timestamp)
	if err != nil {
		return device.ScanInput{}, err
	}
	return device.ScanInput{
		Address:           e.MacAddress,
		SignalStrength:    e.RSSI,
		GatewayID:         e.GatewayID,
		AdvertisementData: e.AdvertisementData,
		Timestamp:         ts,
	}, nil
}

// ObservationRecord is the audit form of a committed observation. The
// audit topic is append-only; records are never compacted away.
type ObservationRecord struct {
	ID                string `json:"id"`
	MacAddress        string `json:"mac_address"`
	RSSI              int    `json:"rssi"`
	GatewayID         string `json:"gateway_id"`
	AdvertisementData string `json:"advertisement_data"`
	Timestamp         string `json:"timestamp"`
}

type StructuredConnectRecord struct {
	Schema  Schema        `json:"schema"`
	Payload DeviceProfile `json:"payload"`
}

// DeviceProfile is the changelog form of a profile. Timestamps are unix
// milliseconds so the record maps onto a Connect int64 schema.
type DeviceProfile struct {
	MacAddress         string  `json:"mac_address"`
	FriendlyName       string  `json:"friendly_name"`
	IsTagged           bool    `json:"is_tagged"`
	AllowNotifications bool    `json:"allow_notifications"`
	Vendor             string  `json:"vendor"`
	DeviceType         string  `json:"device_type"`
	ThreatScore        float64 `json:"threat_score"`
	FirstSeen          int64   `json:"first_seen"`
	LastSeen           int64   `json:"last_seen"`
	TotalDetections    int64   `json:"total_detections"`
}

type Schema struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Fields   []Field `json:"fields"`
	Optional bool    `json:"optional"`
}

type Field struct {
	Field string `json:"field"`
	Type  string `json:"type"`
}

var StructuredSchema = Schema{
	Type:     "struct",
	Name:     "DeviceProfile",
	Optional: false,
	Fields: []Field{
		{Field: "mac_address", Type: "string"},
		{Field: "friendly_name", Type: "string"},
		{Field: "is_tagged", Type: "boolean"},
		{Field: "allow_notifications", Type: "boolean"},
		{Field: "vendor", Type: "string"},
		{Field: "device_type", Type: "string"},
		{Field: "threat_score", Type: "double"},
		{Field: "first_seen", Type: "int64"},
		{Field: "last_seen", Type: "int64"},
		{Field: "total_detections", Type: "int64"},
	},
}
