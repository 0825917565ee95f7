package db

import (
	"time"

	"ble-visibility-map/internal/device"

	"github.com/google/uuid"
)

type DeviceRow struct {
	MacAddress         string    `db:"mac_address"`
	FriendlyName       string    `db:"friendly_name"`
	IsTagged           bool      `db:"is_tagged"`
	AllowNotifications bool      `db:"allow_notifications"`
	Vendor             string    `db:"vendor"`
	DeviceType         string    `db:"device_type"`
	ThreatScore        float64   `db:"threat_score"`
	FirstSeen          time.Time `db:"first_seen"`
	LastSeen           time.Time `db:"last_seen"`
	TotalDetections    int64     `db:"total_detections"`
}

func (r DeviceRow) Profile() device.Profile {
	return device.Profile{
		Address:          r.MacAddress,
		DisplayName:      r.FriendlyName,
		IsTagged:         r.IsTagged,
		NotifyOnSight:    r.AllowNotifications,
		Vendor:           r.Vendor,
		DeviceType:       r.DeviceType,
		RiskScore:        r.ThreatScore,
		FirstSeenAt:      r.FirstSeen.UTC(),
		LastSeenAt:       r.LastSeen.UTC(),
		ObservationCount: r.TotalDetections,
	}
}

type ScanEventRow struct {
	ID                string    `db:"id"`
	DeviceMac         string    `db:"device_mac"`
	RSSI              int       `db:"rssi"`
	GatewayID         string    `db:"gateway_id"`
	AdvertisementData string    `db:"advertisement_data"`
	Timestamp         time.Time `db:"timestamp"`
}

func (r ScanEventRow) Observation() device.Observation {
	id, _ := uuid.Parse(r.ID)
	return device.Observation{
		ID:                id,
		Address:           r.DeviceMac,
		SignalStrength:    r.RSSI,
		GatewayID:         r.GatewayID,
		AdvertisementData: r.AdvertisementData,
		Timestamp:         r.Timestamp.UTC(),
	}
}
