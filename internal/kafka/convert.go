package kafka

import (
	"errors"
	"fmt"
	"time"

	"ble-visibility-map/internal/device"

	"github.com/google/uuid"
)

var ErrInvalidRecord = errors.New("invalid audit record")

func NewProfileRecord(p device.Profile) StructuredConnectRecord {
	return StructuredConnectRecord{
		Schema: StructuredSchema,
		Payload: DeviceProfile{
			MacAddress:         p.Address,
			FriendlyName:       p.DisplayName,
			IsTagged:           p.IsTagged,
			AllowNotifications: p.NotifyOnSight,
			Vendor:             p.Vendor,
			DeviceType:         p.DeviceType,
			ThreatScore:        p.RiskScore,
			FirstSeen:          p.FirstSeenAt.UnixMilli(),
			LastSeen:           p.LastSeenAt.UnixMilli(),
			TotalDetections:    p.ObservationCount,
		},
	}
}

func (r StructuredConnectRecord) Profile() device.Profile {
	p := r.Payload
	return device.Profile{
		Address:          device.NormalizeAddress(p.MacAddress),
		DisplayName:      p.FriendlyName,
		IsTagged:         p.IsTagged,
		NotifyOnSight:    p.AllowNotifications,
		Vendor:           p.Vendor,
		DeviceType:       p.DeviceType,
		RiskScore:        p.ThreatScore,
		FirstSeenAt:      time.UnixMilli(p.FirstSeen).UTC(),
		LastSeenAt:       time.UnixMilli(p.LastSeen).UTC(),
		ObservationCount: p.TotalDetections,
	}
}

func NewObservationRecord(obs device.Observation) ObservationRecord {
	return ObservationRecord{
		ID:                obs.ID.String(),
		MacAddress:        obs.Address,
		RSSI:              obs.SignalStrength,
		GatewayID:         obs.GatewayID,
		AdvertisementData: obs.AdvertisementData,
		Timestamp:         obs.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func (r ObservationRecord) Observation() (device.Observation, error) {
	const fn = "Kafka:Observation"
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return device.Observation{}, fmt.Errorf("%s:%w:%w", fn, ErrInvalidRecord, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return device.Observation{}, fmt.Errorf("%s:%w:%w", fn, ErrInvalidRecord, err)
	}
	return device.Observation{
		ID:                id,
		Address:           device.NormalizeAddress(r.MacAddress),
		SignalStrength:    r.RSSI,
		GatewayID:         r.GatewayID,
		AdvertisementData: r.AdvertisementData,
		Timestamp:         ts.UTC(),
	}, nil
}
