package api

import (
	"time"

	"ble-visibility-map/internal/device"
)

type ScanRequest struct {
	MacAddress        string `json:"mac_address"`
	RSSI              *int   `json:"rssi"`
	GatewayID         string `json:"gateway_id"`
	AdvertisementData string `json:"advertisement_data"`
	Timestamp         string `json:"timestamp"`
}

type TagRequest struct {
	FriendlyName       *string `json:"friendly_name"`
	AllowNotifications *bool   `json:"allow_notifications"`
}

type DeviceResponse struct {
	MacAddress         string  `json:"mac_address"`
	FriendlyName       string  `json:"friendly_name"`
	IsTagged           bool    `json:"is_tagged"`
	AllowNotifications bool    `json:"allow_notifications"`
	Vendor             string  `json:"vendor"`
	FirstSeen          string  `json:"first_seen"`
	LastSeen           string  `json:"last_seen"`
	TotalDetections    int64   `json:"total_detections"`
	ThreatScore        float64 `json:"threat_score"`
	DeviceType         string  `json:"device_type"`
}

type ListDevicesResponse struct {
	Devices []DeviceResponse `json:"devices"`
}

type ObservationResponse struct {
	ID                string `json:"id"`
	MacAddress        string `json:"mac_address"`
	RSSI              int    `json:"rssi"`
	GatewayID         string `json:"gateway_id"`
	AdvertisementData string `json:"advertisement_data"`
	Timestamp         string `json:"timestamp"`
}

type ListObservationsResponse struct {
	Observations []ObservationResponse `json:"observations"`
}

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

func newDeviceResponse(p device.Profile) DeviceResponse {
	return DeviceResponse{
		MacAddress:         p.Address,
		FriendlyName:       p.DisplayName,
		IsTagged:           p.IsTagged,
		AllowNotifications: p.NotifyOnSight,
		Vendor:             p.Vendor,
		FirstSeen:          p.FirstSeenAt.Format(time.RFC3339Nano),
		LastSeen:           p.LastSeenAt.Format(time.RFC3339Nano),
		TotalDetections:    p.ObservationCount,
		ThreatScore:        p.RiskScore,
		DeviceType:         p.DeviceType,
	}
}

func newObservationResponse(o device.Observation) ObservationResponse {
	return ObservationResponse{
		ID:                o.ID.String(),
		MacAddress:        o.Address,
		RSSI:              o.SignalStrength,
		GatewayID:         o.GatewayID,
		AdvertisementData: o.AdvertisementData,
		Timestamp:         o.Timestamp.Format(time.RFC3339Nano),
	}
}
