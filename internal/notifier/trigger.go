package notifier

import (
	"fmt"
	"time"

	"ble-visibility-map/internal/device"
)

// Alert is emitted when a device flagged for notification is seen again.
type Alert struct {
	Address        string    `json:"mac_address"`
	DisplayName    string    `json:"friendly_name"`
	SignalStrength int       `json:"rssi"`
	RiskScore      float64   `json:"threat_score"`
	DetectedAt     time.Time `json:"detected_at"`
}

func (a Alert) Message() string {
	return fmt.Sprintf("Tagged device DETECTED: MAC=%s | Name='%s' | RSSI=%d dBm | Risk=%.1f",
		a.Address, a.DisplayName, a.SignalStrength, a.RiskScore)
}

// Trigger decides whether a freshly updated profile warrants an alert. It
// fires on every matching observation; there is no rate limiting.
type Trigger struct{}

func (Trigger) Evaluate(profile device.Profile, signalStrength int) (Alert, bool) {
	if !profile.NotifyOnSight {
		return Alert{}, false
	}
	return Alert{
		Address:        profile.Address,
		DisplayName:    profile.DisplayName,
		SignalStrength: signalStrength,
		RiskScore:      profile.RiskScore,
		DetectedAt:     profile.LastSeenAt,
	}, true
}
