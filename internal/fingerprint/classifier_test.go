package fingerprint

import (
	"testing"

	"ble-visibility-map/internal/device"

	"github.com/stretchr/testify/assert"
)

func Test_Classify(t *testing.T) {
	cases := []struct {
		name     string
		address  string
		payload  string
		expected device.Classification
	}{
		{
			name:     "apple with service uuids",
			address:  "D4:A6:51:11:22:33",
			payload:  `{"local_name": null, "manufacturer_data": {}, "service_uuids": ["0000fd6f-0000-1000-8000-00805f9b34fb"], "tx_power": null}`,
			expected: device.Classification{Vendor: "Apple", DeviceType: AppleTracker, RiskScore: 0.4},
		},
		{
			name:     "apple with empty service uuids list",
			address:  "d4:a6:51:11:22:33",
			payload:  `{"service_uuids": []}`,
			expected: device.Classification{Vendor: "Apple", DeviceType: AppleTracker, RiskScore: 0.4},
		},
		{
			name:     "apple without marker",
			address:  "D4:A6:51:11:22:33",
			payload:  `{"local_name": "iPhone", "tx_power": 12}`,
			expected: device.Classification{Vendor: "Apple", DeviceType: device.Uncategorized, RiskScore: 0.0},
		},
		{
			name:     "apple with non json payload containing marker",
			address:  "D4:A6:51:11:22:33",
			payload:  "service_uuids=180f",
			expected: device.Classification{Vendor: "Apple", DeviceType: AppleTracker, RiskScore: 0.4},
		},
		{
			name:     "xiaomi ignores marker",
			address:  "54-a6-b1-00-00-01",
			payload:  `{"service_uuids": ["fe95"]}`,
			expected: device.Classification{Vendor: "Xiaomi", DeviceType: device.Uncategorized, RiskScore: 0.0},
		},
		{
			name:     "unmatched prefix",
			address:  "11:22:33:44:55:66",
			payload:  `{"service_uuids": []}`,
			expected: device.Classification{Vendor: device.UnknownVendor, DeviceType: device.Uncategorized, RiskScore: 0.6},
		},
		{
			name:     "short address",
			address:  "D4:A6",
			expected: device.Classification{Vendor: device.UnknownVendor, DeviceType: device.Uncategorized, RiskScore: 0.6},
		},
		{
			name:     "empty address",
			address:  "",
			expected: device.Classification{Vendor: device.UnknownVendor, DeviceType: device.Uncategorized, RiskScore: 0.6},
		},
	}

	classifier := New(Config{})
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(device.Observation{
				Address:           tt.address,
				AdvertisementData: tt.payload,
			})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func Test_Classify_Deterministic(t *testing.T) {
	classifier := New(Config{})
	obs := device.Observation{Address: "D4:A6:51:11:22:33", AdvertisementData: `{"service_uuids": []}`}
	first := classifier.Classify(obs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, classifier.Classify(obs))
	}
}

func Test_Classify_CustomRules(t *testing.T) {
	classifier := New(Config{
		Vendors: map[string]string{"AABBCC": "Acme"},
		Rules: []Rule{
			{
				Name:   "acme-beacon",
				Match:  func(in Input) bool { return in.Vendor == "Acme" },
				Output: device.Classification{DeviceType: "Beacon", RiskScore: 3.5},
			},
		},
	})

	got := classifier.Classify(device.Observation{Address: "aa:bb:cc:00:00:00"})
	assert.Equal(t, device.Classification{Vendor: "Acme", DeviceType: "Beacon", RiskScore: 1.0}, got)

	// no rule matches: vendor is kept, type and risk fall back to defaults
	got = classifier.Classify(device.Observation{Address: "D4:A6:51:11:22:33"})
	assert.Equal(t, device.Classification{Vendor: device.UnknownVendor, DeviceType: device.Uncategorized}, got)
}

func Test_OUI(t *testing.T) {
	cases := []struct {
		address  string
		expected string
	}{
		{address: "d4:a6:51:11:22:33", expected: "D4A651"},
		{address: "D4-A6-51-11-22-33", expected: "D4A651"},
		{address: "d4a6.5111.2233", expected: ""},
		{address: "D4:A6:5", expected: ""},
		{address: "", expected: ""},
	}
	for _, tt := range cases {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.expected, OUI(tt.address))
		})
	}
}
