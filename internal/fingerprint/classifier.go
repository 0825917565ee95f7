package fingerprint

import (
	"strings"

	"ble-visibility-map/internal/device"

	"github.com/tidwall/gjson"
)

const (
	AppleTracker = "Apple iDevice/Tracker"

	serviceUUIDsMarker = "service_uuids"
)

// Vendors maps an OUI prefix (six upper case hex digits) to a manufacturer.
var Vendors = map[string]string{
	"D4A651": "Apple",
	"54A6B1": "Xiaomi",
}

// Input is what a rule sees of an observation.
type Input struct {
	OUI     string
	Vendor  string
	Payload string
}

// Rule maps a match predicate to a classification. Rules are evaluated in
// order and the first match wins.
type Rule struct {
	Name   string
	Match  func(in Input) bool
	Output device.Classification
}

var DefaultRules = []Rule{
	{
		Name: "apple-service-uuids",
		Match: func(in Input) bool {
			return in.Vendor == "Apple" && HasServiceUUIDs(in.Payload)
		},
		Output: device.Classification{DeviceType: AppleTracker, RiskScore: 0.4},
	},
	{
		Name: "unknown-vendor",
		Match: func(in Input) bool {
			return in.Vendor == device.UnknownVendor
		},
		Output: device.Classification{DeviceType: device.Uncategorized, RiskScore: 0.6},
	},
	{
		Name:   "default",
		Match:  func(Input) bool { return true },
		Output: device.Classification{DeviceType: device.Uncategorized, RiskScore: 0.0},
	},
}

type Config struct {
	Vendors map[string]string
	Rules   []Rule
}

type Classifier struct {
	vendors map[string]string
	rules   []Rule
}

func New(cfg Config) *Classifier {
	c := &Classifier{vendors: cfg.Vendors, rules: cfg.Rules}
	if c.vendors == nil {
		c.vendors = Vendors
	}
	if c.rules == nil {
		c.rules = DefaultRules
	}
	return c
}

// Classify never fails: anything it cannot recognize degrades to the
// unknown vendor.
func (c *Classifier) Classify(obs device.Observation) device.Classification {
	in := Input{
		OUI:     OUI(obs.Address),
		Payload: obs.AdvertisementData,
	}
	in.Vendor = device.UnknownVendor
	if vendor, ok := c.vendors[in.OUI]; ok && in.OUI != "" {
		in.Vendor = vendor
	}

	out := device.Classification{
		Vendor:     in.Vendor,
		DeviceType: device.Uncategorized,
	}
	for _, rule := range c.rules {
		if rule.Match == nil || !rule.Match(in) {
			continue
		}
		out.DeviceType = rule.Output.DeviceType
		out.RiskScore = clamp(rule.Output.RiskScore)
		break
	}
	return out
}

// OUI returns the organizationally unique prefix of a hardware address, or
// "" when the address is too short to carry one.
func OUI(address string) string {
	if len(address) < 8 {
		return ""
	}
	prefix := strings.NewReplacer(":", "", "-", "", ".", "").Replace(address[:8])
	prefix = strings.ToUpper(prefix)
	if len(prefix) != 6 {
		return ""
	}
	return prefix
}

// HasServiceUUIDs reports whether an advertisement payload carries a
// service UUID field. Gateways send JSON; anything else is searched as text.
func HasServiceUUIDs(payload string) bool {
	if gjson.Valid(payload) {
		return gjson.Get(payload, serviceUUIDsMarker).Exists()
	}
	return strings.Contains(payload, serviceUUIDsMarker)
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
