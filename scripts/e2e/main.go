package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Steps:
// 1. Publish gateway observations to the ble-observations topic
// 2. Wait for the ingestor to process them
// 3. Tag one device over HTTP and publish another sighting of it
// 4. Fetch every profile and check counts and tagging

const (
	broker  = "localhost:9092"
	topic   = "ble-observations"
	baseURL = "http://localhost:8080"
)

type observation struct {
	MacAddress        string `json:"mac_address"`
	RSSI              int    `json:"rssi"`
	GatewayID         string `json:"gateway_id"`
	AdvertisementData string `json:"advertisement_data"`
	Timestamp         string `json:"timestamp"`
}

type deviceProfile struct {
	MacAddress      string  `json:"mac_address"`
	FriendlyName    string  `json:"friendly_name"`
	IsTagged        bool    `json:"is_tagged"`
	Vendor          string  `json:"vendor"`
	DeviceType      string  `json:"device_type"`
	ThreatScore     float64 `json:"threat_score"`
	TotalDetections int64   `json:"total_detections"`
}

func publish(ctx context.Context, writer *kafka.Writer, obs []observation) {
	messages := make([]kafka.Message, 0, len(obs))
	for _, o := range obs {
		value, err := json.Marshal(o)
		if err != nil {
			panic(err)
		}
		messages = append(messages, kafka.Message{Key: []byte(o.MacAddress), Value: value})
	}
	if err := writer.WriteMessages(ctx, messages...); err != nil {
		panic(fmt.Errorf("failed to write messages: %w", err))
	}
	fmt.Printf("Published %d observations to %s\n", len(messages), topic)
}

func main() {
	ctx := context.Background()
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: []string{broker},
		Topic:   topic,
	})
	defer writer.Close()

	now := time.Now().UTC()
	adv := `{"local_name": "AirTag", "service_uuids": ["0000fd44-0000-1000-8000-00805f9b34fb"]}`
	publish(ctx, writer, []observation{
		{MacAddress: "D4:A6:51:AA:00:01", RSSI: -40, GatewayID: "e2e", AdvertisementData: adv, Timestamp: now.Format(time.RFC3339Nano)},
		{MacAddress: "d4-a6-51-aa-00-01", RSSI: -42, GatewayID: "e2e", AdvertisementData: adv, Timestamp: now.Add(time.Second).Format(time.RFC3339Nano)},
		{MacAddress: "54:A6:B1:AA:00:02", RSSI: -70, GatewayID: "e2e", Timestamp: now.Format(time.RFC3339Nano)},
		{MacAddress: "00:11:22:AA:00:03", RSSI: -80, GatewayID: "e2e", Timestamp: now.Format(time.RFC3339Nano)},
	})

	time.Sleep(15 * time.Second)

	resp, err := http.Post(baseURL+"/tags/D4:A6:51:AA:00:01", "application/json",
		strings.NewReader(`{"friendly_name": "E2E Tracker", "allow_notifications": true}`))
	if err != nil {
		panic(err)
	}
	resp.Body.Close()
	fmt.Println("POST /tags status:", resp.Status)

	publish(ctx, writer, []observation{
		{MacAddress: "D4:A6:51:AA:00:01", RSSI: -35, GatewayID: "e2e", AdvertisementData: adv, Timestamp: now.Add(2 * time.Second).Format(time.RFC3339Nano)},
	})
	time.Sleep(15 * time.Second)

	resp, err = http.Get(baseURL + "/devices")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}
	var result struct {
		Devices []deviceProfile `json:"devices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Raw response: %s\n", string(body))
		panic(err)
	}

	expected := map[string]deviceProfile{
		"D4:A6:51:AA:00:01": {Vendor: "Apple", DeviceType: "Apple iDevice/Tracker", ThreatScore: 0.4, TotalDetections: 3, IsTagged: true},
		"54:A6:B1:AA:00:02": {Vendor: "Xiaomi", DeviceType: "Uncategorized", ThreatScore: 0.0, TotalDetections: 1},
		"00:11:22:AA:00:03": {Vendor: "Unknown", DeviceType: "Uncategorized", ThreatScore: 0.6, TotalDetections: 1},
	}
	failures := 0
	for _, d := range result.Devices {
		want, ok := expected[d.MacAddress]
		if !ok {
			continue
		}
		if d.Vendor != want.Vendor || d.DeviceType != want.DeviceType || d.ThreatScore != want.ThreatScore ||
			d.TotalDetections != want.TotalDetections || d.IsTagged != want.IsTagged {
			fmt.Printf("MISMATCH %s: got %+v want %+v\n", d.MacAddress, d, want)
			failures++
		} else {
			fmt.Printf("OK %s\n", d.MacAddress)
		}
		delete(expected, d.MacAddress)
	}
	for address := range expected {
		fmt.Printf("MISSING %s\n", address)
		failures++
	}
	if failures > 0 {
		panic(fmt.Errorf("%d devices did not match", failures))
	}
	fmt.Println("All devices matched")
}
