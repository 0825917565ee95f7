package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Synthetic gateway: posts a batch of scans for a fixed set of devices on
// every tick, the way a laptop scanner would.

const (
	baseURL      = "http://localhost:8080"
	gatewayID    = "go_simulated_gateway_01"
	scanInterval = 10 * time.Second
)

type advertisement struct {
	LocalName        *string        `json:"local_name"`
	ManufacturerData map[int]string `json:"manufacturer_data"`
	ServiceUUIDs     []string       `json:"service_uuids"`
	TxPower          *int           `json:"tx_power"`
}

type scan struct {
	MacAddress        string `json:"mac_address"`
	RSSI              int    `json:"rssi"`
	GatewayID         string `json:"gateway_id"`
	AdvertisementData string `json:"advertisement_data"`
	Timestamp         string `json:"timestamp"`
}

type simulatedDevice struct {
	address string
	adv     advertisement
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

var devices = []simulatedDevice{
	{
		address: "d4:a6:51:10:20:30",
		adv: advertisement{
			LocalName:        strPtr("AirTag"),
			ManufacturerData: map[int]string{76: "12190010"},
			ServiceUUIDs:     []string{"0000fd44-0000-1000-8000-00805f9b34fb"},
			TxPower:          intPtr(12),
		},
	},
	{
		address: "54-A6-B1-40-50-60",
		adv: advertisement{
			LocalName:        strPtr("Mi Band"),
			ManufacturerData: map[int]string{343: "0300"},
			ServiceUUIDs:     []string{},
		},
	},
	{
		address: "AA:BB:CC:01:02:03",
		adv: advertisement{
			ManufacturerData: map[int]string{},
			ServiceUUIDs:     []string{},
		},
	},
}

func post(client *http.Client, d simulatedDevice) error {
	adv, err := json.Marshal(d.adv)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(scan{
		MacAddress:        d.address,
		RSSI:              -30 - rand.IntN(60),
		GatewayID:         gatewayID,
		AdvertisementData: string(adv),
		Timestamp:         time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	resp, err := client.Post(baseURL+"/scans", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %s: %s", resp.Status, string(body))
	}
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}
	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	fmt.Println("Gateway simulator started, posting to", baseURL+"/scans")
	for {
		for _, d := range devices {
			if err := post(client, d); err != nil {
				fmt.Printf("failed to post %s: %v\n", d.address, err)
			}
		}
		fmt.Printf("[%s] posted %d scans\n", time.Now().Format(time.TimeOnly), len(devices))

		select {
		case <-ctx.Done():
			fmt.Println("Gateway simulator stopped")
			return
		case <-ticker.C:
		}
	}
}
