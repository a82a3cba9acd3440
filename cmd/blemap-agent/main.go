package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/mock"
)

// blemap-agent simulates an edge listener: it generates BLE sightings and
// reports them to the server in batches over the listener HTTP contract.
// On real deployments this role is played by the scanning firmware.
func main() {
	serverURL := flag.String("server", "http://localhost:8080", "blemap server base URL")
	listenerMAC := flag.String("mac", mock.ListenerMAC(0), "Listener MAC address to report as")
	interval := flag.Duration("interval", 5*time.Second, "Reporting interval")
	fleetSize := flag.Int("fleet", 20, "Number of simulated devices")
	batchSize := flag.Int("batch", 10, "Sightings per batch")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	gen := mock.NewGenerator(*seed, *fleetSize)
	client := &http.Client{Timeout: 10 * time.Second}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("Agent started. Reporting to %s as %s every %s", *serverURL, *listenerMAC, *interval)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("Agent shutting down")
			return
		case <-ticker.C:
			if err := report(ctx, client, *serverURL, *listenerMAC, gen.NextBatch(*batchSize)); err != nil {
				log.Printf("Report failed: %v", err)
			}
		}
	}
}

func report(ctx context.Context, client *http.Client, serverURL, listenerMAC string, batch []domain.Sighting) error {
	payload, err := json.Marshal(map[string]any{
		"devices":     batch,
		"listenerMac": listenerMAC,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/devices", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var result struct {
		Stats domain.TrackerStats `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	log.Printf("Reported %d sightings (server tracks %d devices, %d suspicious)",
		len(batch), result.Stats.TotalDevices, result.Stats.Suspicious)
	return nil
}
