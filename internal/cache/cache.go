package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"ble-visibility-map/internal/device"
	k "ble-visibility-map/internal/kafka"
	"ble-visibility-map/internal/registry"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var (
	ErrReadMessage  = errors.New("error reading message")
	ErrParseMessage = errors.New("error parsing message")
)

type Config struct {
	// Brokers and ConsumerTopic locate the profile changelog used by
	// Hydrate. Leave Brokers empty to start from an empty store.
	Brokers       string
	ConsumerTopic string
	// AuditTopic holds every committed observation; Hydrate replays it so
	// the observation log survives a restart along with the profiles.
	AuditTopic string
}

// StateCache keeps profiles and the observation log in memory. Transactions
// run one at a time and their writes become visible only on success.
type StateCache struct {
	brokers      string
	mu           sync.Mutex
	store        map[string]device.Profile
	observations map[string][]device.Observation
	reader       k.Reader
	auditReader  k.Reader
	// replayed guards against duplicate audit records during Hydrate.
	replayed map[uuid.UUID]struct{}
}

func New(cfg Config) *StateCache {
	cache := &StateCache{
		store:        make(map[string]device.Profile),
		observations: make(map[string][]device.Observation),
		replayed:     make(map[uuid.UUID]struct{}),
		brokers:      cfg.Brokers,
	}
	if cfg.Brokers != "" {
		cache.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       cfg.ConsumerTopic,
			StartOffset: kafka.FirstOffset,
			// No consumer group for one-time read
		})
		if cfg.AuditTopic != "" {
			cache.auditReader = kafka.NewReader(kafka.ReaderConfig{
				Brokers:     []string{cfg.Brokers},
				Topic:       cfg.AuditTopic,
				StartOffset: kafka.FirstOffset,
			})
		}
	}
	return cache
}

type tx struct {
	cache        *StateCache
	profiles     map[string]device.Profile
	observations []device.Observation
}

func (t *tx) AppendObservation(_ context.Context, obs device.Observation) error {
	t.observations = append(t.observations, obs)
	return nil
}

func (t *tx) LoadProfile(_ context.Context, address string) (device.Profile, bool, error) {
	if p, ok := t.profiles[address]; ok {
		return p, true, nil
	}
	p, ok := t.cache.store[address]
	return p, ok, nil
}

func (t *tx) UpsertProfile(_ context.Context, profile device.Profile) error {
	t.profiles[profile.Address] = profile
	return nil
}

func (c *StateCache) InTx(ctx context.Context, fn func(tx registry.Tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &tx{cache: c, profiles: make(map[string]device.Profile)}
	if err := fn(t); err != nil {
		return err
	}
	for _, obs := range t.observations {
		c.observations[obs.Address] = append(c.observations[obs.Address], obs)
	}
	for address, p := range t.profiles {
		c.store[address] = p
	}
	return nil
}

func (c *StateCache) Profile(_ context.Context, address string) (device.Profile, error) {
	const fn = "Cache:Profile"
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.store[address]
	if !ok {
		return device.Profile{}, fmt.Errorf("%s:%w", fn, device.ErrNotFound)
	}
	return p, nil
}

func (c *StateCache) Profiles(_ context.Context) ([]device.Profile, error) {
	c.mu.Lock()
	profiles := make([]device.Profile, 0, len(c.store))
	for _, p := range c.store {
		profiles = append(profiles, p)
	}
	c.mu.Unlock()

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].LastSeenAt.Equal(profiles[j].LastSeenAt) {
			return profiles[i].Address < profiles[j].Address
		}
		return profiles[i].LastSeenAt.After(profiles[j].LastSeenAt)
	})
	return profiles, nil
}

// Observations returns up to limit observations for address, newest first.
func (c *StateCache) Observations(_ context.Context, address string, limit int) ([]device.Observation, error) {
	c.mu.Lock()
	log := c.observations[address]
	out := make([]device.Observation, len(log))
	copy(out, log)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *StateCache) Dump() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for address, profile := range c.store {
		slog.Info("Cache Dump", "address", address, "profile", profile)
	}
}

func (c *StateCache) waitForBroker(ctx context.Context, maxWait time.Duration, interval time.Duration) error {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		dialCtx, cancel := context.WithTimeout(ctx, interval)
		conn, err := kafka.DialContext(dialCtx, "tcp", c.brokers)
		cancel()
		if err == nil {
			conn.Close()
			slog.InfoContext(ctx, "Broker is ready", "broker", c.brokers)
			return nil
		}
		slog.InfoContext(ctx, "Broker not ready", "broker", c.brokers, "error", err)
		time.Sleep(interval)
	}
	return fmt.Errorf("broker not reachable after %s", maxWait)
}

// Hydrate replays the compacted profile changelog and then the observation
// audit log into the store. Blocking operation; a no-op when no broker is
// configured.
func (c *StateCache) Hydrate(ctx context.Context) {
	if c.reader == nil {
		return
	}
	defer c.reader.Close()
	if c.auditReader != nil {
		defer c.auditReader.Close()
	}

	slog.InfoContext(ctx, "Pinging broker to ensure connectivity...")
	if err := c.waitForBroker(ctx, time.Second*30, time.Second*5); err != nil {
		slog.ErrorContext(ctx, "Broker failed to respond", "error", err)
		return
	}

	slog.InfoContext(ctx, "Starting cache hydration...")
	if !c.replay(ctx, "profiles", c.ReadMessage) {
		return
	}
	if c.auditReader != nil {
		if !c.replay(ctx, "observations", c.ReadObservation) {
			return
		}
	}
	c.Reconcile(ctx)
}

// replay drives read until the topic is drained. It reports false when
// hydration was cut short.
func (c *StateCache) replay(ctx context.Context, name string, read func(context.Context) (bool, error)) bool {
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Cache hydrate stopped...", "topic", name)
			return false
		default:
			done, err := read(ctx)
			if errors.Is(err, ErrParseMessage) {
				slog.ErrorContext(ctx, "Skipping changelog record", "topic", name, "error", err)
				continue
			}
			if err != nil {
				slog.ErrorContext(ctx, "Cache hydration aborted", "topic", name, "error", err)
				return false
			}
			if done {
				return true
			}
		}
	}
}

func (c *StateCache) fetch(ctx context.Context, reader k.Reader) (kafka.Message, bool, error) {
	readMessageTimeoutCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	m, err := reader.ReadMessage(readMessageTimeoutCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.InfoContext(ctx, "Cache hydration complete - Deadline exceeded")
			return kafka.Message{}, true, nil
		}
		return kafka.Message{}, false, fmt.Errorf("%w:%w", ErrReadMessage, err)
	}
	return m, false, nil
}

func drained(ctx context.Context, reader k.Reader) bool {
	if reader.Lag() == 0 {
		slog.InfoContext(ctx, "Cache hydration complete - Lag is zero")
		return true
	}
	return false
}

// ReadMessage applies one changelog record. done is true once the topic
// has been consumed to its end.
func (c *StateCache) ReadMessage(ctx context.Context) (bool, error) {
	const fn = "Cache:ReadMessage"
	m, done, err := c.fetch(ctx, c.reader)
	if err != nil {
		return false, fmt.Errorf("%s:%w", fn, err)
	}
	if done {
		return true, nil
	}

	var record k.StructuredConnectRecord
	if err := json.Unmarshal(m.Value, &record); err != nil {
		return false, fmt.Errorf("%s:%w:%w", fn, ErrParseMessage, err)
	}

	profile := record.Profile()
	c.mu.Lock()
	if current, ok := c.store[profile.Address]; !ok || profile.ObservationCount >= current.ObservationCount {
		c.store[profile.Address] = profile
	}
	c.mu.Unlock()

	return drained(ctx, c.reader), nil
}

// ReadObservation appends one audit record to the observation log,
// ignoring records already replayed.
func (c *StateCache) ReadObservation(ctx context.Context) (bool, error) {
	const fn = "Cache:ReadObservation"
	m, done, err := c.fetch(ctx, c.auditReader)
	if err != nil {
		return false, fmt.Errorf("%s:%w", fn, err)
	}
	if done {
		return true, nil
	}

	var record k.ObservationRecord
	if err := json.Unmarshal(m.Value, &record); err != nil {
		return false, fmt.Errorf("%s:%w:%w", fn, ErrParseMessage, err)
	}
	obs, err := record.Observation()
	if err != nil {
		return false, fmt.Errorf("%s:%w:%w", fn, ErrParseMessage, err)
	}

	c.mu.Lock()
	if _, seen := c.replayed[obs.ID]; !seen {
		c.replayed[obs.ID] = struct{}{}
		c.observations[obs.Address] = append(c.observations[obs.Address], obs)
	}
	c.mu.Unlock()

	return drained(ctx, c.auditReader), nil
}

// Reconcile compares every hydrated profile with its replayed observation
// log and returns the addresses that disagree. A mismatch means an audit
// record was lost; it is logged and the profile is left as published.
func (c *StateCache) Reconcile(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var mismatched []string
	for address, profile := range c.store {
		if logged := int64(len(c.observations[address])); logged != profile.ObservationCount {
			slog.WarnContext(ctx, "Observation log does not match profile",
				"address", address,
				"total_detections", profile.ObservationCount,
				"observations", logged,
			)
			mismatched = append(mismatched, address)
		}
	}
	sort.Strings(mismatched)
	return mismatched
}
