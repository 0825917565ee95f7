package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"ble-visibility-map/internal/device"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	profiles  map[string]device.Profile
	upsertErr error
	loadErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]device.Profile)}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	staged := &fakeTx{store: s, profiles: make(map[string]device.Profile)}
	if err := fn(staged); err != nil {
		return err
	}
	for address, p := range staged.profiles {
		s.profiles[address] = p
	}
	return nil
}

func (s *fakeStore) Profile(_ context.Context, address string) (device.Profile, error) {
	p, ok := s.profiles[address]
	if !ok {
		return device.Profile{}, device.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) Profiles(context.Context) ([]device.Profile, error) {
	out := make([]device.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeStore) Observations(context.Context, string, int) ([]device.Observation, error) {
	return nil, nil
}

type fakeTx struct {
	store    *fakeStore
	profiles map[string]device.Profile
}

func (t *fakeTx) AppendObservation(context.Context, device.Observation) error { return nil }

func (t *fakeTx) LoadProfile(_ context.Context, address string) (device.Profile, bool, error) {
	if t.store.loadErr != nil {
		return device.Profile{}, false, t.store.loadErr
	}
	p, ok := t.store.profiles[address]
	return p, ok, nil
}

func (t *fakeTx) UpsertProfile(_ context.Context, p device.Profile) error {
	if t.store.upsertErr != nil {
		return t.store.upsertErr
	}
	t.profiles[p.Address] = p
	return nil
}

type recordingChangelog struct {
	published []device.Profile
	recorded  []device.Observation
}

func (c *recordingChangelog) Record(_ context.Context, obs device.Observation) error {
	c.recorded = append(c.recorded, obs)
	return nil
}

func (c *recordingChangelog) Publish(_ context.Context, p device.Profile) error {
	c.published = append(c.published, p)
	return nil
}

var (
	apple   = device.Classification{Vendor: "Apple", DeviceType: "Apple iDevice/Tracker", RiskScore: 0.4}
	plain   = device.Classification{Vendor: "Apple", DeviceType: device.Uncategorized, RiskScore: 0.0}
	unknown = device.Classification{Vendor: device.UnknownVendor, DeviceType: device.Uncategorized, RiskScore: 0.6}
)

func resolve(t *testing.T, r *Registry, address string, class device.Classification, at time.Time) (device.Profile, bool) {
	t.Helper()
	var (
		profile device.Profile
		isNew   bool
	)
	err := r.Store().InTx(context.Background(), func(tx Tx) error {
		var err error
		profile, isNew, err = r.ResolveAndUpdate(context.Background(), tx, address, class, at)
		return err
	})
	require.NoError(t, err)
	return profile, isNew
}

func Test_ResolveAndUpdate(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		steps    []device.Classification
		times    []time.Time
		expected device.Profile
	}{
		{
			name:  "new device",
			steps: []device.Classification{apple},
			times: []time.Time{t0},
			expected: device.Profile{
				Address: "D4:A6:51:11:22:33", Vendor: "Apple", DeviceType: "Apple iDevice/Tracker", RiskScore: 0.4,
				FirstSeenAt: t0, LastSeenAt: t0, ObservationCount: 1,
			},
		},
		{
			name:  "classification is locked once vendor is known",
			steps: []device.Classification{apple, plain, unknown},
			times: []time.Time{t0, t0.Add(time.Minute), t0.Add(2 * time.Minute)},
			expected: device.Profile{
				Address: "D4:A6:51:11:22:33", Vendor: "Apple", DeviceType: "Apple iDevice/Tracker", RiskScore: 0.4,
				FirstSeenAt: t0, LastSeenAt: t0.Add(2 * time.Minute), ObservationCount: 3,
			},
		},
		{
			name:  "unknown vendor is reclassified",
			steps: []device.Classification{unknown, apple, plain},
			times: []time.Time{t0, t0.Add(time.Minute), t0.Add(2 * time.Minute)},
			expected: device.Profile{
				Address: "D4:A6:51:11:22:33", Vendor: "Apple", DeviceType: "Apple iDevice/Tracker", RiskScore: 0.4,
				FirstSeenAt: t0, LastSeenAt: t0.Add(2 * time.Minute), ObservationCount: 3,
			},
		},
		{
			name:  "out of order observation does not move last seen back",
			steps: []device.Classification{unknown, unknown},
			times: []time.Time{t0, t0.Add(-time.Hour)},
			expected: device.Profile{
				Address: "D4:A6:51:11:22:33", Vendor: device.UnknownVendor, DeviceType: device.Uncategorized, RiskScore: 0.6,
				FirstSeenAt: t0, LastSeenAt: t0, ObservationCount: 2,
			},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Config{Store: newFakeStore()})
			var got device.Profile
			for i, class := range tt.steps {
				var isNew bool
				got, isNew = resolve(t, r, "d4:a6:51:11:22:33", class, tt.times[i])
				assert.Equal(t, i == 0, isNew)
			}
			assert.Equal(t, tt.expected, got)

			stored, err := r.Get(context.Background(), "D4:A6:51:11:22:33")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stored)
		})
	}
}

func Test_ResolveAndUpdate_StoreFailure(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("load failed", func(t *testing.T) {
		store := newFakeStore()
		store.loadErr = errors.New("connection reset")
		r := New(Config{Store: store})
		err := store.InTx(context.Background(), func(tx Tx) error {
			_, _, err := r.ResolveAndUpdate(context.Background(), tx, "AA:BB:CC:DD:EE:FF", unknown, t0)
			return err
		})
		assert.ErrorIs(t, err, device.ErrPersistence)
	})

	t.Run("upsert failed", func(t *testing.T) {
		store := newFakeStore()
		store.upsertErr = errors.New("disk full")
		r := New(Config{Store: store})
		err := store.InTx(context.Background(), func(tx Tx) error {
			_, _, err := r.ResolveAndUpdate(context.Background(), tx, "AA:BB:CC:DD:EE:FF", unknown, t0)
			return err
		})
		assert.ErrorIs(t, err, device.ErrPersistence)
		assert.Empty(t, store.profiles)
	})
}

func Test_SetTag(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("unknown address", func(t *testing.T) {
		store := newFakeStore()
		changelog := &recordingChangelog{}
		r := New(Config{Store: store, Changelog: changelog})

		_, err := r.SetTag(ctx, "aa:bb:cc:dd:ee:ff", "Suspicious Tracker", true)
		assert.ErrorIs(t, err, device.ErrNotFound)
		assert.Empty(t, store.profiles)
		assert.Empty(t, changelog.published)
	})

	t.Run("tag and untag", func(t *testing.T) {
		changelog := &recordingChangelog{}
		r := New(Config{Store: newFakeStore(), Changelog: changelog})
		resolve(t, r, "AA:BB:CC:DD:EE:FF", unknown, t0)

		got, err := r.SetTag(ctx, "aa:bb:cc:dd:ee:ff", "Suspicious Tracker", true)
		require.NoError(t, err)
		assert.True(t, got.IsTagged)
		assert.True(t, got.NotifyOnSight)
		assert.Equal(t, "Suspicious Tracker", got.DisplayName)
		assert.Equal(t, int64(1), got.ObservationCount)

		got, err = r.SetTag(ctx, "AA:BB:CC:DD:EE:FF", "", true)
		require.NoError(t, err)
		assert.False(t, got.IsTagged)
		assert.True(t, got.NotifyOnSight)

		require.Len(t, changelog.published, 2)
		assert.Equal(t, got, changelog.published[1])
	})

	t.Run("store failure", func(t *testing.T) {
		store := newFakeStore()
		r := New(Config{Store: store})
		resolve(t, r, "AA:BB:CC:DD:EE:FF", unknown, t0)
		store.upsertErr = errors.New("read only")

		_, err := r.SetTag(ctx, "AA:BB:CC:DD:EE:FF", "Keys", false)
		assert.ErrorIs(t, err, device.ErrPersistence)
		stored, _ := r.Get(ctx, "AA:BB:CC:DD:EE:FF")
		assert.False(t, stored.IsTagged)
	})
}
