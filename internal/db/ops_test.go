package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"ble-visibility-map/internal/device"
	"ble-visibility-map/internal/registry"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var DBPool *DB

// Setup the testcontainer DB before running any ops tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		panic(err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	DBPool, err = Init(ctx, Config{
		ConnString:     connStr,
		MigrationsPath: "./migrations",
	})
	if err != nil {
		panic(err)
	}

	m.Run()

	DBPool.Close()
	pgContainer.Terminate(ctx)
}

func Test_InTx(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	obs := device.Observation{
		ID:                uuid.New(),
		Address:           "D4:A6:51:00:00:01",
		SignalStrength:    -60,
		GatewayID:         "gw-1",
		AdvertisementData: `{"service_uuids": []}`,
		Timestamp:         now,
	}
	profile := device.Profile{
		Address:          obs.Address,
		Vendor:           "Apple",
		DeviceType:       "Apple iDevice/Tracker",
		RiskScore:        0.4,
		FirstSeenAt:      now,
		LastSeenAt:       now,
		ObservationCount: 1,
	}

	err := DBPool.InTx(ctx, func(tx registry.Tx) error {
		_, exists, err := tx.LoadProfile(ctx, obs.Address)
		require.NoError(t, err)
		assert.False(t, exists)
		if err := tx.AppendObservation(ctx, obs); err != nil {
			return err
		}
		return tx.UpsertProfile(ctx, profile)
	})
	require.NoError(t, err)

	got, err := DBPool.Profile(ctx, obs.Address)
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	log, err := DBPool.Observations(ctx, obs.Address, 10)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, obs, log[0])

	// update in place
	profile.ObservationCount = 2
	profile.DisplayName = "Keys"
	profile.IsTagged = true
	err = DBPool.InTx(ctx, func(tx registry.Tx) error {
		current, exists, err := tx.LoadProfile(ctx, obs.Address)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, int64(1), current.ObservationCount)
		return tx.UpsertProfile(ctx, profile)
	})
	require.NoError(t, err)
	got, err = DBPool.Profile(ctx, obs.Address)
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func Test_InTx_Rollback(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	address := "AA:BB:CC:00:00:02"
	failure := errors.New("classification exploded")

	err := DBPool.InTx(ctx, func(tx registry.Tx) error {
		err := tx.AppendObservation(ctx, device.Observation{ID: uuid.New(), Address: address, SignalStrength: -70, GatewayID: "gw", Timestamp: now})
		require.NoError(t, err)
		err = tx.UpsertProfile(ctx, device.Profile{Address: address, Vendor: device.UnknownVendor, DeviceType: device.Uncategorized, FirstSeenAt: now, LastSeenAt: now, ObservationCount: 1})
		require.NoError(t, err)
		return failure
	})
	assert.ErrorIs(t, err, failure)

	_, err = DBPool.Profile(ctx, address)
	assert.ErrorIs(t, err, device.ErrNotFound)
	log, err := DBPool.Observations(ctx, address, 10)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func Test_UpsertProfile_RejectsOutOfRangeRisk(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	err := DBPool.InTx(ctx, func(tx registry.Tx) error {
		return tx.UpsertProfile(ctx, device.Profile{Address: "AA:BB:CC:00:00:03", RiskScore: 1.5, FirstSeenAt: now, LastSeenAt: now})
	})
	assert.ErrorIs(t, err, device.ErrPersistence)
	assert.ErrorIs(t, err, ErrUpsertFailed)
}

func Test_Profiles(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	addresses := []string{"54:A6:B1:00:00:10", "54:A6:B1:00:00:11"}

	err := DBPool.InTx(ctx, func(tx registry.Tx) error {
		for i, address := range addresses {
			seen := base.Add(time.Duration(i) * time.Minute)
			err := tx.UpsertProfile(ctx, device.Profile{
				Address: address, Vendor: "Xiaomi", DeviceType: device.Uncategorized,
				FirstSeenAt: seen, LastSeenAt: seen, ObservationCount: 1,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	profiles, err := DBPool.Profiles(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(profiles), 2)
	assert.Equal(t, addresses[1], profiles[0].Address)
	assert.Equal(t, addresses[0], profiles[1].Address)
}

func Test_Ping(t *testing.T) {
	assert.NoError(t, DBPool.Ping(context.Background()))
}
