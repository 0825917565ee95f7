package db

import (
	"context"
	"errors"
	"fmt"

	"ble-visibility-map/internal/device"
	"ble-visibility-map/internal/registry"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
)

var (
	ErrInsertFailed           = errors.New("insert operation failed")
	ErrTransactionStartFailed = errors.New("transaction start failed")
	ErrCommitFailed           = errors.New("transaction commit failed")
	ErrSelectFailed           = errors.New("select operation failed")
	ErrUpsertFailed           = errors.New("upsert operation failed")
)

const deviceColumns = `
	mac_address,
	friendly_name,
	is_tagged,
	allow_notifications,
	vendor,
	device_type,
	threat_score,
	first_seen,
	last_seen,
	total_detections`

// InTx runs fn in a single transaction; the transaction commits only if fn
// returns nil.
func (db *DB) InTx(ctx context.Context, apply func(tx registry.Tx) error) (err error) {
	const fn = "DB:InTx"
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s:%w:%w:%w", fn, device.ErrPersistence, ErrTransactionStartFailed, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = apply(&Tx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s:%w:%w:%w", fn, device.ErrPersistence, ErrCommitFailed, err)
	}
	return nil
}

type Tx struct {
	tx pgx.Tx
}

func (t *Tx) AppendObservation(ctx context.Context, obs device.Observation) error {
	const fn = "DB:AppendObservation"
	_, err := t.tx.Exec(ctx, `
		INSERT INTO scan_events (
			id,
			device_mac,
			rssi,
			gateway_id,
			advertisement_data,
			timestamp
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, obs.ID.String(), obs.Address, obs.SignalStrength, obs.GatewayID, obs.AdvertisementData, obs.Timestamp)
	if err != nil {
		return fmt.Errorf("%s:%w:%w:%w", fn, device.ErrPersistence, ErrInsertFailed, err)
	}
	return nil
}

// LoadProfile takes a transaction scoped advisory lock on the address
// before reading, so writers serialize even when the row does not exist yet.
func (t *Tx) LoadProfile(ctx context.Context, address string) (device.Profile, bool, error) {
	const fn = "DB:LoadProfile"
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, address); err != nil {
		return device.Profile{}, false, fmt.Errorf("%s:%w:%w:%w", fn, device.ErrPersistence, ErrSelectFailed, err)
	}
	var row DeviceRow
	err := pgxscan.Get(ctx, t.tx, &row, `
		SELECT`+deviceColumns+`
		FROM ble_devices
		WHERE mac_address = $1
		FOR UPDATE
	`, address)
	if err != nil {
		if pgxscan.NotFound(err) {
			return device.Profile{}, false, nil
		}
		return device.Profile{}, false, fmt.Errorf("%s:%w:%w:%w", fn, device.ErrPersistence, ErrSelectFailed, err)
	}
	return row.Profile(), true, nil
}

func (t *Tx) UpsertProfile(ctx context.Context, p device.Profile) error {
	const fn = "DB:UpsertProfile"
	_, err := t.tx.Exec(ctx, `
		INSERT INTO ble_devices (`+deviceColumns+`
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (mac_address) DO UPDATE SET
			friendly_name = EXCLUDED.friendly_name,
			is_tagged = EXCLUDED.is_tagged,
			allow_notifications = EXCLUDED.allow_notifications,
			vendor = EXCLUDED.vendor,
			device_type = EXCLUDED.device_type,
			threat_score = EXCLUDED.threat_score,
			first_seen = EXCLUDED.first_seen,
			last_seen = EXCLUDED.last_seen,
			total_detections = EXCLUDED.total_detections
	`, p.Address, p.DisplayName, p.IsTagged, p.NotifyOnSight, p.Vendor, p.DeviceType,
		p.RiskScore, p.FirstSeenAt, p.LastSeenAt, p.ObservationCount)
	if err != nil {
		return fmt.Errorf("%s:%w:%w:%w", fn, device.ErrPersistence, ErrUpsertFailed, err)
	}
	return nil
}

func (db *DB) Profile(ctx context.Context, address string) (device.Profile, error) {
	const fn = "DB:Profile"
	var row DeviceRow
	err := pgxscan.Get(ctx, db.pool, &row, `
		SELECT`+deviceColumns+`
		FROM ble_devices
		WHERE mac_address = $1
	`, address)
	if err != nil {
		if pgxscan.NotFound(err) {
			return device.Profile{}, fmt.Errorf("%s:%w", fn, device.ErrNotFound)
		}
		return device.Profile{}, fmt.Errorf("%s:%w:%w:%w", fn, device.ErrPersistence, ErrSelectFailed, err)
	}
	return row.Profile(), nil
}

func (db *DB) Profiles(ctx context.Context) ([]device.Profile, error) {
	const fn = "DB:Profiles"
	var rows []DeviceRow
	err := pgxscan.Select(ctx, db.pool, &rows, `
		SELECT`+deviceColumns+`
		FROM ble_devices
		ORDER BY last_seen DESC, mac_address ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w:%w", fn, device.ErrPersistence, ErrSelectFailed, err)
	}
	profiles := make([]device.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.Profile())
	}
	return profiles, nil
}

func (db *DB) Observations(ctx context.Context, address string, limit int) ([]device.Observation, error) {
	const fn = "DB:Observations"
	var rows []ScanEventRow
	err := pgxscan.Select(ctx, db.pool, &rows, `
		SELECT
			id::text AS id,
			device_mac,
			rssi,
			gateway_id,
			advertisement_data,
			timestamp
		FROM scan_events
		WHERE device_mac = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, address, limit)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w:%w", fn, device.ErrPersistence, ErrSelectFailed, err)
	}
	observations := make([]device.Observation, 0, len(rows))
	for _, row := range rows {
		observations = append(observations, row.Observation())
	}
	return observations, nil
}
