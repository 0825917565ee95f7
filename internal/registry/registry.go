package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ble-visibility-map/internal/device"
)

const DefaultObservationLimit = 100

// Changelog receives every committed profile and observation. It is
// optional.
type Changelog interface {
	Publish(ctx context.Context, profile device.Profile) error
	Record(ctx context.Context, obs device.Observation) error
}

type Config struct {
	Store     Store
	Changelog Changelog
}

type Registry struct {
	store     Store
	changelog Changelog
}

func New(cfg Config) *Registry {
	return &Registry{store: cfg.Store, changelog: cfg.Changelog}
}

func (r *Registry) Store() Store {
	return r.store
}

// Published forwards a committed profile to the changelog. Failures are
// logged only: the profile is already durable in the store.
func (r *Registry) Published(ctx context.Context, profile device.Profile) {
	if r.changelog == nil {
		return
	}
	if err := r.changelog.Publish(ctx, profile); err != nil {
		slog.ErrorContext(ctx, "Error publishing profile", "error", err, "address", profile.Address)
	}
}

// Recorded forwards a committed observation to the audit side of the
// changelog. Like Published, failures are only logged.
func (r *Registry) Recorded(ctx context.Context, obs device.Observation) {
	if r.changelog == nil {
		return
	}
	if err := r.changelog.Record(ctx, obs); err != nil {
		slog.ErrorContext(ctx, "Error recording observation", "error", err, "address", obs.Address, "id", obs.ID)
	}
}

// ResolveAndUpdate creates or updates the profile for address inside tx.
// The classification is applied to new profiles and to profiles whose vendor
// is still unknown; once a vendor is resolved it is never reapplied.
func (r *Registry) ResolveAndUpdate(
	ctx context.Context,
	tx Tx,
	address string,
	class device.Classification,
	observedAt time.Time,
) (device.Profile, bool, error) {
	const fn = "Registry:ResolveAndUpdate"
	address = device.NormalizeAddress(address)

	profile, exists, err := tx.LoadProfile(ctx, address)
	if err != nil {
		return device.Profile{}, false, fmt.Errorf("%s:%w:%w", fn, device.ErrPersistence, err)
	}

	if !exists {
		profile = device.Profile{
			Address:          address,
			Vendor:           class.Vendor,
			DeviceType:       class.DeviceType,
			RiskScore:        class.RiskScore,
			FirstSeenAt:      observedAt,
			LastSeenAt:       observedAt,
			ObservationCount: 1,
		}
	} else {
		if observedAt.After(profile.LastSeenAt) {
			profile.LastSeenAt = observedAt
		}
		profile.ObservationCount++
		if !profile.Classified() {
			profile.Vendor = class.Vendor
			profile.DeviceType = class.DeviceType
			profile.RiskScore = class.RiskScore
		}
	}

	if err := tx.UpsertProfile(ctx, profile); err != nil {
		return device.Profile{}, false, fmt.Errorf("%s:%w:%w", fn, device.ErrPersistence, err)
	}
	return profile, !exists, nil
}

// SetTag labels a known device. Unknown addresses fail with
// device.ErrNotFound and nothing is written.
func (r *Registry) SetTag(ctx context.Context, address, displayName string, notifyOnSight bool) (device.Profile, error) {
	const fn = "Registry:SetTag"
	address = device.NormalizeAddress(address)

	var profile device.Profile
	err := r.store.InTx(ctx, func(tx Tx) error {
		existing, exists, err := tx.LoadProfile(ctx, address)
		if err != nil {
			return fmt.Errorf("%w:%w", device.ErrPersistence, err)
		}
		if !exists {
			return device.ErrNotFound
		}
		existing.DisplayName = displayName
		existing.IsTagged = displayName != ""
		existing.NotifyOnSight = notifyOnSight
		if err := tx.UpsertProfile(ctx, existing); err != nil {
			return fmt.Errorf("%w:%w", device.ErrPersistence, err)
		}
		profile = existing
		return nil
	})
	if err != nil {
		return device.Profile{}, fmt.Errorf("%s:%w", fn, err)
	}

	r.Published(ctx, profile)
	slog.InfoContext(ctx, "Device tag updated",
		"address", profile.Address,
		"display_name", profile.DisplayName,
		"notify_on_sight", profile.NotifyOnSight,
	)
	return profile, nil
}

func (r *Registry) Get(ctx context.Context, address string) (device.Profile, error) {
	return r.store.Profile(ctx, device.NormalizeAddress(address))
}

func (r *Registry) List(ctx context.Context) ([]device.Profile, error) {
	return r.store.Profiles(ctx)
}

func (r *Registry) Observations(ctx context.Context, address string, limit int) ([]device.Observation, error) {
	if limit <= 0 {
		limit = DefaultObservationLimit
	}
	return r.store.Observations(ctx, device.NormalizeAddress(address), limit)
}
