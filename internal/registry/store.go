package registry

import (
	"context"

	"ble-visibility-map/internal/device"
)

// Store is the persistence collaborator of the registry. InTx must commit
// everything done through the Tx or nothing at all.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Profile(ctx context.Context, address string) (device.Profile, error)
	Profiles(ctx context.Context) ([]device.Profile, error)
	Observations(ctx context.Context, address string, limit int) ([]device.Observation, error)
}

type Tx interface {
	AppendObservation(ctx context.Context, obs device.Observation) error
	// LoadProfile locks the profile row until the transaction ends.
	LoadProfile(ctx context.Context, address string) (device.Profile, bool, error)
	UpsertProfile(ctx context.Context, profile device.Profile) error
}
