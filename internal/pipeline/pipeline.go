package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ble-visibility-map/internal/device"
	"ble-visibility-map/internal/fingerprint"
	"ble-visibility-map/internal/notifier"
	"ble-visibility-map/internal/registry"
)

type classifier interface {
	Classify(obs device.Observation) device.Classification
}

type dispatcher interface {
	Dispatch(alert notifier.Alert) bool
}

type Config struct {
	Registry   *registry.Registry
	Classifier classifier
	Dispatcher dispatcher
	// Now stamps observations that arrive without a timestamp.
	Now func() time.Time
}

// Result is the outcome of one ingestion.
type Result struct {
	Profile device.Profile
	IsNew   bool
	Alerted bool
}

type Pipeline struct {
	registry   *registry.Registry
	classifier classifier
	trigger    notifier.Trigger
	dispatcher dispatcher
	locks      *keyLock
	now        func() time.Time
}

func New(cfg Config) *Pipeline {
	p := &Pipeline{
		registry:   cfg.Registry,
		classifier: cfg.Classifier,
		dispatcher: cfg.Dispatcher,
		locks:      newKeyLock(),
		now:        cfg.Now,
	}
	if p.classifier == nil {
		p.classifier = fingerprint.New(fingerprint.Config{})
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Ingest records one scan and updates the profile of the scanned device.
// The audit entry and the profile update commit together; ingestions of the
// same address are serialized.
func (p *Pipeline) Ingest(ctx context.Context, scan device.ScanInput) (Result, error) {
	const fn = "Pipeline:Ingest"
	if err := scan.Validate(); err != nil {
		return Result{}, fmt.Errorf("%s:%w", fn, err)
	}
	obs := scan.Observation(p.now())

	unlock := p.locks.Lock(obs.Address)
	res, err := p.commit(ctx, obs)
	if err == nil {
		// published under the lock so changelog order follows commit order
		p.registry.Recorded(ctx, obs)
		p.registry.Published(ctx, res.Profile)
	}
	unlock()
	if err != nil {
		if errors.Is(err, device.ErrPersistence) {
			return Result{}, fmt.Errorf("%s:%w", fn, err)
		}
		return Result{}, fmt.Errorf("%s:%w:%w", fn, device.ErrPersistence, err)
	}

	if res.IsNew {
		slog.InfoContext(ctx, "New device discovered",
			"address", res.Profile.Address,
			"vendor", res.Profile.Vendor,
			"device_type", res.Profile.DeviceType,
			"risk", res.Profile.RiskScore,
			"gateway_id", obs.GatewayID,
		)
	}

	if alert, fire := p.trigger.Evaluate(res.Profile, obs.SignalStrength); fire && p.dispatcher != nil {
		res.Alerted = p.dispatcher.Dispatch(alert)
	}
	return res, nil
}

func (p *Pipeline) commit(ctx context.Context, obs device.Observation) (Result, error) {
	var res Result
	err := p.registry.Store().InTx(ctx, func(tx registry.Tx) error {
		if err := tx.AppendObservation(ctx, obs); err != nil {
			return err
		}
		class := p.classifier.Classify(obs)
		profile, isNew, err := p.registry.ResolveAndUpdate(ctx, tx, obs.Address, class, obs.Timestamp)
		if err != nil {
			return err
		}
		res.Profile, res.IsNew = profile, isNew
		return nil
	})
	return res, err
}
