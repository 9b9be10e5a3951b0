package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/core/storage"
	"github.com/devstats-lab/devstats/internal/metrics"
	"github.com/google/uuid"
)

// Outcome is what happened to one submission.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeDenied   Outcome = "denied"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeFailed   Outcome = "failed"
)

// Recorder appends accepted submissions to the event store and folds them
// into device state.
type Recorder struct {
	events       storage.EventStore
	devices      storage.DeviceStore
	denylist     *Denylist
	maxClockSkew time.Duration
	nowFn        func() time.Time
	newID        func() string
}

// RecorderOptions configures NewRecorder.
type RecorderOptions struct {
	Denylist *Denylist

	// MaxClockSkew bounds how far in the future a submitted_at may be.
	// Later timestamps are clamped to the ingestion time.
	MaxClockSkew time.Duration
}

func NewRecorder(events storage.EventStore, devices storage.DeviceStore, opts RecorderOptions) *Recorder {
	if events == nil {
		panic("ingestion: event store must not be nil")
	}
	if devices == nil {
		panic("ingestion: device store must not be nil")
	}
	return &Recorder{
		events:       events,
		devices:      devices,
		denylist:     opts.Denylist,
		maxClockSkew: opts.MaxClockSkew,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
		newID: uuid.NewString,
	}
}

// Record validates sub and, unless it is denylisted, writes the event and
// conditionally upserts the device's state. Denylisted submissions return
// OutcomeDenied with a nil error and touch no storage.
//
// A *v1.ValidationError is returned for malformed submissions.
func (r *Recorder) Record(ctx context.Context, sub *v1.Submission) (Outcome, error) {
	now := r.nowFn()

	evt, err := sub.ToEvent(now)
	if err != nil {
		metrics.RecordIngest(string(OutcomeInvalid))
		return OutcomeInvalid, err
	}

	if evt.SubmittedAt.After(now.Add(r.maxClockSkew)) {
		slog.Debug("[Ingestion] Clamped future submitted_at",
			"device_id", evt.DeviceID,
			"submitted_at", evt.SubmittedAt,
			"now", now)
		evt.SubmittedAt = now
	}

	if attr, denied := r.denylist.Denied(evt); denied {
		slog.Debug("[Ingestion] Dropped denylisted submission",
			"device_id", evt.DeviceID,
			"matched", attr,
			"model", evt.Model,
			"os_version", evt.OSVersion)
		metrics.RecordIngest(string(OutcomeDenied))
		return OutcomeDenied, nil
	}

	evt.ID = r.newID()
	if err := r.events.SaveEvent(ctx, evt); err != nil {
		metrics.RecordIngest(string(OutcomeFailed))
		return OutcomeFailed, fmt.Errorf("save event %s: %w", evt.ID, err)
	}

	state := v1.StateFromEvent(evt)
	applied, err := r.devices.UpsertIfNewer(ctx, &state)
	if err != nil {
		// The event is already stored; rebuild-state can reconcile it.
		metrics.RecordIngest(string(OutcomeFailed))
		return OutcomeFailed, fmt.Errorf("upsert device state %s: %w", evt.DeviceID, err)
	}
	metrics.RecordDeviceStateWrite(applied)
	metrics.RecordIngest(string(OutcomeAccepted))

	slog.Debug("[Ingestion] Recorded event",
		"event_id", evt.ID,
		"device_id", evt.DeviceID,
		"state_applied", applied)
	return OutcomeAccepted, nil
}

// IsValidationError reports whether err came from submission validation.
func IsValidationError(err error) (*v1.ValidationError, bool) {
	var ve *v1.ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
