package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devstats-lab/devstats/internal/core/storage"
	"github.com/devstats-lab/devstats/internal/metrics"
)

// Report is the outcome of one sweep.
type Report struct {
	EventsDeleted int64     `json:"events_deleted"`
	StatesDeleted int64     `json:"states_deleted"`
	EventCutoff   time.Time `json:"event_cutoff"`
	StateCutoff   time.Time `json:"state_cutoff"`
}

// Sweeper drops events older than the event horizon and device state rows
// older than the widest aggregation window. No query reads a state row
// past that window, so pruning it cannot change any result.
type Sweeper struct {
	events           storage.EventStore
	devices          storage.DeviceStore
	eventHorizonDays int
	stateWindowDays  int
	nowFn            func() time.Time
}

func NewSweeper(events storage.EventStore, devices storage.DeviceStore, eventHorizonDays, stateWindowDays int) *Sweeper {
	if eventHorizonDays <= 0 {
		panic("retention: event horizon must be positive")
	}
	if stateWindowDays <= 0 {
		panic("retention: state window must be positive")
	}
	return &Sweeper{
		events:           events,
		devices:          devices,
		eventHorizonDays: eventHorizonDays,
		stateWindowDays:  stateWindowDays,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Sweep runs one retention pass.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	now := s.nowFn()
	report := Report{
		EventCutoff: now.AddDate(0, 0, -s.eventHorizonDays),
		StateCutoff: now.AddDate(0, 0, -s.stateWindowDays),
	}

	n, err := s.events.DeleteEventsBefore(ctx, report.EventCutoff)
	if err != nil {
		return report, fmt.Errorf("delete events before %s: %w", report.EventCutoff.Format(time.RFC3339), err)
	}
	report.EventsDeleted = n
	metrics.RecordRetention("events", n)

	n, err = s.devices.DeleteStatesBefore(ctx, report.StateCutoff)
	if err != nil {
		return report, fmt.Errorf("delete device states before %s: %w", report.StateCutoff.Format(time.RFC3339), err)
	}
	report.StatesDeleted = n
	metrics.RecordRetention("device_states", n)

	slog.Info("[Retention] Sweep complete",
		"events_deleted", report.EventsDeleted,
		"states_deleted", report.StatesDeleted,
		"event_cutoff", report.EventCutoff,
		"state_cutoff", report.StateCutoff,
	)
	return report, nil
}
