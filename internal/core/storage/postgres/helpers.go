package postgres

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
)

// maxStreamTime stands in for an open upper bound on event ranges.
var maxStreamTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEventRow scans a database row into an Event struct.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanEventRow(row scanner) (*v1.Event, error) {
	var evt v1.Event
	err := row.Scan(
		&evt.ID,
		&evt.DeviceID,
		&evt.Model,
		&evt.OSVersion,
		&evt.Country,
		&evt.Carrier,
		&evt.CarrierID,
		&evt.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event row: %w", err)
	}
	evt.SubmittedAt = evt.SubmittedAt.UTC()
	return &evt, nil
}

func scanStateRow(row scanner) (v1.DeviceState, error) {
	var st v1.DeviceState
	err := row.Scan(
		&st.DeviceID,
		&st.Model,
		&st.OSVersion,
		&st.Version,
		&st.Country,
		&st.Carrier,
		&st.CarrierID,
		&st.LastSeen,
	)
	if err != nil {
		return v1.DeviceState{}, fmt.Errorf("failed to scan device state row: %w", err)
	}
	st.LastSeen = st.LastSeen.UTC()
	return st, nil
}

// stateArgs returns the positional arguments matching stateWhere.
func stateArgs(since time.Time, filter *v1.Filter) []interface{} {
	if filter == nil {
		return []interface{}{since}
	}
	return []interface{}{since, filter.Value}
}

// withQueryTimeout bounds a read at the persistence boundary. A zero
// timeout leaves ctx untouched.
func withQueryTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
