package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/core/storage"
)

// DeviceStateAdapter implements storage.DeviceStore and storage.GroupCounter
// on the device_states table. It shares the events adapter's pool.
type DeviceStateAdapter struct {
	db           *sql.DB
	queryTimeout time.Duration
	stmtUpsert   *sql.Stmt
	stmtDelete   *sql.Stmt
}

var (
	_ storage.DeviceStore  = (*DeviceStateAdapter)(nil)
	_ storage.GroupCounter = (*DeviceStateAdapter)(nil)
)

// NewDeviceStateAdapter prepares the device state statements on db.
func NewDeviceStateAdapter(db *sql.DB, queryTimeout time.Duration) (*DeviceStateAdapter, error) {
	stmtUpsert, err := db.Prepare(queryUpsertDeviceState)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upsertDeviceState statement: %w", err)
	}

	stmtDelete, err := db.Prepare(queryDeleteStatesBefore)
	if err != nil {
		stmtUpsert.Close()
		return nil, fmt.Errorf("failed to prepare deleteStatesBefore statement: %w", err)
	}

	return &DeviceStateAdapter{
		db:           db,
		queryTimeout: queryTimeout,
		stmtUpsert:   stmtUpsert,
		stmtDelete:   stmtDelete,
	}, nil
}

// UpsertIfNewer writes state when no row exists or the stored row is older.
func (a *DeviceStateAdapter) UpsertIfNewer(ctx context.Context, state *v1.DeviceState) (bool, error) {
	var deviceID string
	err := a.stmtUpsert.QueryRowContext(ctx,
		state.DeviceID,
		state.Model,
		state.OSVersion,
		state.Version,
		state.Country,
		state.Carrier,
		state.CarrierID,
		state.LastSeen,
	).Scan(&deviceID)

	if errors.Is(err, sql.ErrNoRows) {
		// Stored row is as new or newer.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert device state: %w", err)
	}

	slog.Debug("[Postgres] Device state written",
		"device_id", deviceID,
		"last_seen", state.LastSeen)
	return true, nil
}

// ScanStates streams matching device rows into fn.
func (a *DeviceStateAdapter) ScanStates(ctx context.Context, since time.Time, filter *v1.Filter, fn func(v1.DeviceState) error) error {
	ctx, cancel := withQueryTimeout(ctx, a.queryTimeout)
	defer cancel()

	rows, err := a.db.QueryContext(ctx, buildScanStatesQuery(filter), stateArgs(since, filter)...)
	if err != nil {
		return fmt.Errorf("failed to query device states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		st, err := scanStateRow(rows)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating device states: %w", err)
	}
	return nil
}

// CountStates counts matching device rows.
func (a *DeviceStateAdapter) CountStates(ctx context.Context, since time.Time, filter *v1.Filter) (int64, error) {
	ctx, cancel := withQueryTimeout(ctx, a.queryTimeout)
	defer cancel()

	var total int64
	err := a.db.QueryRowContext(ctx, buildCountStatesQuery(filter), stateArgs(since, filter)...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count device states: %w", err)
	}
	return total, nil
}

// CountByDimension runs the group-by-count in the database.
func (a *DeviceStateAdapter) CountByDimension(ctx context.Context, dim v1.Dimension, since time.Time, filter *v1.Filter) ([]storage.GroupCount, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}
	if filter != nil && !filter.Field.Valid() {
		return nil, fmt.Errorf("unknown filter dimension %q", filter.Field)
	}

	ctx, cancel := withQueryTimeout(ctx, a.queryTimeout)
	defer cancel()

	rows, err := a.db.QueryContext(ctx, buildGroupCountQuery(dim, filter), stateArgs(since, filter)...)
	if err != nil {
		return nil, fmt.Errorf("failed to group device states by %s: %w", dim, err)
	}
	defer rows.Close()

	var groups []storage.GroupCount
	for rows.Next() {
		var g storage.GroupCount
		if err := rows.Scan(&g.Value, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return groups, nil
}

// DeleteStatesBefore prunes devices not seen since cutoff.
func (a *DeviceStateAdapter) DeleteStatesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := a.stmtDelete.ExecContext(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete device states: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted device state count: %w", err)
	}
	return n, nil
}

// Close releases the prepared statements. The shared pool is closed by Adapter.
func (a *DeviceStateAdapter) Close() error {
	var firstErr error
	if err := a.stmtUpsert.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close upsertDeviceState statement: %w", err)
	}
	if err := a.stmtDelete.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close deleteStatesBefore statement: %w", err)
	}
	return firstErr
}
