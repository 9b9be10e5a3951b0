package postgres

import (
	"fmt"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
)

// SQL for the events and device_states tables.

const (
	// querySaveEvent appends one event. Event IDs are generated server side,
	// so a conflict only happens on a replayed insert and is ignored.
	querySaveEvent = `
		INSERT INTO events (
			id, device_id, model, os_version,
			country, carrier, carrier_id, submitted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	// queryStreamEvents reads a half-open submitted_at range in replay order.
	queryStreamEvents = `
		SELECT
			id, device_id, model, os_version,
			country, carrier, carrier_id, submitted_at
		FROM events
		WHERE submitted_at >= $1
		  AND submitted_at < $2
		ORDER BY submitted_at ASC, ingest_seq ASC
	`

	queryDeleteEventsBefore = `DELETE FROM events WHERE submitted_at < $1`

	// queryUpsertDeviceState writes the row only when the incoming last_seen
	// is strictly newer. No row is returned (sql.ErrNoRows) when the stored
	// row wins, which makes the compare and the write one statement.
	queryUpsertDeviceState = `
		INSERT INTO device_states (
			device_id, model, os_version, version,
			country, carrier, carrier_id, last_seen
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (device_id) DO UPDATE SET
			model      = EXCLUDED.model,
			os_version = EXCLUDED.os_version,
			version    = EXCLUDED.version,
			country    = EXCLUDED.country,
			carrier    = EXCLUDED.carrier,
			carrier_id = EXCLUDED.carrier_id,
			last_seen  = EXCLUDED.last_seen
		WHERE device_states.last_seen < EXCLUDED.last_seen
		RETURNING device_id
	`

	queryDeleteStatesBefore = `DELETE FROM device_states WHERE last_seen < $1`

	selectStateColumns = `
		SELECT
			device_id, model, os_version, version,
			country, carrier, carrier_id, last_seen
		FROM device_states`
)

// stateWhere builds the WHERE clause shared by all device_states reads.
// The filter column comes from the Dimension enum, never from user input.
func stateWhere(filter *v1.Filter) string {
	if filter == nil {
		return " WHERE last_seen >= $1"
	}
	return fmt.Sprintf(" WHERE last_seen >= $1 AND %s = $2", filter.Field.Column())
}

func buildScanStatesQuery(filter *v1.Filter) string {
	return selectStateColumns + stateWhere(filter)
}

func buildCountStatesQuery(filter *v1.Filter) string {
	return "SELECT COUNT(*) FROM device_states" + stateWhere(filter)
}

// buildGroupCountQuery returns the group-by-count for dim, ordered by count
// descending then value ascending. Values compare byte-wise under the "C"
// collation so ties order the same as the in-memory backends.
func buildGroupCountQuery(dim v1.Dimension, filter *v1.Filter) string {
	col := dim.Column()
	return fmt.Sprintf(
		`SELECT %s, COUNT(*) AS total FROM device_states%s GROUP BY %s ORDER BY total DESC, %s COLLATE "C" ASC`,
		col, stateWhere(filter), col, col,
	)
}
