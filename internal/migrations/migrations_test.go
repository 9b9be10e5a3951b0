package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_PairedUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(MigrationFiles, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)
}

func TestInitialMigration_DeclaresDeviceStateKey(t *testing.T) {
	body, err := fs.ReadFile(MigrationFiles, "000001_create_events_and_device_states.up.sql")
	require.NoError(t, err)

	sql := string(body)
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS events")
	assert.Contains(t, sql, "device_id  TEXT        PRIMARY KEY")
	assert.Contains(t, sql, "idx_events_submitted_at")
}

func TestVersionMigration_IndexesEventsByDevice(t *testing.T) {
	up, err := fs.ReadFile(MigrationFiles, "000002_add_version_and_event_device_index.up.sql")
	require.NoError(t, err)
	down, err := fs.ReadFile(MigrationFiles, "000002_add_version_and_event_device_index.down.sql")
	require.NoError(t, err)

	assert.Contains(t, string(up), "CREATE INDEX IF NOT EXISTS idx_events_device_id ON events (device_id, submitted_at)")
	assert.Contains(t, string(up), "ADD COLUMN IF NOT EXISTS version")
	assert.Contains(t, string(up), "idx_device_states_version ON device_states (version, last_seen)")

	assert.Contains(t, string(down), "DROP INDEX IF EXISTS idx_events_device_id")
	assert.Contains(t, string(down), "DROP COLUMN IF EXISTS version")
}
