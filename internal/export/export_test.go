package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/core/storage/memory"
	storagemocks "github.com/devstats-lab/devstats/internal/mocks/storage"
	"github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	events := []struct {
		id, device string
		at         time.Time
	}{
		{"e1", "dev-1", day("2024-02-29").Add(23 * time.Hour)},
		{"e2", "dev-1", day("2024-03-01")},
		{"e3", "dev-2", day("2024-03-01").Add(12 * time.Hour)},
		{"e4", "dev-1", day("2024-03-02").Add(-time.Millisecond)},
		{"e5", "dev-3", day("2024-03-02")},
	}
	for _, e := range events {
		require.NoError(t, store.SaveEvent(context.Background(), &v1.Event{
			ID:          e.id,
			DeviceID:    e.device,
			Model:       "bacon",
			OSVersion:   "14.1",
			Country:     "US",
			Carrier:     "T-Mobile",
			CarrierID:   "310260",
			SubmittedAt: e.at,
		}))
	}
	return store
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"2024-3-1", "03/01/2024", "", "2024-02-30"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("parquet")
	require.NoError(t, err)
	assert.Equal(t, FormatParquet, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestPseudonym(t *testing.T) {
	salt := []byte("salt")
	p := Pseudonym(salt, "dev-1")

	assert.Len(t, p, 64)
	assert.Equal(t, strings.ToUpper(p), p)
	assert.Equal(t, p, Pseudonym(salt, "dev-1"))
	assert.NotEqual(t, p, Pseudonym(salt, "dev-2"))
	assert.NotEqual(t, p, Pseudonym([]byte("other"), "dev-1"))
}

func TestExport_JSONHalfOpenRange(t *testing.T) {
	store := seedStore(t)
	var out, progress bytes.Buffer

	report, err := NewExporter(store).Export(context.Background(), &out, Options{
		Start:     day("2024-03-01"),
		End:       day("2024-03-02"),
		Format:    FormatJSON,
		Progress:  &progress,
		EchoEvery: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Rows)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "2\n", progress.String())

	var rows []Row
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, day("2024-03-01").UnixMilli(), rows[0].SubmittedAtMs)
	assert.Equal(t, rows[0].Device, rows[2].Device, "same device keeps one pseudonym within a run")
	assert.NotEqual(t, rows[0].Device, rows[1].Device)
	for _, r := range rows {
		assert.NotContains(t, r.Device, "dev-")
		assert.Equal(t, "bacon", r.Model)
	}
}

func TestExport_FreshSaltPerRun(t *testing.T) {
	store := seedStore(t)
	exporter := NewExporter(store)
	opts := Options{Start: day("2024-03-01"), End: day("2024-03-02")}

	var first, second bytes.Buffer
	_, err := exporter.Export(context.Background(), &first, opts)
	require.NoError(t, err)
	_, err = exporter.Export(context.Background(), &second, opts)
	require.NoError(t, err)

	var a, b []Row
	require.NoError(t, json.Unmarshal(first.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Bytes(), &b))
	require.Len(t, a, 3)
	require.Len(t, b, 3)
	assert.NotEqual(t, a[0].Device, b[0].Device)
}

func TestExport_EmptyRangeWritesEmptyArray(t *testing.T) {
	var out bytes.Buffer
	report, err := NewExporter(memory.NewStore()).Export(context.Background(), &out, Options{
		Start: day("2024-03-01"),
		End:   day("2024-03-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Rows)
	assert.JSONEq(t, "[]", out.String())
}

func TestExport_RejectsInvertedRange(t *testing.T) {
	var out bytes.Buffer
	_, err := NewExporter(memory.NewStore()).Export(context.Background(), &out, Options{
		Start: day("2024-03-02"),
		End:   day("2024-03-01"),
	})
	require.Error(t, err)
	assert.Zero(t, out.Len())
}

func TestExportFile_Parquet(t *testing.T) {
	store := seedStore(t)
	path := filepath.Join(t.TempDir(), "out", "march.parquet")

	report, err := NewExporter(store).ExportFile(context.Background(), path, Options{
		Start:  day("2024-02-01"),
		End:    day("2024-04-01"),
		Format: FormatParquet,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), report.Rows)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reader := parquet.NewGenericReader[Row](f)
	defer reader.Close()
	require.Equal(t, int64(5), reader.NumRows())

	rows := make([]Row, 5)
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	require.Equal(t, 5, n)
	assert.Equal(t, "310260", rows[4].CarrierID)
	assert.Len(t, rows[4].Device, 64)
}

func TestExportFile_RemovesPartialFileOnError(t *testing.T) {
	events := storagemocks.NewEventStore(t)
	events.EXPECT().
		StreamEvents(mock.Anything, day("2024-03-01"), day("2024-03-02"), mock.Anything).
		RunAndReturn(func(ctx context.Context, start, end time.Time, fn func(*v1.Event) error) error {
			if err := fn(&v1.Event{DeviceID: "dev-1", SubmittedAt: start}); err != nil {
				return err
			}
			return errors.New("connection reset")
		}).
		Once()

	path := filepath.Join(t.TempDir(), "broken.json")
	_, err := NewExporter(events).ExportFile(context.Background(), path, Options{
		Start: day("2024-03-01"),
		End:   day("2024-03-02"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
