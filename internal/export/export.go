// Package export streams events to a file with device identifiers replaced
// by per-run pseudonyms.
package export

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/core/storage"
	"github.com/google/uuid"
)

const (
	saltSize  = 32
	batchSize = 1024

	// DateLayout is the accepted format for export range bounds.
	DateLayout = "2006-01-02"
)

// Options describes one export run.
type Options struct {
	// Start is inclusive, End is exclusive.
	Start time.Time
	End   time.Time

	Format Format

	// Progress, when set, receives a line every EchoEvery rows.
	Progress  io.Writer
	EchoEvery int
}

// Report summarizes a finished export.
type Report struct {
	RunID    string        `json:"run_id"`
	Rows     int64         `json:"rows"`
	Duration time.Duration `json:"duration"`
}

// ParseDate parses a YYYY-MM-DD bound as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Exporter writes pseudonymized events from an EventStore.
type Exporter struct {
	events storage.EventStore
	salt   func() ([]byte, error)
}

func NewExporter(events storage.EventStore) *Exporter {
	if events == nil {
		panic("export: event store must not be nil")
	}
	return &Exporter{events: events, salt: newSalt}
}

// ExportFile creates path and runs Export into it. A failed run removes the
// partial file.
func (e *Exporter) ExportFile(ctx context.Context, path string, opts Options) (Report, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Report{}, fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return Report{}, fmt.Errorf("create file: %w", err)
	}

	report, err := e.Export(ctx, f, opts)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return report, err
	}
	return report, nil
}

// Export streams every event with Start <= submitted_at < End into w. Each
// run draws a fresh salt, so pseudonyms from different runs cannot be joined.
func (e *Exporter) Export(ctx context.Context, w io.Writer, opts Options) (Report, error) {
	if !opts.End.After(opts.Start) {
		return Report{}, fmt.Errorf("export range is empty: start %s is not before end %s",
			opts.Start.Format(DateLayout), opts.End.Format(DateLayout))
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}

	salt, err := e.salt()
	if err != nil {
		return Report{}, fmt.Errorf("generate salt: %w", err)
	}

	sink, err := NewSink(w, opts.Format)
	if err != nil {
		return Report{}, err
	}

	report := Report{RunID: uuid.NewString()}
	start := time.Now()
	slog.Info("[Export] Starting export",
		"run_id", report.RunID,
		"start", opts.Start,
		"end", opts.End,
		"format", opts.Format,
	)

	batch := make([]Row, 0, batchSize)
	flush := func() error {
		if err := sink.Write(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	err = e.events.StreamEvents(ctx, opts.Start, opts.End, func(evt *v1.Event) error {
		batch = append(batch, toRow(salt, evt))
		report.Rows++
		if opts.Progress != nil && opts.EchoEvery > 0 && report.Rows%int64(opts.EchoEvery) == 0 {
			fmt.Fprintln(opts.Progress, report.Rows)
		}
		if len(batch) == batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if closeErr := sink.Close(); err == nil {
		err = closeErr
	}
	report.Duration = time.Since(start)
	if err != nil {
		return report, fmt.Errorf("export %s: %w", report.RunID, err)
	}

	slog.Info("[Export] Export complete",
		"run_id", report.RunID,
		"rows", report.Rows,
		"duration", report.Duration,
	)
	return report, nil
}

func toRow(salt []byte, evt *v1.Event) Row {
	return Row{
		Device:        Pseudonym(salt, evt.DeviceID),
		SubmittedAtMs: evt.SubmittedAt.UnixMilli(),
		Model:         evt.Model,
		OSVersion:     evt.OSVersion,
		Country:       evt.Country,
		Carrier:       evt.Carrier,
		CarrierID:     evt.CarrierID,
	}
}

// Pseudonym is the upper-case hex SHA-256 of salt followed by deviceID.
func Pseudonym(salt []byte, deviceID string) string {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(deviceID))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}
