package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"
)

// Format selects the export file encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// ParseFormat accepts "json" or "parquet".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatParquet:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format %q (must be json or parquet)", s)
	}
}

// Row is one exported event. Device is the per-run pseudonym, never the
// submitted device hash.
type Row struct {
	Device        string `json:"device" parquet:"device,zstd"`
	SubmittedAtMs int64  `json:"submitted_at_ms" parquet:"submitted_at_ms"`
	Model         string `json:"model" parquet:"model,zstd"`
	OSVersion     string `json:"os_version" parquet:"os_version,zstd"`
	Country       string `json:"country" parquet:"country,zstd"`
	Carrier       string `json:"carrier" parquet:"carrier,zstd"`
	CarrierID     string `json:"carrier_id" parquet:"carrier_id,zstd"`
}

// Sink receives exported rows in order.
type Sink interface {
	Write(rows []Row) error
	Close() error
}

// NewSink wraps w in the encoder for format. Closing the sink flushes it but
// does not close w.
func NewSink(w io.Writer, format Format) (Sink, error) {
	switch format {
	case FormatJSON:
		return newJSONSink(w), nil
	case FormatParquet:
		return newParquetSink(w), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// jsonSink writes a single JSON array, one row per line.
type jsonSink struct {
	buf   *bufio.Writer
	count int64
}

func newJSONSink(w io.Writer) *jsonSink {
	return &jsonSink{buf: bufio.NewWriter(w)}
}

func (s *jsonSink) Write(rows []Row) error {
	for i := range rows {
		sep := ",\n"
		if s.count == 0 {
			sep = "[\n"
		}
		if _, err := s.buf.WriteString(sep); err != nil {
			return err
		}
		b, err := json.Marshal(&rows[i])
		if err != nil {
			return fmt.Errorf("marshal row: %w", err)
		}
		if _, err := s.buf.Write(b); err != nil {
			return err
		}
		s.count++
	}
	return nil
}

func (s *jsonSink) Close() error {
	tail := "\n]\n"
	if s.count == 0 {
		tail = "[]\n"
	}
	if _, err := s.buf.WriteString(tail); err != nil {
		return err
	}
	return s.buf.Flush()
}

type parquetSink struct {
	writer *parquet.GenericWriter[Row]
}

func newParquetSink(w io.Writer) *parquetSink {
	return &parquetSink{
		writer: parquet.NewGenericWriter[Row](w, parquet.Compression(&parquet.Zstd)),
	}
}

func (s *parquetSink) Write(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := s.writer.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func (s *parquetSink) Close() error {
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}
