package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/storage/filestore"
)

// Exporter writes a batch of records to a tabular destination
type Exporter interface {
	Export(ctx context.Context, records []domain.JobRecord) error
}

var (
	_ Exporter = (*CSVExporter)(nil)
	_ Exporter = (*SheetsExporter)(nil)
)

// CSVExporter replaces one CSV file per export. The file starts with a UTF-8
// byte-order mark so spreadsheet tools detect the encoding of Japanese text.
type CSVExporter struct {
	path string
}

// NewCSVExporter targets path
func NewCSVExporter(path string) (*CSVExporter, error) {
	if path == "" {
		return nil, fmt.Errorf("export: csv path is required")
	}
	return &CSVExporter{path: path}, nil
}

// Path returns the destination file
func (e *CSVExporter) Path() string {
	return e.path
}

// Export writes the header and one row per record. An empty batch still
// produces a header-only file.
func (e *CSVExporter) Export(ctx context.Context, records []domain.JobRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("export: csv header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(Row(r)); err != nil {
			return fmt.Errorf("export: csv row %s: %w", r.Identity.JobID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export: csv flush: %w", err)
	}

	if err := filestore.WriteFileAtomic(e.path, buf.Bytes()); err != nil {
		return fmt.Errorf("export: write %s: %w", e.path, err)
	}
	return nil
}
