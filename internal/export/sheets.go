package export

import (
	"context"
	"fmt"
	"time"

	"github.com/honeycarbs/tenuretrack/internal/domain"
)

const defaultTab = "Sheet1"

// ValuesWriter is the subset of the Sheets values API the exporter needs
type ValuesWriter interface {
	AppendValues(ctx context.Context, spreadsheetID, cellRange string, values [][]interface{}) error
	UpdateValues(ctx context.Context, spreadsheetID, cellRange string, values [][]interface{}) error
	ClearValues(ctx context.Context, spreadsheetID, cellRange string) error
}

// SheetTarget names the destination tab
type SheetTarget struct {
	SpreadsheetID string
	Tab           string
	// ClearTab empties the tab before writing; otherwise rows are appended
	ClearTab bool
}

// SheetsResult summarizes one Sheets export
type SheetsResult struct {
	SpreadsheetID string    `json:"spreadsheet_id"`
	Tab           string    `json:"tab"`
	WrittenRows   int       `json:"rows_written"`
	CompletedAt   time.Time `json:"completed_at"`
	Message       string    `json:"message"`
}

// SheetsExporter writes records to a Google Sheets tab
type SheetsExporter struct {
	client   ValuesWriter
	defaults SheetTarget
	clock    func() time.Time
}

// NewSheetsExporter builds an exporter with a default target. A nil client
// yields an exporter that reports itself unconfigured.
func NewSheetsExporter(client ValuesWriter, defaults SheetTarget) *SheetsExporter {
	return &SheetsExporter{client: client, defaults: defaults, clock: time.Now}
}

// Configured reports whether credentials were supplied
func (e *SheetsExporter) Configured() bool {
	return e != nil && e.client != nil
}

// Export writes to the default target, replacing its contents
func (e *SheetsExporter) Export(ctx context.Context, records []domain.JobRecord) error {
	target := e.defaults
	target.ClearTab = true
	_, err := e.ExportTo(ctx, target, records)
	return err
}

// ExportTo writes records to target. A cleared tab gets a header row first,
// even when records is empty.
func (e *SheetsExporter) ExportTo(ctx context.Context, target SheetTarget, records []domain.JobRecord) (SheetsResult, error) {
	target = e.resolve(target)
	result := SheetsResult{SpreadsheetID: target.SpreadsheetID, Tab: target.Tab}

	if !e.Configured() {
		result.Message = "Google Sheets client not configured (SHEETS_CREDENTIALS_PATH not set)"
		return result, fmt.Errorf("export: sheets client not configured")
	}
	if target.SpreadsheetID == "" {
		return result, fmt.Errorf("export: spreadsheet id is required")
	}

	if len(records) == 0 && !target.ClearTab {
		result.Message = "no rows to export"
		result.CompletedAt = e.clock().UTC()
		return result, nil
	}

	values := toValues(records)

	if target.ClearTab {
		if err := e.client.ClearValues(ctx, target.SpreadsheetID, fmt.Sprintf("%s!A:Z", target.Tab)); err != nil {
			return result, fmt.Errorf("export: clear sheet: %w", err)
		}
		withHeader := append([][]interface{}{toInterfaces(Columns)}, values...)
		if err := e.client.UpdateValues(ctx, target.SpreadsheetID, fmt.Sprintf("%s!A1", target.Tab), withHeader); err != nil {
			return result, fmt.Errorf("export: write rows: %w", err)
		}
	} else {
		if err := e.client.AppendValues(ctx, target.SpreadsheetID, fmt.Sprintf("%s!A1", target.Tab), values); err != nil {
			return result, fmt.Errorf("export: append rows: %w", err)
		}
	}

	result.WrittenRows = len(records)
	result.CompletedAt = e.clock().UTC()
	result.Message = fmt.Sprintf("successfully exported %d row(s)", result.WrittenRows)
	if len(records) == 0 {
		result.Message = "tab cleared, no rows to export"
	}
	return result, nil
}

func (e *SheetsExporter) resolve(t SheetTarget) SheetTarget {
	if t.SpreadsheetID == "" {
		t.SpreadsheetID = e.defaults.SpreadsheetID
	}
	if t.Tab == "" {
		t.Tab = e.defaults.Tab
	}
	if t.Tab == "" {
		t.Tab = defaultTab
	}
	return t
}

func toValues(records []domain.JobRecord) [][]interface{} {
	values := make([][]interface{}, len(records))
	for i, r := range records {
		values[i] = toInterfaces(Row(r))
	}
	return values
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
