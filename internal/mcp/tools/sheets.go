package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/export"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// SheetsExporter writes records to a spreadsheet tab
type SheetsExporter interface {
	Configured() bool
	ExportTo(ctx context.Context, target export.SheetTarget, records []domain.JobRecord) (export.SheetsResult, error)
}

// SheetsExportParams defines the arguments for the sheets_export tool
type SheetsExportParams struct {
	SpreadsheetID string `json:"spreadsheet_id,omitempty" jsonschema:"Google Sheets document ID; defaults to SHEETS_SPREADSHEET_ID"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab name; defaults to SHEETS_TAB"`
	ClearTab      bool   `json:"clear_tab,omitempty" jsonschema:"If true, clears the tab and writes a header row before the records"`
}

type sheetsExportTool struct {
	exporter SheetsExporter
	records  RecordReader
	logger   *logging.Logger
}

// WithSheetsExport registers the sheets_export tool
func WithSheetsExport(exporter SheetsExporter, records RecordReader) Option {
	return func(reg *registry) {
		handler := sheetsExportTool{exporter: exporter, records: records, logger: reg.logger}
		addTool(reg, &sdkmcp.Tool{
			Name:        "sheets_export",
			Description: "Export the last run's job records to Google Sheets",
		}, handler.handle)
	}
}

func (t sheetsExportTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params SheetsExportParams) (*sdkmcp.CallToolResult, any, error) {
	if t.exporter == nil || !t.exporter.Configured() {
		return nil, nil, fmt.Errorf("Google Sheets client not configured (SHEETS_CREDENTIALS_PATH not set)")
	}
	if t.records == nil {
		return nil, nil, fmt.Errorf("record store not configured")
	}

	records, err := t.records.LoadRecords(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load records: %w", err)
	}

	target := export.SheetTarget{SpreadsheetID: params.SpreadsheetID, Tab: params.Tab, ClearTab: params.ClearTab}
	result, err := t.exporter.ExportTo(ctx, target, records)
	if err != nil {
		t.logger.Error("sheets_export failed", "spreadsheet_id", result.SpreadsheetID, "tab", result.Tab, "err", err)
		return nil, nil, err
	}

	t.logger.Info("sheets_export complete", "spreadsheet_id", result.SpreadsheetID, "tab", result.Tab, "rows", result.WrittenRows)
	msg := fmt.Sprintf("[sheets_export] %s: spreadsheet_id=%q tab=%q", result.Message, result.SpreadsheetID, result.Tab)
	return textResult(msg), result, nil
}
