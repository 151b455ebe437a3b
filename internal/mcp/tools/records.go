package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// RecordReader loads the aggregated records of the last run
type RecordReader interface {
	LoadRecords(ctx context.Context) ([]domain.JobRecord, error)
}

// JobRecordsParams defines the arguments for the job_records tool
type JobRecordsParams struct {
	ActiveOnly bool `json:"active_only,omitempty" jsonschema:"Only return postings whose deadline has not passed"`
}

// JobRecordsResult is the structured response of job_records
type JobRecordsResult struct {
	Count   int                `json:"count"`
	Records []domain.JobRecord `json:"records"`
}

type jobRecordsTool struct {
	store  RecordReader
	logger *logging.Logger
}

// WithJobRecords registers the job_records tool
func WithJobRecords(store RecordReader) Option {
	return func(reg *registry) {
		handler := jobRecordsTool{store: store, logger: reg.logger}
		addTool(reg, &sdkmcp.Tool{
			Name:        "job_records",
			Description: "Return the job records extracted by the last run",
		}, handler.handle)
	}
}

func (t jobRecordsTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params JobRecordsParams) (*sdkmcp.CallToolResult, any, error) {
	if t.store == nil {
		return nil, nil, fmt.Errorf("record store not configured")
	}

	records, err := t.store.LoadRecords(ctx)
	if err != nil {
		t.logger.Error("job_records: load failed", "err", err)
		return nil, nil, fmt.Errorf("load records: %w", err)
	}

	if params.ActiveOnly {
		active := records[:0:0]
		for _, r := range records {
			if r.Status.IsActive {
				active = append(active, r)
			}
		}
		records = active
	}

	result := JobRecordsResult{Count: len(records), Records: records}
	if result.Records == nil {
		result.Records = []domain.JobRecord{}
	}
	return textResult(formatRecords(result)), result, nil
}

func formatRecords(result JobRecordsResult) string {
	if result.Count == 0 {
		return "[job_records] No records stored"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[job_records] %d record(s)", result.Count)
	for _, r := range result.Records {
		fmt.Fprintf(&b, "\n• %s %s (%s) deadline=%s", r.Identity.JobID, r.Identity.Title, r.Identity.Institution, r.Identity.ApplicationDeadline)
	}
	return b.String()
}
