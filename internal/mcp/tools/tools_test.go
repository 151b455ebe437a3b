package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/domain/pipeline"
	"github.com/honeycarbs/tenuretrack/internal/export"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, params pipeline.RunParams) (pipeline.RunResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(pipeline.RunResult), args.Error(1)
}

type fakeStore struct {
	sets    map[domain.ListingSetKind]domain.ListingSet
	records []domain.JobRecord
	err     error
}

func (s fakeStore) LoadListingSet(_ context.Context, kind domain.ListingSetKind) (domain.ListingSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	set, ok := s.sets[kind]
	if !ok {
		return nil, domain.ErrListingSetNotFound
	}
	return set, nil
}

func (s fakeStore) LoadRecords(context.Context) ([]domain.JobRecord, error) {
	return s.records, s.err
}

type fakeSheets struct {
	configured bool
	target     export.SheetTarget
	rows       int
}

func (f *fakeSheets) Configured() bool { return f.configured }

func (f *fakeSheets) ExportTo(_ context.Context, target export.SheetTarget, records []domain.JobRecord) (export.SheetsResult, error) {
	f.target = target
	f.rows = len(records)
	return export.SheetsResult{SpreadsheetID: "default", Tab: "Sheet1", WrittenRows: len(records), Message: "ok"}, nil
}

var defaults = pipeline.RunParams{
	Mode:     domain.RunModeFull,
	Keywords: "経済学",
	MaxPages: 10,
	MaxJobs:  domain.Unlimited,
	Scope:    domain.ScopeNew,
}

func TestRunPipelineResolvesParams(t *testing.T) {
	tests := []struct {
		name   string
		params RunPipelineParams
		want   pipeline.RunParams
	}{
		{name: "defaults", params: RunPipelineParams{}, want: defaults},
		{
			name:   "overrides",
			params: RunPipelineParams{Mode: "urls_only", Keywords: "財政学", MaxPages: 2, MaxJobs: "5", Scope: "all", Debug: true},
			want:   pipeline.RunParams{Mode: domain.RunModeURLs, Keywords: "財政学", MaxPages: 2, MaxJobs: 5, Scope: domain.ScopeAll, Debug: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r := &mockRunner{}
			r.On("Run", ctx, tt.want).Return(pipeline.RunResult{
				RunID:   "run-1",
				Mode:    tt.want.Mode,
				Records: []domain.JobRecord{domain.NewJobRecord("D1", "u")},
			}, nil).Once()

			tool := runPipelineTool{runner: r, defaults: defaults, logger: logging.NewNop()}
			res, out, err := tool.handle(ctx, nil, tt.params)
			require.NoError(t, err)
			require.NotNil(t, res)

			result := out.(pipeline.RunResult)
			assert.Equal(t, "run-1", result.RunID)
			assert.Nil(t, result.Records)
			r.AssertExpectations(t)
		})
	}
}

func TestRunPipelineRejectsBadInput(t *testing.T) {
	tool := runPipelineTool{runner: &mockRunner{}, defaults: defaults, logger: logging.NewNop()}

	for _, p := range []RunPipelineParams{
		{Mode: "everything"},
		{Scope: "old"},
		{MaxJobs: "0"},
		{MaxPages: -1},
	} {
		_, _, err := tool.handle(context.Background(), nil, p)
		assert.Error(t, err, "%+v", p)
	}
}

func TestRunPipelinePropagatesRunError(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, mock.Anything).Return(pipeline.RunResult{}, domain.ErrRunInProgress)

	tool := runPipelineTool{runner: r, defaults: defaults, logger: logging.NewNop()}
	_, _, err := tool.handle(context.Background(), nil, RunPipelineParams{})
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
}

func TestListingSetsReportsAbsentFiles(t *testing.T) {
	store := fakeStore{sets: map[domain.ListingSetKind]domain.ListingSet{
		domain.ListingSetAll: {{JobID: "D1", URL: "u1"}, {JobID: "D2", URL: "u2"}},
		domain.ListingSetNew: {{JobID: "D2", URL: "u2"}},
	}}
	tool := listingSetsTool{store: store, logger: logging.NewNop()}

	_, out, err := tool.handle(context.Background(), nil, ListingSetsParams{})
	require.NoError(t, err)

	result := out.(ListingSetsResult)
	require.Len(t, result.Sets, 3)
	assert.Equal(t, ListingSetView{Kind: domain.ListingSetAll, Present: true, Count: 2, Listings: store.sets[domain.ListingSetAll]}, result.Sets[0])
	assert.Equal(t, ListingSetView{Kind: domain.ListingSetPrevious}, result.Sets[1])
	assert.Equal(t, 1, result.Sets[2].Count)
}

func TestListingSetsSingleKind(t *testing.T) {
	tool := listingSetsTool{store: fakeStore{}, logger: logging.NewNop()}

	_, out, err := tool.handle(context.Background(), nil, ListingSetsParams{Kind: "previous"})
	require.NoError(t, err)
	assert.Len(t, out.(ListingSetsResult).Sets, 1)

	_, _, err = tool.handle(context.Background(), nil, ListingSetsParams{Kind: "old"})
	assert.Error(t, err)

	tool.store = fakeStore{err: errors.New("disk")}
	_, _, err = tool.handle(context.Background(), nil, ListingSetsParams{})
	assert.ErrorContains(t, err, "disk")
}

func TestJobRecordsActiveOnly(t *testing.T) {
	expired := domain.NewJobRecord("D2", "u2")
	expired.Status.IsActive = false
	store := fakeStore{records: []domain.JobRecord{domain.NewJobRecord("D1", "u1"), expired}}
	tool := jobRecordsTool{store: store, logger: logging.NewNop()}

	_, out, err := tool.handle(context.Background(), nil, JobRecordsParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.(JobRecordsResult).Count)

	_, out, err = tool.handle(context.Background(), nil, JobRecordsParams{ActiveOnly: true})
	require.NoError(t, err)
	result := out.(JobRecordsResult)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "D1", result.Records[0].Identity.JobID)
	assert.Len(t, store.records, 2)
}

func TestJobRecordsEmpty(t *testing.T) {
	tool := jobRecordsTool{store: fakeStore{}, logger: logging.NewNop()}

	_, out, err := tool.handle(context.Background(), nil, JobRecordsParams{})
	require.NoError(t, err)
	assert.NotNil(t, out.(JobRecordsResult).Records)
}

func TestSheetsExport(t *testing.T) {
	sheets := &fakeSheets{configured: true}
	store := fakeStore{records: []domain.JobRecord{domain.NewJobRecord("D1", "u1")}}
	tool := sheetsExportTool{exporter: sheets, records: store, logger: logging.NewNop()}

	_, out, err := tool.handle(context.Background(), nil, SheetsExportParams{Tab: "Jobs", ClearTab: true})
	require.NoError(t, err)

	assert.Equal(t, 1, out.(export.SheetsResult).WrittenRows)
	assert.Equal(t, export.SheetTarget{Tab: "Jobs", ClearTab: true}, sheets.target)
}

func TestSheetsExportNotConfigured(t *testing.T) {
	tool := sheetsExportTool{exporter: &fakeSheets{}, records: fakeStore{}, logger: logging.NewNop()}

	_, _, err := tool.handle(context.Background(), nil, SheetsExportParams{})
	assert.ErrorContains(t, err, "not configured")
}
