package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/domain/pipeline"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// PipelineRunner executes one harvesting run
type PipelineRunner interface {
	Run(ctx context.Context, params pipeline.RunParams) (pipeline.RunResult, error)
}

// RunPipelineParams defines the arguments for the run_pipeline tool. Empty
// fields fall back to the server's configured defaults.
type RunPipelineParams struct {
	Mode     string `json:"mode,omitempty" jsonschema:"urls, details, full, or reextract"`
	Keywords string `json:"keywords,omitempty" jsonschema:"Space separated search keywords"`
	MaxPages int    `json:"max_pages,omitempty" jsonschema:"Number of result pages to walk"`
	MaxJobs  string `json:"max_jobs,omitempty" jsonschema:"Positive integer or unlimited"`
	Scope    string `json:"scope,omitempty" jsonschema:"Process new listings only (new) or every current listing (all)"`
	Debug    bool   `json:"debug,omitempty" jsonschema:"Also persist raw search page snapshots"`
}

type runPipelineTool struct {
	runner   PipelineRunner
	defaults pipeline.RunParams
	logger   *logging.Logger
}

// WithRunPipeline registers the run_pipeline tool
func WithRunPipeline(runner PipelineRunner, defaults pipeline.RunParams) Option {
	return func(reg *registry) {
		handler := runPipelineTool{runner: runner, defaults: defaults, logger: reg.logger}
		addTool(reg, &sdkmcp.Tool{
			Name:        "run_pipeline",
			Description: "Collect research job listings, diff against the previous run, and extract records for new postings",
		}, handler.handle)
	}
}

func (t runPipelineTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params RunPipelineParams) (*sdkmcp.CallToolResult, any, error) {
	if t.runner == nil {
		return nil, nil, fmt.Errorf("pipeline not configured")
	}

	runParams, err := t.resolve(params)
	if err != nil {
		return nil, nil, err
	}

	t.logger.Info("run_pipeline request",
		"mode", runParams.Mode,
		"keywords", runParams.Keywords,
		"max_pages", runParams.MaxPages,
		"max_jobs", runParams.MaxJobs,
		"scope", runParams.Scope,
	)

	result, err := t.runner.Run(ctx, runParams)
	if err != nil {
		t.logger.Error("run_pipeline failed", "run_id", result.RunID, "err", err)
		return nil, nil, fmt.Errorf("run failed: %w", err)
	}

	// records are served by job_records
	result.Records = nil

	msg := fmt.Sprintf("[run_pipeline] run %s (%s): collected=%d new=%d processed=%d failed=%d partial=%t",
		result.RunID, result.Mode, result.Collected, result.New, result.Processed, result.Failed, result.Partial)
	return textResult(msg), result, nil
}

func (t runPipelineTool) resolve(p RunPipelineParams) (pipeline.RunParams, error) {
	out := t.defaults

	if p.Mode != "" {
		mode, err := domain.ParseRunMode(p.Mode)
		if err != nil {
			return out, err
		}
		out.Mode = mode
	}
	if p.Scope != "" {
		scope, err := domain.ParseScope(p.Scope)
		if err != nil {
			return out, err
		}
		out.Scope = scope
	}
	if p.MaxJobs != "" {
		jobCap, err := domain.ParseJobCap(p.MaxJobs)
		if err != nil {
			return out, err
		}
		out.MaxJobs = jobCap
	}
	if p.Keywords != "" {
		out.Keywords = p.Keywords
	}
	if p.MaxPages < 0 {
		return out, fmt.Errorf("max_pages must be a positive integer, got %d", p.MaxPages)
	}
	if p.MaxPages > 0 {
		out.MaxPages = p.MaxPages
	}
	out.Debug = out.Debug || p.Debug

	return out, nil
}
