package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/tenuretrack/internal/domain"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "https://jrecin.jst.go.jp", cfg.Crawl.BaseURL)
	assert.Equal(t, "理論経済学 経済学説 経済思想 経済政策", cfg.Crawl.Keywords)
	assert.Equal(t, 10, cfg.Crawl.MaxPages)
	assert.Equal(t, domain.Unlimited, cfg.Crawl.MaxJobs)
	assert.Equal(t, domain.RunModeFull, cfg.Crawl.Mode)
	assert.Equal(t, domain.ScopeNew, cfg.Crawl.Scope)
	assert.Equal(t, 2*time.Second, cfg.Crawl.PageDelay)
	assert.Equal(t, time.Second, cfg.Crawl.DetailDelay)
	assert.Equal(t, ExtractorRule, cfg.Extractor.Kind)
	assert.Equal(t, 3, cfg.Ollama.MaxRetries)
	assert.False(t, cfg.Sheets.Enabled())
	assert.Empty(t, cfg.Schedule)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"PORT":                    "9090",
		"CRAWL_KEYWORDS":          "  財政学  ",
		"CRAWL_MAX_PAGES":         "3",
		"CRAWL_MAX_JOBS":          "25",
		"CRAWL_MODE":              "urls_only",
		"CRAWL_SCOPE":             "all",
		"CRAWL_DEBUG":             "true",
		"EXTRACTOR_KIND":          "LLM",
		"SHEETS_CREDENTIALS_PATH": "/secrets/sa.json",
		"SHEETS_SPREADSHEET_ID":   "abc",
		"SCHEDULE":                "@every 24h",
	})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "財政学", cfg.Crawl.Keywords)
	assert.Equal(t, 3, cfg.Crawl.MaxPages)
	assert.Equal(t, domain.JobCap(25), cfg.Crawl.MaxJobs)
	assert.Equal(t, domain.RunModeURLs, cfg.Crawl.Mode)
	assert.Equal(t, domain.ScopeAll, cfg.Crawl.Scope)
	assert.True(t, cfg.Crawl.Debug)
	assert.Equal(t, ExtractorLLM, cfg.Extractor.Kind)
	assert.True(t, cfg.Sheets.Enabled())
	assert.Equal(t, "@every 24h", cfg.Schedule)
}

func TestAddrBracketsIPv6Host(t *testing.T) {
	assert.Equal(t, "[::1]:8080", Config{Host: "::1", Port: "8080"}.Addr())
	assert.Equal(t, "localhost:8080", Config{Host: "localhost", Port: "8080"}.Addr())
	assert.Equal(t, ":8080", Config{Port: "8080"}.Addr())
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "job cap zero", vars: map[string]string{"CRAWL_MAX_JOBS": "0"}},
		{name: "unknown mode", vars: map[string]string{"CRAWL_MODE": "everything"}},
		{name: "unknown scope", vars: map[string]string{"CRAWL_SCOPE": "old"}},
		{name: "bad duration", vars: map[string]string{"CRAWL_PAGE_DELAY": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	_, err := FromMap(map[string]string{
		"CRAWL_MAX_PAGES":       "0",
		"EXTRACTOR_KIND":        "regex",
		"CRAWL_BASE_URL":        "jrecin",
		"SHEETS_SPREADSHEET_ID": "abc",
		"SCHEDULE":              "every day",
	})
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "CRAWL_MAX_PAGES")
	assert.Contains(t, msg, "EXTRACTOR_KIND")
	assert.Contains(t, msg, "CRAWL_BASE_URL")
	assert.Contains(t, msg, "SHEETS_CREDENTIALS_PATH")
	assert.Contains(t, msg, "SCHEDULE")
}
