package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/honeycarbs/tenuretrack/internal/domain"
)

// Extractor kinds
const (
	ExtractorRule = "rule"
	ExtractorLLM  = "llm"
)

// Config contains runtime settings for the harvester and the MCP server
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Host      string `env:"MCP_HOST" envDefault:"0.0.0.0"`
	Port      string `env:"PORT" envDefault:"8080"`
	DataDir   string `env:"DATA_DIR" envDefault:"data"`
	// Schedule is a cron spec for periodic runs; empty disables scheduling
	Schedule string `env:"SCHEDULE"`

	Crawl     Crawl
	Extractor Extractor
	Ollama    Ollama
	Sheets    Sheets
}

// Crawl holds search site and run defaults
type Crawl struct {
	BaseURL        string         `env:"CRAWL_BASE_URL" envDefault:"https://jrecin.jst.go.jp"`
	SearchPath     string         `env:"CRAWL_SEARCH_PATH" envDefault:"/seek/SeekJorSearch"`
	Keywords       string         `env:"CRAWL_KEYWORDS" envDefault:"理論経済学 経済学説 経済思想 経済政策"`
	MaxPages       int            `env:"CRAWL_MAX_PAGES" envDefault:"10"`
	MaxJobs        domain.JobCap  `env:"CRAWL_MAX_JOBS" envDefault:"unlimited"`
	Mode           domain.RunMode `env:"CRAWL_MODE" envDefault:"full"`
	Scope          domain.Scope   `env:"CRAWL_SCOPE" envDefault:"new"`
	Debug          bool           `env:"CRAWL_DEBUG" envDefault:"false"`
	PageDelay      time.Duration  `env:"CRAWL_PAGE_DELAY" envDefault:"2s"`
	DetailDelay    time.Duration  `env:"CRAWL_DETAIL_DELAY" envDefault:"1s"`
	RequestTimeout time.Duration  `env:"CRAWL_REQUEST_TIMEOUT" envDefault:"30s"`
	UserAgent      string         `env:"CRAWL_USER_AGENT"`
}

// Extractor selects the record extraction strategy
type Extractor struct {
	Kind string `env:"EXTRACTOR_KIND" envDefault:"rule"`
}

// Ollama configures the local generation service used by the llm extractor
type Ollama struct {
	URL        string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	Model      string        `env:"OLLAMA_MODEL" envDefault:"gemma3:12b"`
	MaxRetries int           `env:"OLLAMA_MAX_RETRIES" envDefault:"3"`
	RetryDelay time.Duration `env:"OLLAMA_RETRY_DELAY" envDefault:"2s"`
	Timeout    time.Duration `env:"OLLAMA_TIMEOUT" envDefault:"120s"`
}

// Sheets configures the optional Google Sheets export
type Sheets struct {
	CredentialsPath string `env:"SHEETS_CREDENTIALS_PATH"`
	SpreadsheetID   string `env:"SHEETS_SPREADSHEET_ID"`
	Tab             string `env:"SHEETS_TAB" envDefault:"Sheet1"`
}

// Enabled reports whether credentials were supplied
func (s Sheets) Enabled() bool {
	return s.CredentialsPath != ""
}

// Addr is the listen address of the MCP server
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads an optional .env file and then the process environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("config: load .env file: %w", err)
		}
	}
	return parse(env.Options{})
}

// FromMap parses configuration from an explicit variable set instead of the
// process environment
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("config: parse: %w", err)
	}
	cfg.Crawl.Keywords = strings.TrimSpace(cfg.Crawl.Keywords)
	cfg.Extractor.Kind = strings.ToLower(strings.TrimSpace(cfg.Extractor.Kind))

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR must not be empty"))
	}
	if u, err := url.Parse(c.Crawl.BaseURL); err != nil || !u.IsAbs() {
		errs = append(errs, fmt.Errorf("CRAWL_BASE_URL must be an absolute URL, got %q", c.Crawl.BaseURL))
	}
	if c.Crawl.Keywords == "" {
		errs = append(errs, errors.New("CRAWL_KEYWORDS must not be empty"))
	}
	if c.Crawl.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("CRAWL_MAX_PAGES must be a positive integer, got %d", c.Crawl.MaxPages))
	}
	if c.Crawl.PageDelay < 0 || c.Crawl.DetailDelay < 0 {
		errs = append(errs, errors.New("CRAWL_PAGE_DELAY and CRAWL_DETAIL_DELAY must not be negative"))
	}
	switch c.Extractor.Kind {
	case ExtractorRule, ExtractorLLM:
	default:
		errs = append(errs, fmt.Errorf("EXTRACTOR_KIND must be %q or %q, got %q", ExtractorRule, ExtractorLLM, c.Extractor.Kind))
	}
	if c.Ollama.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("OLLAMA_MAX_RETRIES must be at least 1, got %d", c.Ollama.MaxRetries))
	}
	if c.Sheets.SpreadsheetID != "" && !c.Sheets.Enabled() {
		errs = append(errs, errors.New("SHEETS_SPREADSHEET_ID requires SHEETS_CREDENTIALS_PATH"))
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("SCHEDULE is not a valid cron spec: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid settings: %w", errors.Join(errs...))
	}
	return nil
}
