package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deepsearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the web search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the Tavily API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the maximum number of results per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Depth selects Tavily search depth: "basic" or "advanced" (default basic).
	Depth string `json:"depth" yaml:"depth"`

	// InterCallDelay spaces consecutive search calls to respect provider
	// rate limits (default 1s). Enforced by a shared limiter, so it holds
	// across concurrent section workers too.
	InterCallDelay time.Duration `json:"inter_call_delay" yaml:"inter_call_delay"`

	// MaxContentLength truncates each result's content when formatting
	// results into a prompt (default 1000 runes).
	MaxContentLength int `json:"max_content_length" yaml:"max_content_length"`
}

// AIConfig holds shared settings for stages that call a text generation API.
type AIConfig struct {
	// Model is the model identifier (e.g. "deepseek-chat").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout is the per-call generation timeout, independent of the
	// search timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retry attempts for failed required
	// generation calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ReportConfig holds settings for the report refinement stage.
type ReportConfig struct {
	// MaxReflections is the fixed number of reflection rounds run per
	// section after the first pass (default 2). Reflection is count-driven,
	// not validity-driven: every section gets exactly this many rounds.
	MaxReflections int `json:"max_reflections" yaml:"max_reflections"`

	// Concurrency bounds how many sections refine in parallel. Values
	// below 2 keep the baseline sequential behavior.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// ChartDataConfig holds settings for the chart data extraction stage.
type ChartDataConfig struct {
	// MaxAttempts is the attempt ceiling per extraction slot before the
	// fallback canned data is used (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// AttemptDelay is the fixed delay between extraction attempts, a
	// rate-limit courtesy toward the external APIs (default 1s).
	AttemptDelay time.Duration `json:"attempt_delay" yaml:"attempt_delay"`
}

// OutputConfig holds settings for rendering and persistence.
type OutputConfig struct {
	// OutputDir is the directory for rendered reports (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// StateDir is the directory holding the SQLite state database
	// (default "state").
	StateDir string `json:"state_dir" yaml:"state_dir"`

	// SaveState controls whether run state is persisted to the database.
	SaveState bool `json:"save_state" yaml:"save_state"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search     SearchConfig    `json:"search" yaml:"search"`
	Generation AIConfig        `json:"generation" yaml:"generation"`
	Report     ReportConfig    `json:"report" yaml:"report"`
	ChartData  ChartDataConfig `json:"chart_data" yaml:"chart_data"`
	Output     OutputConfig    `json:"output" yaml:"output"`
}
