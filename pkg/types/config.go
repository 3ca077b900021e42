package types

import "time"

// HTTPConfig holds shared HTTP settings for requests to the paper index.
type HTTPConfig struct {
	// Timeout bounds the whole fetch, including any throttling retries.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-feed/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 within the timeout.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MinInterval is the minimum delay between two requests to the index.
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval" mapstructure:"min_interval"`
}

// IndexName selects the paper index backend.
type IndexName string

const (
	IndexArxiv    IndexName = "arxiv"
	IndexOpenAlex IndexName = "openalex"
)

// SourceConfig holds settings for the paper source client.
type SourceConfig struct {
	// Index selects the backend: arxiv or openalex.
	Index IndexName `json:"index" yaml:"index" mapstructure:"index"`

	// Keywords are the search terms used when none are given on the command line.
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`

	// MaxResults is the maximum number of papers listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// OpenAlexEmail is sent as the mailto parameter for the OpenAlex polite pool.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// RenderConfig holds the fixed text of the generated page.
type RenderConfig struct {
	Title    string `json:"title" yaml:"title" mapstructure:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle" mapstructure:"subtitle"`

	// Schedule is a short human description of the update cadence shown on the page.
	Schedule string `json:"schedule" yaml:"schedule" mapstructure:"schedule"`

	// BackLink is the href of the "Back to Home" link; empty hides it.
	BackLink string `json:"back_link" yaml:"back_link" mapstructure:"back_link"`

	// Stylesheet is the href of the site stylesheet; empty omits the link.
	Stylesheet string `json:"stylesheet" yaml:"stylesheet" mapstructure:"stylesheet"`
}

// PublishConfig holds settings for committing and pushing the page.
type PublishConfig struct {
	// RepoDir is the working copy of the site repository.
	RepoDir string `json:"repo_dir" yaml:"repo_dir" mapstructure:"repo_dir"`

	// PagePath is the page location relative to RepoDir.
	PagePath string `json:"page_path" yaml:"page_path" mapstructure:"page_path"`

	Remote string `json:"remote" yaml:"remote" mapstructure:"remote"`
	Branch string `json:"branch" yaml:"branch" mapstructure:"branch"`

	// CommitMessage is a text/template with a .Date field (YYYY-MM-DD, UTC).
	CommitMessage string `json:"commit_message" yaml:"commit_message" mapstructure:"commit_message"`

	AuthorName  string `json:"author_name" yaml:"author_name" mapstructure:"author_name"`
	AuthorEmail string `json:"author_email" yaml:"author_email" mapstructure:"author_email"`

	// Token is an optional HTTPS push token. Loaded from secrets, never from config files.
	Token string `json:"-" yaml:"-" mapstructure:"-"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all stage configurations for the pipeline.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	Source  SourceConfig  `json:"source" yaml:"source" mapstructure:"source"`
	Render  RenderConfig  `json:"render" yaml:"render" mapstructure:"render"`
	Publish PublishConfig `json:"publish" yaml:"publish" mapstructure:"publish"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:     30 * time.Second,
			UserAgent:   "paper-feed/0.1",
			MaxRetries:  3,
			MinInterval: 3 * time.Second,
		},
		Source: SourceConfig{
			Index:      IndexArxiv,
			MaxResults: DefaultMaxResults,
		},
		Render: RenderConfig{
			Title:      "Latest arXiv Papers",
			Subtitle:   "Curated research papers on machine learning and deep learning",
			Schedule:   "Automatically updated daily at midnight",
			BackLink:   "index.html",
			Stylesheet: "style.css",
		},
		Publish: PublishConfig{
			RepoDir:       ".",
			PagePath:      "papers.html",
			Remote:        "origin",
			Branch:        "main",
			CommitMessage: "Update papers page for {{.Date}}",
			AuthorName:    "paper-feed",
			AuthorEmail:   "paper-feed@users.noreply.github.com",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
