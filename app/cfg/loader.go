package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/menofeed.db" description:"SQLite database file"`

	// Application configuration
	FeedsDir          string   `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`
	Port              string   `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string   `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://articles.example.com)"`
	WorkerCount       int      `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers"`
	SchedulerInterval int      `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	RefreshInterval   int      `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"3600" description:"Minimum seconds between automatic article refreshes"`
	FeedTimeout       int      `long:"feed-timeout" env:"FEED_TIMEOUT" default:"30" description:"Default per-feed fetch timeout in seconds"`
	RetentionDays     int      `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Days to keep unsaved articles after their last fetch"`
	MinReadTime       int      `long:"min-read-time" env:"MIN_READ_TIME" default:"2" description:"Minimum estimated reading time in minutes"`
	TopicKeywords     []string `long:"topic-keyword" env:"TOPIC_KEYWORDS" env-delim:"," description:"Relevance keyword (repeatable, replaces the built-in list)"`
	TopicMarkers      []string `long:"topic-marker" env:"TOPIC_MARKERS" env-delim:"," description:"Category marker that makes an article relevant (repeatable)"`
	APIAccessKey      string   `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Suggestion endpoint configuration
	AIBaseURL  string `long:"ai-base-url" env:"AI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai/" description:"OpenAI-compatible completion endpoint"`
	AIModel    string `long:"ai-model" env:"AI_MODEL" default:"gemini-2.0-flash" description:"Completion model"`
	AIAPIKey   string `long:"ai-api-key" env:"AI_API_KEY" description:"Completion API key (canned suggestions only when empty)"`
	AITimeout  int    `long:"ai-timeout" env:"AI_TIMEOUT" default:"10" description:"Completion time budget in seconds"`
	AIMaxBytes int    `long:"ai-max-bytes" env:"AI_MAX_BYTES" default:"4096" description:"Completion byte budget"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"menofeed/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/London)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args. A nil slice means os.Args.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		FeedsDir:          raw.FeedsDir,
		Port:              raw.Port,
		BaseUrl:           strings.TrimRight(raw.BaseUrl, "/"),
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		RefreshInterval:   raw.RefreshInterval,
		FeedTimeout:       raw.FeedTimeout,
		RetentionDays:     raw.RetentionDays,
		MinReadTime:       raw.MinReadTime,
		TopicKeywords:     cleanList(raw.TopicKeywords),
		TopicMarkers:      cleanList(raw.TopicMarkers),
		APIAccessKey:      raw.APIAccessKey,
		AIBaseURL:         raw.AIBaseURL,
		AIModel:           raw.AIModel,
		AIAPIKey:          raw.AIAPIKey,
		AITimeout:         raw.AITimeout,
		AIMaxBytes:        raw.AIMaxBytes,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests and embedding.
func Set(c *Cfg) {
	globalCfg = c
}

func validate(c *Cfg) error {
	positive := map[string]int{
		"worker count":       c.WorkerCount,
		"scheduler interval": c.SchedulerInterval,
		"refresh interval":   c.RefreshInterval,
		"feed timeout":       c.FeedTimeout,
		"retention days":     c.RetentionDays,
		"min read time":      c.MinReadTime,
		"ai timeout":         c.AITimeout,
		"ai max bytes":       c.AIMaxBytes,
	}

	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}

	return nil
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
