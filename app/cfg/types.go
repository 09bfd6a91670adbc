package cfg

import "time"

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	FeedsDir          string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	RefreshInterval   int
	FeedTimeout       int
	RetentionDays     int
	MinReadTime       int
	TopicKeywords     []string
	TopicMarkers      []string
	APIAccessKey      string

	// Suggestion endpoint configuration
	AIBaseURL  string
	AIModel    string
	AIAPIKey   string
	AITimeout  int
	AIMaxBytes int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

func (c *Cfg) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func (c *Cfg) RefreshEvery() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}
