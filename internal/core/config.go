package core

import (
	"time"
)

type Config struct {
	Browser BrowserConfig
	Extract ExtractConfig
	Resolve ResolveConfig
	Output  OutputConfig
	Metrics MetricsConfig
	Log     LogConfig
}

type BrowserConfig struct {
	Headless     bool
	NavPerMinute int
}

type ExtractConfig struct {
	WaitTimeout    time.Duration
	StalePassLimit int
	MaxPasses      int
	SeenCapacity   int
}

type ResolveConfig struct {
	Target      string
	MatchPolicy string
	Timeout     time.Duration
	CachePath   string
}

type OutputConfig struct {
	SavePath string
}

type MetricsConfig struct {
	Addr string
}

type LogConfig struct {
	Level string
}

func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:     true,
			NavPerMinute: 30,
		},
		Extract: ExtractConfig{
			WaitTimeout:    30 * time.Second,
			StalePassLimit: 1,
			MaxPasses:      512,
			SeenCapacity:   20000,
		},
		Resolve: ResolveConfig{
			MatchPolicy: "name-only",
			Timeout:     20 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
