package config

import "time"

// Config holds runtime settings for the game client.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL"`
	RequestTimeout time.Duration `env:"API_TIMEOUT"`
	DatabaseDSN    string        `env:"SESSION_DB_DSN"`
	RedisURL       string        `env:"REDIS_URL"`
	LogLevel       string        `env:"LOG_LEVEL"`
	LogBackend     string        `env:"LOG_BACKEND"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.DatabaseDSN = "data/session.db"
	c.RedisURL = ""
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// LoadConfig builds a Config from defaults, then environment (optionally
// seeded from a .env file), then a JSON file, then flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
