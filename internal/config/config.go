package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	AlertTo  string `yaml:"alert_to"`
}

type Config struct {
	Port        string
	GinMode     string
	DatabaseDSN string

	LogLevel string
	LogFile  string

	// Gateway
	UpstreamURL string

	// Comma-separated "id:name:role" triples seeded at startup.
	SeedUsers string

	Plan string

	SweepIntervalSec int
	AutoEnforce      bool

	SMTP SMTPConfig
}

// fileConfig is the optional YAML overlay; only fields that benefit from
// file-based deployment config are exposed there.
type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Email SMTPConfig `yaml:"email"`
}

func Load() *Config {
	cfg := &Config{
		Port:    getEnv("PORT", "4000"),
		GinMode: getEnv("GIN_MODE", "debug"),
		// Volatile by design: one shared in-process database per run.
		DatabaseDSN: getEnv("DATABASE_DSN", "file::memory:?cache=shared"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		UpstreamURL: getEnv("UPSTREAM_URL", "http://localhost:4000"),
		SeedUsers:   getEnv("SEED_USERS", "owner:Parent:Owner,kid-1:Kid 1:Child"),
		Plan:        getEnv("PLAN", "elite"),

		SweepIntervalSec: getEnvInt("SWEEP_INTERVAL_SEC", 30),
		AutoEnforce:      getEnvBool("AUTO_ENFORCE", true),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
			AlertTo:  getEnv("ALERT_TO", ""),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		applyFile(cfg, path)
	}
	return cfg
}

func applyFile(cfg *Config, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	var fc fileConfig
	if err := yaml.NewDecoder(f).Decode(&fc); err != nil {
		return
	}
	if fc.Server.Port != "" {
		cfg.Port = fc.Server.Port
	}
	if fc.Database.DSN != "" {
		cfg.DatabaseDSN = fc.Database.DSN
	}
	if fc.Log.Level != "" {
		cfg.LogLevel = fc.Log.Level
	}
	if fc.Log.File != "" {
		cfg.LogFile = fc.Log.File
	}
	if fc.Email.Host != "" {
		cfg.SMTP = fc.Email
	}
}

// SeedEntry is one parsed SEED_USERS triple.
type SeedEntry struct {
	ID   string
	Name string
	Role string
}

// ParseSeedUsers splits the configured roster into entries, skipping
// malformed triples.
func (c *Config) ParseSeedUsers() []SeedEntry {
	var out []SeedEntry
	for _, part := range strings.Split(c.SeedUsers, ",") {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 3)
		if len(fields) != 3 || fields[0] == "" {
			continue
		}
		out = append(out, SeedEntry{ID: fields[0], Name: fields[1], Role: fields[2]})
	}
	return out
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
