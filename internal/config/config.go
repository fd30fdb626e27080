package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved runtime configuration. It is loaded once at
// startup and never re-read.
type Config struct {
	RepoPath     string
	Organization string
	Project      string
	Repository   string
	Branch       string
	PAT          string

	PollInterval  time.Duration
	LogLevel      string
	MetricsListen string
	StatusFile    string
}

// Load pulls the configuration out of viper and validates it. A failed load
// is the only fatal error in the program.
func Load() (*Config, error) {
	cfg := &Config{
		RepoPath:      viper.GetString("repo.path"),
		Organization:  viper.GetString("repo.organization"),
		Project:       viper.GetString("repo.project"),
		Repository:    viper.GetString("repo.repository"),
		Branch:        viper.GetString("repo.branch"),
		PAT:           viper.GetString("auth.pat"),
		PollInterval:  time.Duration(viper.GetInt("poll.interval_seconds")) * time.Second,
		LogLevel:      viper.GetString("log.level"),
		MetricsListen: viper.GetString("metrics.listen"),
		StatusFile:    viper.GetString("status.file"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		key, value string
	}{
		{"repo.path", c.RepoPath},
		{"repo.organization", c.Organization},
		{"repo.project", c.Project},
		{"repo.repository", c.Repository},
		{"repo.branch", c.Branch},
		{"auth.pat", c.PAT},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll.interval_seconds must be positive")
	}
	return nil
}

// RemoteURL is the repository URL without credentials, safe for logging.
func (c *Config) RemoteURL() string {
	return fmt.Sprintf("https://dev.azure.com/%s/%s/_git/%s", c.Organization, c.Project, c.Repository)
}

// FetchURL is the credentialed URL the git backend fetches from, the form the
// hosted service expects for basic auth pulls. Never log it.
func (c *Config) FetchURL() string {
	return fmt.Sprintf("https://%s:%s@dev.azure.com/%s/%s/_git/%s",
		c.Organization, c.PAT, c.Organization, c.Project, c.Repository)
}

// Level maps the configured log level onto slog.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
