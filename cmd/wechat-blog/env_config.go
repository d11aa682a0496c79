package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/CodeDriverTech/wechat-blog/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath   string // WECHAT_BLOG_CONFIG: config file path
	TemplatesDir string // WECHAT_BLOG_TEMPLATES: fragment template directory
	BaseURL      string // WECHAT_BLOG_BASE_URL: submission endpoint
	Token        string // WECHAT_BLOG_TOKEN: API token (bypasses the keyring)
	Addr         string // WECHAT_BLOG_ADDR: serve listen address
	Workers      int    // WECHAT_BLOG_WORKERS: worker count
}

// knownEnvVars lists valid WECHAT_BLOG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"WECHAT_BLOG_CONFIG":    true,
	"WECHAT_BLOG_TEMPLATES": true,
	"WECHAT_BLOG_BASE_URL":  true,
	"WECHAT_BLOG_TOKEN":     true,
	"WECHAT_BLOG_ADDR":      true,
	"WECHAT_BLOG_WORKERS":   true,
	// Consumed by internal/secrets
	"WECHAT_BLOG_KEYRING_BACKEND": true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:   os.Getenv("WECHAT_BLOG_CONFIG"),
		TemplatesDir: os.Getenv("WECHAT_BLOG_TEMPLATES"),
		BaseURL:      os.Getenv("WECHAT_BLOG_BASE_URL"),
		Token:        os.Getenv("WECHAT_BLOG_TOKEN"),
		Addr:         os.Getenv("WECHAT_BLOG_ADDR"),
	}

	if workers := os.Getenv("WECHAT_BLOG_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized WECHAT_BLOG_* variables.
// Helps catch typos like WECHAT_BLOG_BASEURL instead of WECHAT_BLOG_BASE_URL.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "WECHAT_BLOG_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.TemplatesDir != "" && cfg.Templates.Dir == "" {
		cfg.Templates.Dir = env.TemplatesDir
	}
	if env.BaseURL != "" && cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = env.BaseURL
	}
	// Addr and Workers carry non-empty defaults, so serve resolves them
	// by precedence instead of fill-if-empty. Token never lands in the
	// config; resolveToken consumes it directly.
}
