// Package config loads the wechat-blog YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/CodeDriverTech/wechat-blog/internal/fileutil"
	"github.com/CodeDriverTech/wechat-blog/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidPort     = errors.New("invalid port")
	ErrInvalidWorkers  = errors.New("invalid worker count")
)

// Field length limits. Config values end up in HTTP headers, mail headers,
// and file names; capping them here keeps those layers simple.
const (
	MaxURLLength   = 2048 // Browser limit
	MaxEmailLength = 254  // RFC 5321
	MaxPathLength  = 4096 // Typical PATH_MAX
	MaxTokenLength = 512  // Bearer tokens
	MaxHostLength  = 253  // DNS name limit
	MaxAddrLength  = 260  // host:port
	MaxWorkers     = 64   // Sanity bound for the pools
)

// Config holds all configuration for conversion, submission, and serving.
type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	Output    OutputConfig    `yaml:"output"`
	Remote    RemoteConfig    `yaml:"remote"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Server    ServerConfig    `yaml:"server"`
}

// TemplatesConfig selects the fragment source.
type TemplatesConfig struct {
	Dir string `yaml:"dir"` // Fragment directory (empty = embedded set)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Default output directory (empty = next to input)
}

// RemoteConfig defines the submission endpoint.
type RemoteConfig struct {
	BaseURL   string `yaml:"base_url"`   // e.g. https://blog.example.com
	Token     string `yaml:"token"`      // API token (prefer keyring or env)
	VerifySSL bool   `yaml:"verify_ssl"` // default true
	Timeout   int    `yaml:"timeout"`    // seconds, 0 = client default
}

// SMTPConfig defines admin notification mail settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"` // 465 = implicit TLS, otherwise STARTTLS
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	ReplyTo  string `yaml:"reply_to"`
}

// ServerConfig defines the upload server settings.
type ServerConfig struct {
	Addr        string `yaml:"addr"`          // listen address (default :8000)
	MaxUploadMB int    `yaml:"max_upload_mb"` // request body cap (default 200)
	Workers     int    `yaml:"workers"`       // processing pool size (default 4)
}

// DefaultConfig returns the neutral configuration: embedded templates, no
// remote, no mail, conservative server defaults.
func DefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{VerifySSL: true},
		Server: ServerConfig{Addr: ":8000", MaxUploadMB: 200, Workers: 4},
	}
}

// Validate checks field lengths and numeric ranges.
// Called automatically by LoadConfig, but available for consumers who
// construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("templates.dir", c.Templates.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("remote.base_url", c.Remote.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("remote.token", c.Remote.Token, MaxTokenLength); err != nil {
		return err
	}
	if c.Remote.BaseURL != "" && !fileutil.IsURL(c.Remote.BaseURL) {
		return fmt.Errorf("remote.base_url: must start with http:// or https://, got %q", c.Remote.BaseURL)
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout: must not be negative, got %d", c.Remote.Timeout)
	}

	if err := validateFieldLength("smtp.host", c.SMTP.Host, MaxHostLength); err != nil {
		return err
	}
	if c.SMTP.Port != 0 && (c.SMTP.Port < 1 || c.SMTP.Port > 65535) {
		return fmt.Errorf("%w: smtp.port must be 1-65535, got %d", ErrInvalidPort, c.SMTP.Port)
	}
	for _, f := range []struct{ name, value string }{
		{"smtp.username", c.SMTP.Username},
		{"smtp.from", c.SMTP.From},
		{"smtp.to", c.SMTP.To},
		{"smtp.reply_to", c.SMTP.ReplyTo},
	} {
		if err := validateFieldLength(f.name, f.value, MaxEmailLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb: must not be negative, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.Workers != 0 && (c.Server.Workers < 1 || c.Server.Workers > MaxWorkers) {
		return fmt.Errorf("%w: server.workers must be 1-%d, got %d", ErrInvalidWorkers, MaxWorkers, c.Server.Workers)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// A .env file in the working directory is loaded into the environment first,
// so later WECHAT_BLOG_* overrides see it (missing .env is fine).
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	_ = godotenv.Load()

	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Unmarshal over the defaults so absent fields keep them
	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/wechat-blog/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "wechat-blog", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// SearchedPaths lists the paths resolveConfigPath would try for a name,
// for error hints.
func SearchedPaths(name string) []string {
	paths := []string{name + ".yaml", name + ".yml"}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(userConfigDir, "wechat-blog", name+".yaml"),
			filepath.Join(userConfigDir, "wechat-blog", name+".yml"))
	}
	return paths
}
