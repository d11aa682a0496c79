package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/CodeDriverTech/wechat-blog/internal/config"
	"github.com/CodeDriverTech/wechat-blog/internal/hints"
	"github.com/CodeDriverTech/wechat-blog/internal/submit"
)

// healthTimeout caps the remote reachability probe.
const healthTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Templates templatesInfo `json:"templates"`
	Config    configInfo    `json:"config"`
	Keyring   keyringInfo   `json:"keyring"`
	Remote    remoteInfo    `json:"remote"`
	SMTP      smtpInfo      `json:"smtp"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

type templatesInfo struct {
	Source string `json:"source"` // "embedded" or the directory
	Loaded bool   `json:"loaded"`
}

type configInfo struct {
	Found bool     `json:"found"`
	Path  string   `json:"path,omitempty"`
	Tried []string `json:"tried,omitempty"`
}

type keyringInfo struct {
	Available bool   `json:"available"`
	HasToken  bool   `json:"has_token"`
	Source    string `json:"token_source"` // effective token source
}

type remoteInfo struct {
	Configured bool   `json:"configured"`
	BaseURL    string `json:"base_url,omitempty"`
	Reachable  bool   `json:"reachable"`
}

type smtpInfo struct {
	Configured bool `json:"configured"`
	Complete   bool `json:"complete"`
}

type systemInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Container bool   `json:"container"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	result := runDoctor(ctx, flags.common.config)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, configName string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: systemInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			Container: hints.IsInContainer(),
		},
	}

	envCfg := loadEnvConfig()
	cfg := checkConfig(result, configName, envCfg)
	checkTemplates(result, cfg)
	checkKeyring(result, envCfg, cfg)
	checkRemote(ctx, result, envCfg, cfg)
	checkSMTP(result, cfg)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkConfig loads the config and records where it came from.
// Always returns a usable config so later checks can run.
func checkConfig(result *doctorResult, configName string, envCfg *envConfig) *config.Config {
	name := configName
	if name == "" {
		name = envCfg.ConfigPath
	}
	lookup := name
	if lookup == "" {
		lookup = "config"
	}
	result.Config.Tried = config.SearchedPaths(lookup)

	cfg, err := config.LoadConfig(lookup)
	switch {
	case err == nil:
		result.Config.Found = true
	case errors.Is(err, config.ErrConfigNotFound) && name == "":
		// Optional implicit config; defaults apply
		cfg = config.DefaultConfig()
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("config: %v", err))
		cfg = config.DefaultConfig()
	}
	applyEnvConfig(envCfg, cfg)
	return cfg
}

// checkTemplates verifies the fragment set loads.
func checkTemplates(result *doctorResult, cfg *config.Config) {
	result.Templates.Source = "embedded"
	if cfg.Templates.Dir != "" {
		result.Templates.Source = cfg.Templates.Dir
	}

	if _, err := newService(cfg.Templates.Dir); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("templates: %v", err))
		return
	}
	result.Templates.Loaded = true
}

// checkKeyring probes the keyring and records the effective token source.
func checkKeyring(result *doctorResult, envCfg *envConfig, cfg *config.Config) {
	if tok, err := keyringToken(); err == nil {
		result.Keyring.Available = true
		result.Keyring.HasToken = tok != ""
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("keyring: %v", err))
	}

	_, source := resolveToken("", envCfg, cfg)
	result.Keyring.Source = source
}

// checkRemote probes the health endpoint when a remote is configured.
func checkRemote(ctx context.Context, result *doctorResult, envCfg *envConfig, cfg *config.Config) {
	if cfg.Remote.BaseURL == "" {
		return
	}
	result.Remote.Configured = true
	result.Remote.BaseURL = cfg.Remote.BaseURL

	token, _ := resolveToken("", envCfg, cfg)
	client := submit.NewClient(cfg.Remote.BaseURL, clientOptions(token, cfg)...)

	probeCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := client.Health(probeCtx); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("remote: %v", err))
		return
	}
	result.Remote.Reachable = true
}

// checkSMTP reports notification readiness.
func checkSMTP(result *doctorResult, cfg *config.Config) {
	smtpCfg := mailerConfig(cfg)
	result.SMTP.Configured = cfg.SMTP.Host != ""
	result.SMTP.Complete = smtpCfg.Complete()

	if result.SMTP.Configured && !result.SMTP.Complete {
		result.Warnings = append(result.Warnings, "smtp settings incomplete, notifications disabled")
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "wechat-blog doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Templates")
	if r.Templates.Loaded {
		fmt.Fprintf(w, "  [OK] Loaded (%s)\n", r.Templates.Source)
	} else {
		fmt.Fprintf(w, "  [ERROR] Failed to load (%s)\n", r.Templates.Source)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.Found {
		fmt.Fprintln(w, "  [OK] Config file found")
	} else {
		fmt.Fprintln(w, "  [OK] No config file, using defaults")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Auth")
	if r.Keyring.Available {
		if r.Keyring.HasToken {
			fmt.Fprintln(w, "  [OK] Keyring: token stored")
		} else {
			fmt.Fprintln(w, "  [OK] Keyring: available, no token")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Keyring: unavailable")
	}
	fmt.Fprintf(w, "  [OK] Token source: %s\n", r.Keyring.Source)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Remote")
	if !r.Remote.Configured {
		fmt.Fprintln(w, "  [OK] Not configured (local conversion only)")
	} else if r.Remote.Reachable {
		fmt.Fprintf(w, "  [OK] %s reachable\n", r.Remote.BaseURL)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s unreachable\n", r.Remote.BaseURL)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Mail")
	switch {
	case !r.SMTP.Configured:
		fmt.Fprintln(w, "  [OK] Not configured (notifications disabled)")
	case r.SMTP.Complete:
		fmt.Fprintln(w, "  [OK] SMTP configured")
	default:
		fmt.Fprintln(w, "  [WARN] SMTP incomplete")
	}
	fmt.Fprintln(w)

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  [WARN] %s\n", warn)
	}
	for _, err := range r.Errors {
		fmt.Fprintf(w, "  [ERROR] %s\n", err)
	}
	if len(r.Warnings)+len(r.Errors) > 0 {
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
