package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CodeDriverTech/wechat-blog/internal/config"
	"github.com/CodeDriverTech/wechat-blog/internal/hints"
	"github.com/CodeDriverTech/wechat-blog/internal/outfmt"
	"github.com/CodeDriverTech/wechat-blog/internal/secrets"
	"github.com/CodeDriverTech/wechat-blog/internal/submit"
	"github.com/CodeDriverTech/wechat-blog/internal/workspace"
)

// keyringToken reads the stored API token. Swapped in tests so they
// never touch a real keyring.
var keyringToken = func() (string, error) {
	store, err := secrets.Open()
	if err != nil {
		return "", err
	}
	return store.GetToken()
}

// runSubmitCmd handles the submit command.
func runSubmitCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseSubmitFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFlagParse, err)
	}
	return runSubmit(ctx, positional, flags, env)
}

// runSubmit converts one upload and delivers it to the endpoint.
func runSubmit(ctx context.Context, positional []string, flags *submitFlags, env *Environment) error {
	if len(positional) == 0 {
		return fmt.Errorf("%w: pass a .md file or .zip bundle", ErrNoInput)
	}
	if flags.wechat == "" || flags.email == "" {
		return fmt.Errorf("%w: pass --wechat and --email", ErrMissingUser)
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfigFor(flags.common.config, envCfg)
	if err != nil {
		return err
	}

	svc, err := newService(cfg.Templates.Dir)
	if err != nil {
		return err
	}

	user := workspace.User{WeChat: flags.wechat, Email: flags.email}
	start := time.Now()
	res, err := workspace.Process(svc, positional[0], user, env.Now())
	if err != nil {
		return err
	}
	defer func() {
		if flags.keep {
			fmt.Fprintf(env.Stderr, "work dir kept at %s\n", res.WorkDir)
			return
		}
		_ = os.RemoveAll(res.WorkDir)
	}()

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "processed %d file(s) in %v\n",
			len(res.HTMLFiles), time.Since(start).Round(time.Millisecond))
	}

	manifest := submit.ManifestFrom(res, user)
	printer := outfmt.NewPrinter(env.Stdout, flags.query)

	if flags.dryRun {
		return printer.Print(manifest)
	}

	baseURL := flags.baseURL
	if baseURL == "" {
		baseURL = cfg.Remote.BaseURL
	}
	if baseURL == "" {
		return fmt.Errorf("%w%s", ErrNoRemote, hints.ForRemoteUnreachable(""))
	}

	payloadPath := filepath.Join(res.WorkDir, "payload.zip")
	if err := submit.BuildPayload(res, payloadPath); err != nil {
		return err
	}

	token, _ := resolveToken(flags.token, envCfg, cfg)
	client := submit.NewClient(baseURL, clientOptions(token, cfg)...)

	receipt, err := client.Submit(ctx, manifest, payloadPath)
	if err != nil {
		switch {
		case errors.Is(err, submit.ErrUnauthorized):
			return fmt.Errorf("%w%s", err, hints.ForUnauthorized())
		case errors.Is(err, submit.ErrRemoteStatus):
			return err
		default:
			return fmt.Errorf("%w%s", err, hints.ForRemoteUnreachable(baseURL))
		}
	}

	if !flags.common.quiet {
		return printer.Print(receipt)
	}
	return nil
}

// clientOptions maps the remote config section to client options.
func clientOptions(token string, cfg *config.Config) []submit.ClientOption {
	var opts []submit.ClientOption
	if token != "" {
		opts = append(opts, submit.WithToken(token))
	}
	if !cfg.Remote.VerifySSL {
		opts = append(opts, submit.WithInsecureTLS())
	}
	if cfg.Remote.Timeout > 0 {
		opts = append(opts, submit.WithTimeout(time.Duration(cfg.Remote.Timeout)*time.Second))
	}
	return opts
}

// resolveToken returns the effective token and where it came from.
// Priority: flag > WECHAT_BLOG_TOKEN > keyring > config.
func resolveToken(flagToken string, envCfg *envConfig, cfg *config.Config) (token, source string) {
	if flagToken != "" {
		return flagToken, "flag"
	}
	if envCfg.Token != "" {
		return envCfg.Token, "environment"
	}
	if tok, err := keyringToken(); err == nil && tok != "" {
		return tok, "keyring"
	}
	if cfg.Remote.Token != "" {
		return cfg.Remote.Token, "config"
	}
	return "", "none"
}
