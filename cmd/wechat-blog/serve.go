package main

import (
	"context"
	"fmt"
	"log"

	"github.com/CodeDriverTech/wechat-blog/internal/config"
	"github.com/CodeDriverTech/wechat-blog/internal/hints"
	"github.com/CodeDriverTech/wechat-blog/internal/mailer"
	"github.com/CodeDriverTech/wechat-blog/internal/server"
	"github.com/CodeDriverTech/wechat-blog/internal/submit"
)

// runServeCmd handles the serve command.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFlagParse, err)
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

	logger := log.New(env.Stderr, "wechat-blog: ", log.LstdFlags)
	opts := server.Options{
		Addr:        firstNonEmpty(flags.addr, envCfg.Addr, cfg.Server.Addr),
		MaxUploadMB: cfg.Server.MaxUploadMB,
		Workers:     firstPositive(flags.workers, envCfg.Workers, cfg.Server.Workers),
		Logger:      logger,
		Converter:   svc,
	}

	if cfg.Remote.BaseURL != "" {
		token, source := resolveToken("", envCfg, cfg)
		opts.Submitter = submit.NewClient(cfg.Remote.BaseURL, clientOptions(token, cfg)...)
		logger.Printf("submitting to %s (token source: %s)", cfg.Remote.BaseURL, source)
	} else {
		logger.Printf("no remote configured; uploads are converted locally only")
	}

	smtpCfg := mailerConfig(cfg)
	if smtpCfg.Complete() {
		opts.Notifier = mailer.New(smtpCfg)
	} else if cfg.SMTP.Host != "" {
		logger.Printf("smtp settings incomplete, notifications disabled%s", hints.ForSMTPIncomplete())
	}

	return server.New(opts).Run(ctx)
}

// mailerConfig maps the config SMTP section to the mailer.
func mailerConfig(cfg *config.Config) mailer.Config {
	return mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
		ReplyTo:  cfg.SMTP.ReplyTo,
	}
}

// firstNonEmpty returns the first non-empty string.
// Used where config defaults are non-empty and fill-if-empty cannot apply.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// firstPositive returns the first value greater than zero.
func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
