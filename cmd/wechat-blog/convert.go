package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	wechatblog "github.com/CodeDriverTech/wechat-blog"
	"github.com/CodeDriverTech/wechat-blog/internal/config"
	"github.com/CodeDriverTech/wechat-blog/internal/fileutil"
	"github.com/CodeDriverTech/wechat-blog/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrFlagParse          = errors.New("invalid flags")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrMissingUser        = errors.New("wechat and email are required")
	ErrNoRemote           = errors.New("no submission endpoint configured")
)

// maxConvertWorkers bounds the convert fan-out. Conversion is pure CPU
// and cheap, so more buys nothing.
const maxConvertWorkers = 32

// runConvertCmd handles the convert command.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFlagParse, err)
	}
	return runConvert(ctx, positional, flags, env)
}

// runConvert orchestrates markdown-to-HTML conversion.
func runConvert(ctx context.Context, positional []string, flags *convertFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfigFor(flags.common.config, envCfg)
	if err != nil {
		return err
	}

	// CLI flags win over env and config
	templateDir := flags.templates
	if templateDir == "" {
		templateDir = cfg.Templates.Dir
	}

	svc, err := newService(templateDir)
	if err != nil {
		return err
	}

	if len(positional) == 0 {
		return fmt.Errorf("%w: pass a markdown file or directory", ErrNoInput)
	}
	inputPath := positional[0]

	outputDir := flags.output
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", inputPath)
	}

	results := convertBatch(ctx, svc, files, resolveConvertWorkers(flags.workers, len(files)))

	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d conversion(s) failed", failed)
	}
	return nil
}

// newService builds the conversion service, attaching a hint when the
// template directory is unusable.
func newService(templateDir string) (*wechatblog.Service, error) {
	var opts []wechatblog.Option
	if templateDir != "" {
		opts = append(opts, wechatblog.WithTemplateDir(templateDir))
	}
	svc, err := wechatblog.New(opts...)
	if err != nil {
		if errors.Is(err, wechatblog.ErrTemplateDirMissing) {
			return nil, fmt.Errorf("%w%s", err, hints.ForTemplateDir(templateDir))
		}
		return nil, err
	}
	return svc, nil
}

// loadConfigFor resolves the effective config: an explicit name or path
// must exist, while the implicit "config" lookup quietly falls back to
// defaults. Env overrides are applied either way.
func loadConfigFor(flagConfig string, envCfg *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = envCfg.ConfigPath
	}

	if name != "" {
		cfg, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchedPaths(name)))
			}
			return nil, err
		}
		applyEnvConfig(envCfg, cfg)
		return cfg, nil
	}

	cfg, err := config.LoadConfig("config")
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return nil, err
		}
		cfg = config.DefaultConfig()
	}
	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > maxConvertWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, maxConvertWorkers)
	}
	return nil
}

// discoverFiles finds all markdown files to convert.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".markdown" {
			return nil
		}
		files = append(files, FileToConvert{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, outputDir, inputPath),
		})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the HTML output path for a markdown file.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	if outputDir == "" {
		return fileutil.ReplaceExt(inputPath, ".html")
	}

	if strings.HasSuffix(outputDir, ".html") {
		return outputDir
	}

	base := fileutil.ReplaceExt(filepath.Base(inputPath), ".html")
	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base)
		}
	}
	return filepath.Join(outputDir, base)
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	ext := filepath.Ext(path)
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}
