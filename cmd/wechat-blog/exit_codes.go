package main

import (
	"errors"
	"os"

	wechatblog "github.com/CodeDriverTech/wechat-blog"
	"github.com/CodeDriverTech/wechat-blog/internal/config"
	"github.com/CodeDriverTech/wechat-blog/internal/submit"
	"github.com/CodeDriverTech/wechat-blog/internal/workspace"
)

// Exit codes for the wechat-blog CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitRemote  = 4 // Submission endpoint errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Remote errors (exit 4)
	if errors.Is(err, submit.ErrUnauthorized) ||
		errors.Is(err, submit.ErrRemoteStatus) {
		return ExitRemote
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, wechatblog.ErrReadInput) ||
		errors.Is(err, wechatblog.ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidPort) ||
		errors.Is(err, config.ErrInvalidWorkers) ||
		errors.Is(err, wechatblog.ErrTemplateDirMissing) ||
		errors.Is(err, wechatblog.ErrTemplateMissing) ||
		errors.Is(err, workspace.ErrUnsupportedUpload) ||
		errors.Is(err, ErrFlagParse) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrMissingUser) ||
		errors.Is(err, ErrNoRemote) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
