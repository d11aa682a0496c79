package wechatblog

import "errors"

// Sentinel errors for library operations.
var (
	// Template loading errors (startup class).
	ErrTemplateDirMissing = errors.New("template directory not found")
	ErrTemplateMissing    = errors.New("template fragment not found")

	// File conversion errors.
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
)
