package templates

import "errors"

// Sentinel errors for template loading.
var (
	// ErrTemplateDirMissing indicates the configured template directory
	// does not exist or is not a directory.
	ErrTemplateDirMissing = errors.New("template directory missing")

	// ErrTemplateMissing indicates a required fragment file does not exist.
	ErrTemplateMissing = errors.New("template missing")

	// ErrTemplateRead indicates an I/O error occurred while reading a fragment.
	ErrTemplateRead = errors.New("failed to read template")

	// ErrInvalidTemplateName indicates the fragment name contains path
	// separators or traversal sequences.
	ErrInvalidTemplateName = errors.New("invalid template name")
)
