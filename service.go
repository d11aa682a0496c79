package wechatblog

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/CodeDriverTech/wechat-blog/internal/markdown"
	"github.com/CodeDriverTech/wechat-blog/internal/templates"
)

// Service converts Markdown articles against one loaded fragment set.
// Safe for concurrent use.
type Service struct {
	cfg  serviceConfig
	conv *markdown.Converter
}

type serviceConfig struct {
	templateDir string
	loader      templates.Loader
}

// Option customizes Service construction.
type Option func(*serviceConfig)

// WithTemplateDir loads fragments from dir instead of the embedded set.
func WithTemplateDir(dir string) Option {
	return func(cfg *serviceConfig) {
		cfg.templateDir = dir
	}
}

// WithLoader injects a custom fragment loader (e.g., by tests).
// Takes precedence over WithTemplateDir.
func WithLoader(loader templates.Loader) Option {
	return func(cfg *serviceConfig) {
		cfg.loader = loader
	}
}

// New creates a Service with the embedded fragment set by default.
// Use options to customize behavior (e.g., WithTemplateDir).
// Template errors fail here, never during conversion.
func New(opts ...Option) (*Service, error) {
	s := &Service{}

	for _, opt := range opts {
		opt(&s.cfg)
	}

	if s.cfg.loader == nil {
		if s.cfg.templateDir != "" {
			loader, err := templates.NewDirLoader(s.cfg.templateDir)
			if err != nil {
				return nil, convertTemplateError(err)
			}
			s.cfg.loader = loader
		} else {
			s.cfg.loader = templates.NewEmbeddedLoader()
		}
	}

	set, err := templates.LoadSet(s.cfg.loader)
	if err != nil {
		return nil, convertTemplateError(err)
	}
	s.conv = markdown.New(set)

	return s, nil
}

// Convert renders a Markdown document to WeChat-editor HTML.
// Conversion is total and never fails; malformed input renders through
// the defined fallbacks.
func (s *Service) Convert(md string) string {
	return s.conv.Render(md)
}

// ConvertFile reads a UTF-8 Markdown file, converts it, and writes the
// HTML to outputPath, creating parent directories as needed.
func (s *Service) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath) // #nosec G304 -- caller-provided path by design of a file converter
	if err != nil {
		return wrapError(ErrReadInput, err)
	}

	html := s.Convert(string(data))

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return wrapError(ErrWriteOutput, err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(html), 0o644); err != nil { // #nosec G306 -- converted article, not a secret
		return wrapError(ErrWriteOutput, err)
	}
	return nil
}

// convertTemplateError maps internal template errors to public errors.
func convertTemplateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, templates.ErrTemplateDirMissing):
		return wrapError(ErrTemplateDirMissing, err)
	case errors.Is(err, templates.ErrTemplateMissing):
		return wrapError(ErrTemplateMissing, err)
	case errors.Is(err, templates.ErrInvalidTemplateName):
		return wrapError(ErrTemplateMissing, err) // Invalid name means not found
	default:
		return err
	}
}

// wrapError creates a new error that wraps the original with a public
// sentinel. The result preserves the original message via Error() and
// matches the sentinel under errors.Is().
func wrapError(sentinel, original error) error {
	return &wrappedError{sentinel: sentinel, original: original}
}

type wrappedError struct {
	sentinel error
	original error
}

func (e *wrappedError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel for errors.Is() matching.
// Internal errors are not exposed since they're in internal/ packages.
func (e *wrappedError) Unwrap() error {
	return e.sentinel
}
