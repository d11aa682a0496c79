package templates

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

// Loader defines the contract for loading a fragment by name.
// Implementations may load from embedded assets, filesystem, S3, etc.
type Loader interface {
	// Load returns the raw text of the named fragment (without .html extension).
	// Returns ErrTemplateMissing if the fragment doesn't exist.
	// Returns ErrInvalidTemplateName if the name contains invalid characters.
	Load(name string) (string, error)
}

//go:embed fragments/*.html
var fragments embed.FS

// EmbeddedLoader loads fragments from the compiled-in default set.
// Implements Loader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// Load reads a fragment from the embedded filesystem by name.
func (e *EmbeddedLoader) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	content, err := fragments.ReadFile("fragments/" + name + ".html")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateMissing, name)
	}

	return string(content), nil
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)

// DirLoader loads fragments from a user-supplied template directory.
// Implements Loader interface.
type DirLoader struct {
	dir string
}

// NewDirLoader creates a DirLoader for the given directory.
// Returns ErrTemplateDirMissing if the path is not a valid directory;
// this is the fatal startup class and should abort the whole run.
func NewDirLoader(dir string) (*DirLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrTemplateDirMissing)
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateDirMissing, err)
	}

	// Resolve symlinks so later reads see a stable base path
	realPath, err := filepath.EvalSymlinks(absPath)
	if err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateDirMissing, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrTemplateDirMissing, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrTemplateDirMissing, absPath)
	}

	return &DirLoader{dir: absPath}, nil
}

// Dir returns the resolved absolute template directory.
func (d *DirLoader) Dir() string {
	return d.dir
}

// Load reads a fragment file from the template directory by name.
func (d *DirLoader) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(d.dir, name+".html")
	content, err := os.ReadFile(path) // #nosec G304 -- name validated above
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q (%s)", ErrTemplateMissing, name, path)
		}
		return "", fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}

	return string(content), nil
}

// Compile-time interface check.
var _ Loader = (*DirLoader)(nil)
