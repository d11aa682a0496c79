package workspace

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeDriverTech/wechat-blog/internal/fileutil"
)

// extractZip unpacks archivePath into destDir. Entries with absolute paths
// or ".." components are rejected, and total decompressed output is capped;
// uploaded archives are untrusted.
func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	var written int64
	for _, f := range r.File {
		target, err := safeEntryPath(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := fileutil.EnsureDir(target); err != nil {
				return err
			}
			continue
		}

		if err := fileutil.EnsureDir(filepath.Dir(target)); err != nil {
			return err
		}

		n, err := extractEntry(f, target, maxExtractedBytes-written)
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}

// safeEntryPath resolves an archive entry name under destDir, rejecting
// anything that would land outside it.
func safeEntryPath(destDir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnsafeZipEntry, name)
	}
	target := filepath.Join(destDir, filepath.Clean(name))
	if target != destDir && !strings.HasPrefix(target, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeZipEntry, name)
	}
	return target, nil
}

func extractEntry(f *zip.File, target string, budget int64) (int64, error) {
	if budget <= 0 {
		return 0, ErrArchiveTooLarge
	}

	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("opening zip entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) // #nosec G304 -- path containment checked above
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", target, err)
	}

	// LimitReader with one spare byte detects budget overrun
	n, err := io.Copy(out, io.LimitReader(rc, budget+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("extracting %q: %w", f.Name, err)
	}
	if n > budget {
		return n, ErrArchiveTooLarge
	}
	return n, nil
}
