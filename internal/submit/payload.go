// Package submit packages a processed workspace into a zip payload and
// delivers it to the blog endpoint over HTTPS.
package submit

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/CodeDriverTech/wechat-blog/internal/fileutil"
	"github.com/CodeDriverTech/wechat-blog/internal/workspace"
)

// ErrEmptyPayload means nothing converted survived to be packaged.
var ErrEmptyPayload = errors.New("payload would be empty")

// Manifest describes one submission; it travels as a JSON form field next
// to the payload zip.
type Manifest struct {
	Folder           string         `json:"folder"`
	User             workspace.User `json:"user"`
	Timestamp        string         `json:"timestamp"`
	OriginalFileName string         `json:"original_file_name"`
	MDFiles          []string       `json:"md_files"`
	HTMLFiles        []string       `json:"html_files"`
}

// ManifestFrom builds the submission manifest for a processed workspace.
func ManifestFrom(res *workspace.Result, user workspace.User) Manifest {
	return Manifest{
		Folder:           res.Folder,
		User:             user,
		Timestamp:        res.Timestamp,
		OriginalFileName: res.OriginalFileName,
		MDFiles:          res.MDFiles,
		HTMLFiles:        res.HTMLFiles,
	}
}

// BuildPayload writes the submission zip for a processed workspace:
// every converted HTML file under out/, meta.json at the archive root,
// and the original upload under uploads/. Converted files that vanished
// since processing are skipped, not fatal. Entry order and timestamps are
// fixed so identical workspaces produce identical payloads.
func BuildPayload(res *workspace.Result, zipPath string) error {
	f, err := os.Create(zipPath) // #nosec G304 -- destination chosen by caller
	if err != nil {
		return fmt.Errorf("creating payload: %w", err)
	}

	w := zip.NewWriter(f)
	var added int

	for _, rel := range res.HTMLFiles {
		src := filepath.Join(res.WorkDir, rel)
		if !fileutil.FileExists(src) {
			continue
		}
		if err := addEntry(w, src, rel); err != nil {
			return closeBoth(w, f, err)
		}
		added++
	}

	if fileutil.FileExists(res.MetaPath) {
		if err := addEntry(w, res.MetaPath, "meta.json"); err != nil {
			return closeBoth(w, f, err)
		}
		added++
	}

	original := filepath.Join(res.WorkDir, "uploads", res.OriginalFileName)
	if fileutil.FileExists(original) {
		if err := addEntry(w, original, "uploads/"+res.OriginalFileName); err != nil {
			return closeBoth(w, f, err)
		}
		added++
	}

	if added == 0 {
		_ = closeBoth(w, f, nil)
		_ = os.Remove(zipPath)
		return ErrEmptyPayload
	}

	if err := w.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finishing payload: %w", err)
	}
	return f.Close()
}

// addEntry stores one file under the given archive name with a zeroed
// timestamp.
func addEntry(w *zip.Writer, src, name string) error {
	in, err := os.Open(src) // #nosec G304 -- paths come from our own work dir
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	ew, err := w.CreateHeader(&zip.FileHeader{
		Name:   filepath.ToSlash(name),
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := io.Copy(ew, in); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func closeBoth(w *zip.Writer, f *os.File, err error) error {
	_ = w.Close()
	_ = f.Close()
	return err
}
