// Package workspace turns one uploaded Markdown file or zip archive into a
// work directory of converted HTML plus a meta.json manifest, ready for
// packaging and submission.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CodeDriverTech/wechat-blog/internal/fileutil"
)

// Sentinel errors for workspace processing.
var (
	ErrUnsupportedUpload = errors.New("unsupported upload type (need .md or .zip)")
	ErrNoMarkdownFiles   = errors.New("no markdown files found in upload")
	ErrUnsafeZipEntry    = errors.New("zip entry escapes the extraction directory")
	ErrArchiveTooLarge   = errors.New("zip archive exceeds extraction limit")
)

// TimestampLayout names processed batches; it sorts lexically.
const TimestampLayout = "20060102_150405"

// maxExtractedBytes caps total decompressed zip output.
const maxExtractedBytes = 1 << 30 // 1 GiB

// Converter is the conversion dependency; *wechatblog.Service satisfies it.
type Converter interface {
	ConvertFile(inputPath, outputPath string) error
}

// User identifies the submitter for the manifest and folder name.
type User struct {
	WeChat string `json:"wechat"`
	Email  string `json:"email"`
}

// Result describes one processed upload. MDFiles and HTMLFiles are
// work-dir-relative paths, in discovery order.
type Result struct {
	WorkDir          string
	Folder           string
	Timestamp        string
	OriginalFileName string
	MDFiles          []string
	HTMLFiles        []string
	MetaPath         string
}

// Meta is the meta.json document stored with each processed batch.
type Meta struct {
	User             User     `json:"user"`
	Timestamp        string   `json:"timestamp"`
	OriginalFileName string   `json:"original_file_name"`
	MDFiles          []string `json:"md_files"`
	HTMLFiles        []string `json:"html_files"`
}

// Process builds a work directory from the upload at uploadPath, converts
// every discovered Markdown file, and writes meta.json. The caller owns the
// returned WorkDir and removes it when done.
func Process(conv Converter, uploadPath string, user User, now time.Time) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(uploadPath))
	if ext != ".md" && ext != ".zip" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedUpload, filepath.Base(uploadPath))
	}

	workDir, err := os.MkdirTemp("", "wxblog_")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}

	res, err := processInto(conv, workDir, uploadPath, user, now)
	if err != nil {
		_ = os.RemoveAll(workDir)
		return nil, err
	}
	return res, nil
}

func processInto(conv Converter, workDir, uploadPath string, user User, now time.Time) (*Result, error) {
	uploadsDir := filepath.Join(workDir, "uploads")
	outDir := filepath.Join(workDir, "out")
	for _, dir := range []string{uploadsDir, outDir} {
		if err := fileutil.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	originalName := fileutil.SafeFileName(filepath.Base(uploadPath))
	stored := filepath.Join(uploadsDir, originalName)
	if err := copyFile(uploadPath, stored); err != nil {
		return nil, fmt.Errorf("storing upload: %w", err)
	}

	if strings.EqualFold(filepath.Ext(originalName), ".zip") {
		if err := extractZip(stored, uploadsDir); err != nil {
			return nil, err
		}
	}

	mdFiles, err := discoverMarkdown(uploadsDir)
	if err != nil {
		return nil, err
	}
	if len(mdFiles) == 0 {
		return nil, ErrNoMarkdownFiles
	}

	timestamp := now.Format(TimestampLayout)
	res := &Result{
		WorkDir:          workDir,
		Folder:           timestamp + "_" + strings.ReplaceAll(user.Email, "@", "_"),
		Timestamp:        timestamp,
		OriginalFileName: originalName,
	}

	for _, md := range mdFiles {
		rel, err := filepath.Rel(workDir, md)
		if err != nil {
			return nil, fmt.Errorf("relativizing %s: %w", md, err)
		}

		stem := fileutil.SafeFileName(strings.TrimSuffix(filepath.Base(md), filepath.Ext(md)))
		outPath := filepath.Join(outDir, stem+".html")
		if err := conv.ConvertFile(md, outPath); err != nil {
			return nil, fmt.Errorf("converting %s: %w", rel, err)
		}

		outRel, err := filepath.Rel(workDir, outPath)
		if err != nil {
			return nil, fmt.Errorf("relativizing %s: %w", outPath, err)
		}
		res.MDFiles = append(res.MDFiles, filepath.ToSlash(rel))
		res.HTMLFiles = append(res.HTMLFiles, filepath.ToSlash(outRel))
	}

	metaPath, err := writeMeta(workDir, user, res)
	if err != nil {
		return nil, err
	}
	res.MetaPath = metaPath

	return res, nil
}

// discoverMarkdown walks uploads/ and returns *.md paths in walk order,
// skipping dot-directories and macOS resource-fork junk.
func discoverMarkdown(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "__MACOSX") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering markdown files: %w", err)
	}
	return files, nil
}

// writeMeta writes meta.json at the work dir root with unescaped UTF-8,
// matching how the stored manifests are consumed downstream.
func writeMeta(workDir string, user User, res *Result) (string, error) {
	meta := Meta{
		User:             user,
		Timestamp:        res.Timestamp,
		OriginalFileName: res.OriginalFileName,
		MDFiles:          res.MDFiles,
		HTMLFiles:        res.HTMLFiles,
	}

	path := filepath.Join(workDir, "meta.json")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) // #nosec G302,G304 -- manifest in our own work dir
	if err != nil {
		return "", fmt.Errorf("writing meta.json: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("encoding meta.json: %w", err)
	}
	return path, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- caller-provided upload path
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
