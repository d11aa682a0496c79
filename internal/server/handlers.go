package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeDriverTech/wechat-blog/internal/workspace"
)

// uploadForm is the page served at /. It posts straight to the API so
// contributors without the CLI can still submit articles.
const uploadForm = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>投稿上传</title>
<style>
body { font-family: sans-serif; max-width: 32rem; margin: 3rem auto; }
label { display: block; margin-top: 1rem; }
input { width: 100%; padding: 0.4rem; box-sizing: border-box; }
button { margin-top: 1.5rem; padding: 0.5rem 2rem; }
</style>
</head>
<body>
<h1>投稿上传</h1>
<p>上传 Markdown 文件（.md）或包含图片的压缩包（.zip）。</p>
<form method="post" action="/api/uploads" enctype="multipart/form-data">
<label>微信号 <input type="text" name="wechat" required></label>
<label>邮箱 <input type="email" name="email" required></label>
<label>文件 <input type="file" name="file" accept=".md,.zip" required></label>
<button type="submit">提交</button>
</form>
</body>
</html>
`

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/uploads", s.handleUpload)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, uploadForm)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload accepts a multipart form, stores the file, and queues a
// job. The response is 202 because conversion happens asynchronously.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := int64(s.opts.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	// Small memory threshold; large bodies spill to disk
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d MB", s.opts.MaxUploadMB))
			return
		}
		writeJSONError(w, http.StatusBadRequest, "malformed multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	user := workspace.User{
		WeChat: strings.TrimSpace(r.FormValue("wechat")),
		Email:  strings.TrimSpace(r.FormValue("email")),
	}
	if user.WeChat == "" || user.Email == "" {
		writeJSONError(w, http.StatusBadRequest, "wechat and email are required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".md" && ext != ".zip" {
		writeJSONError(w, http.StatusBadRequest, "only .md and .zip uploads are accepted")
		return
	}

	uploadPath, err := s.storeUpload(file, header.Filename)
	if err != nil {
		s.opts.Logger.Printf("storing upload %q: %v", header.Filename, err)
		writeJSONError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	j := job{id: newJobID(), uploadPath: uploadPath, user: user}
	if !s.enqueue(j) {
		_ = os.RemoveAll(filepath.Dir(uploadPath))
		writeJSONError(w, http.StatusServiceUnavailable, "queue full, retry later")
		return
	}

	s.opts.Logger.Printf("job %s: queued %q from %s", j.id, header.Filename, user.Email)
	writeJSON(w, http.StatusAccepted, map[string]string{"id": j.id, "status": "queued"})
}

// storeUpload spools the file to a temp path, keeping the original name
// so the workspace records it in the manifest.
func (s *Server) storeUpload(src io.Reader, originalName string) (string, error) {
	dir, err := os.MkdirTemp("", "wxblog_upload_")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(originalName))
	dst, err := os.Create(path) // #nosec G304 -- path under a fresh temp dir
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.RemoveAll(dir)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
