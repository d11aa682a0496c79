// Package server exposes the upload HTTP service: a browser form, an
// upload API, and a fixed worker pool that converts, submits, and
// notifies for each accepted upload.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/CodeDriverTech/wechat-blog/internal/submit"
	"github.com/CodeDriverTech/wechat-blog/internal/workspace"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8000"

	// DefaultMaxUploadMB caps the request body; zip bundles with images
	// get large.
	DefaultMaxUploadMB = 200

	// DefaultWorkers is the processing pool size.
	DefaultWorkers = 4

	// queueSize bounds accepted-but-unprocessed uploads.
	queueSize = 64

	shutdownTimeout = 10 * time.Second
)

// Submitter delivers a processed workspace; *submit.Client satisfies it.
type Submitter interface {
	Submit(ctx context.Context, manifest submit.Manifest, payloadPath string) (*submit.Receipt, error)
}

// Notifier sends the admin notification; *mailer.Mailer satisfies it.
type Notifier interface {
	Send(subject, body string) error
}

// Options configures a Server. Converter is required; Submitter and
// Notifier are optional stages that are skipped when nil.
type Options struct {
	Addr        string
	MaxUploadMB int
	Workers     int
	Logger      *log.Logger
	Converter   workspace.Converter
	Submitter   Submitter
	Notifier    Notifier
}

// job is one queued upload.
type job struct {
	id         string
	uploadPath string
	user       workspace.User
}

// Server is the upload service.
type Server struct {
	opts Options
	jobs chan job
	wg   sync.WaitGroup
	httd *http.Server

	// mu orders enqueue against closeQueue: a handler may still be inside
	// Shutdown's grace window when the queue closes.
	mu     sync.Mutex
	closed bool
}

// New creates a Server, filling zero options with defaults.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.MaxUploadMB == 0 {
		opts.MaxUploadMB = DefaultMaxUploadMB
	}
	opts.Workers = ResolveWorkers(opts.Workers)
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	s := &Server{
		opts: opts,
		jobs: make(chan job, queueSize),
	}
	s.httd = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ResolveWorkers clamps a configured worker count to something sane.
// Zero means the default; anything above NumCPU*2 is wasted on this
// IO-light pipeline.
func ResolveWorkers(n int) int {
	if n <= 0 {
		return DefaultWorkers
	}
	if limit := runtime.NumCPU() * 2; n > limit {
		return limit
	}
	return n
}

// Run serves until ctx is canceled, then drains gracefully: the listener
// closes first, the queue is closed, and started jobs finish.
func (s *Server) Run(ctx context.Context) error {
	s.startWorkers(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.opts.Logger.Printf("listening on %s (%d workers, %d MB upload cap)",
		s.opts.Addr, s.opts.Workers, s.opts.MaxUploadMB)

	select {
	case err := <-errCh:
		s.closeQueue()
		s.wg.Wait()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.httd.Shutdown(shutdownCtx)

	s.closeQueue()
	s.wg.Wait()
	return err
}

// closeQueue closes the job queue exactly once. Handlers that lose the
// race see a full queue instead of a send on a closed channel.
func (s *Server) closeQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.jobs)
}

// startWorkers launches the fixed pool.
func (s *Server) startWorkers(ctx context.Context) {
	for i := 0; i < s.opts.Workers; i++ {
		s.wg.Add(1)
		go func(worker int) {
			defer s.wg.Done()
			for j := range s.jobs {
				s.runJob(ctx, worker, j)
			}
		}(i)
	}
}

// runJob drives one upload through the pipeline and logs the outcome.
func (s *Server) runJob(ctx context.Context, worker int, j job) {
	start := time.Now()
	err := s.processJob(ctx, j)
	if err != nil {
		s.opts.Logger.Printf("worker %d: job %s failed after %s: %v", worker, j.id, time.Since(start).Round(time.Millisecond), err)
		return
	}
	s.opts.Logger.Printf("worker %d: job %s done in %s", worker, j.id, time.Since(start).Round(time.Millisecond))
}

// processJob converts, optionally submits, and optionally notifies.
func (s *Server) processJob(ctx context.Context, j job) error {
	// The upload sits alone in its spool dir (see storeUpload)
	defer func() { _ = os.RemoveAll(filepath.Dir(j.uploadPath)) }()

	res, err := workspace.Process(s.opts.Converter, j.uploadPath, j.user, time.Now())
	if err != nil {
		return fmt.Errorf("processing: %w", err)
	}
	defer func() { _ = os.RemoveAll(res.WorkDir) }()

	receiptLine := "not submitted (no remote configured)"
	if s.opts.Submitter != nil {
		payloadPath := res.WorkDir + "/payload.zip"
		if err := submit.BuildPayload(res, payloadPath); err != nil {
			return fmt.Errorf("packaging: %w", err)
		}
		receipt, err := s.opts.Submitter.Submit(ctx, submit.ManifestFrom(res, j.user), payloadPath)
		if err != nil {
			return fmt.Errorf("submitting: %w", err)
		}
		if receipt.Stored {
			receiptLine = "stored as " + receipt.Folder
		} else {
			receiptLine = "accepted, not stored"
		}
	}

	if s.opts.Notifier != nil {
		subject := fmt.Sprintf("New upload from %s (%d articles)", j.user.Email, len(res.HTMLFiles))
		body := fmt.Sprintf("User: %s <%s>\nUpload: %s\nConverted: %d file(s)\nResult: %s\n",
			j.user.WeChat, j.user.Email, res.OriginalFileName, len(res.HTMLFiles), receiptLine)
		if err := s.opts.Notifier.Send(subject, body); err != nil {
			// Notification is best-effort; the upload already succeeded
			s.opts.Logger.Printf("job %s: notification failed: %v", j.id, err)
		}
	}

	return nil
}

// enqueue tries to queue a job without blocking the handler.
func (s *Server) enqueue(j job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.jobs <- j:
		return true
	default:
		return false
	}
}

// newJobID returns a short random identifier.
func newJobID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("t%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
