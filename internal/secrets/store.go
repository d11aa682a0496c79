// Package secrets stores the submission API token in the OS keyring.
// On headless Linux machines with no desktop secret service the file
// backend is used instead, under ~/.config/wechat-blog/keyring.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/99designs/keyring"
)

const (
	serviceName = "wechat-blog"
	tokenKey    = "api-token"

	// openTimeout bounds keyring.Open on desktop Linux, where a wedged
	// secret-service daemon can block the D-Bus call indefinitely.
	openTimeout = 5 * time.Second
)

// Sentinel errors for secret storage.
var (
	ErrTokenNotFound  = errors.New("no stored token")
	errKeyringTimeout = errors.New("keyring open timed out")
)

// EnvBackend selects the keyring backend explicitly
// (WECHAT_BLOG_KEYRING_BACKEND=file|auto).
const EnvBackend = "WECHAT_BLOG_KEYRING_BACKEND"

// keyringOpenFunc is swapped by tests to avoid touching real backends.
var keyringOpenFunc = keyring.Open

// Store wraps one opened keyring.
type Store struct {
	ring keyring.Keyring
}

// Open opens the keyring, selecting the backend per platform and
// environment.
func Open() (*Store, error) {
	backend := os.Getenv(EnvBackend)
	if backend == "" {
		backend = "auto"
	}
	dbusAddr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")

	cfg := keyring.Config{
		ServiceName:      serviceName,
		FilePasswordFunc: keyring.FixedStringPrompt(serviceName),
	}

	if backend == "file" || shouldForceFileBackend(runtime.GOOS, backend, dbusAddr) {
		dir, err := fileBackendDir()
		if err != nil {
			return nil, err
		}
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		cfg.FileDir = dir
	}

	var ring keyring.Keyring
	var err error
	if shouldUseKeyringTimeout(runtime.GOOS, backend, dbusAddr) {
		ring, err = openKeyringWithTimeout(cfg, openTimeout)
	} else {
		ring, err = keyringOpenFunc(cfg)
	}
	if err != nil {
		return nil, wrapKeyringError(err)
	}

	return &Store{ring: ring}, nil
}

// SetToken stores the API token.
func (s *Store) SetToken(token string) error {
	err := s.ring.Set(keyring.Item{
		Key:   tokenKey,
		Data:  []byte(token),
		Label: serviceName + " API token",
	})
	return wrapKeyringError(err)
}

// GetToken returns the stored API token.
func (s *Store) GetToken() (string, error) {
	item, err := s.ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrTokenNotFound
		}
		return "", wrapKeyringError(err)
	}
	return string(item.Data), nil
}

// DeleteToken removes the stored API token. Deleting an absent token is
// not an error.
func (s *Store) DeleteToken() error {
	err := s.ring.Remove(tokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return wrapKeyringError(err)
}

// shouldForceFileBackend reports whether to skip the desktop secret
// service entirely: Linux with auto backend selection and no session bus
// means there is no secret service to talk to.
func shouldForceFileBackend(goos, backend, dbusAddr string) bool {
	return goos == "linux" && backend == "auto" && dbusAddr == ""
}

// shouldUseKeyringTimeout reports whether keyring.Open needs a timeout
// guard: only the D-Bus path on Linux can hang.
func shouldUseKeyringTimeout(goos, backend, dbusAddr string) bool {
	return goos == "linux" && backend == "auto" && dbusAddr != ""
}

// openKeyringWithTimeout calls keyringOpenFunc with a deadline. The open
// goroutine is abandoned on timeout; it holds no resources worth waiting
// for.
func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	type result struct {
		ring keyring.Keyring
		err  error
	}
	done := make(chan result, 1)

	go func() {
		ring, err := keyringOpenFunc(cfg)
		done <- result{ring: ring, err: err}
	}()

	select {
	case r := <-done:
		return r.ring, r.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; the secret service may be wedged, set %s=file to bypass it",
			errKeyringTimeout, timeout, EnvBackend)
	}
}

// fileBackendDir returns the file backend directory, creating it.
func fileBackendDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir for file keyring: %w", err)
	}
	dir := filepath.Join(configDir, serviceName, "keyring")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating keyring dir: %w", err)
	}
	return dir, nil
}

// wrapKeyringError augments backend errors with recovery instructions.
func wrapKeyringError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errKeyringTimeout) {
		return err
	}
	return fmt.Errorf("keyring: %w (set %s=file to use the file backend, or %s to skip the keyring)",
		err, EnvBackend, "WECHAT_BLOG_TOKEN")
}
