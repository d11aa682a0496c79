package main

// Notes:
// - resolveToken swaps the keyringToken var, so those tests are not parallel.
// - End-to-end submit tests run against httptest servers.

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CodeDriverTech/wechat-blog/internal/config"
)

// ---------------------------------------------------------------------------
// TestResolveToken - Token source priority
// ---------------------------------------------------------------------------

func TestResolveToken(t *testing.T) {
	restore := keyringToken
	defer func() { keyringToken = restore }()

	cfgWithToken := config.DefaultConfig()
	cfgWithToken.Remote.Token = "from-config"

	tests := []struct {
		name       string
		flagToken  string
		envToken   string
		keyring    string
		keyringErr error
		cfg        *config.Config
		wantToken  string
		wantSource string
	}{
		{
			name:       "flag wins over everything",
			flagToken:  "from-flag",
			envToken:   "from-env",
			keyring:    "from-keyring",
			cfg:        cfgWithToken,
			wantToken:  "from-flag",
			wantSource: "flag",
		},
		{
			name:       "env wins over keyring and config",
			envToken:   "from-env",
			keyring:    "from-keyring",
			cfg:        cfgWithToken,
			wantToken:  "from-env",
			wantSource: "environment",
		},
		{
			name:       "keyring wins over config",
			keyring:    "from-keyring",
			cfg:        cfgWithToken,
			wantToken:  "from-keyring",
			wantSource: "keyring",
		},
		{
			name:       "config as last resort",
			cfg:        cfgWithToken,
			wantToken:  "from-config",
			wantSource: "config",
		},
		{
			name:       "keyring failure falls through to config",
			keyringErr: errors.New("no dbus"),
			cfg:        cfgWithToken,
			wantToken:  "from-config",
			wantSource: "config",
		},
		{
			name:       "nothing configured",
			cfg:        config.DefaultConfig(),
			wantToken:  "",
			wantSource: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyringToken = func() (string, error) { return tt.keyring, tt.keyringErr }

			token, source := resolveToken(tt.flagToken, &envConfig{Token: tt.envToken}, tt.cfg)
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Submit - End-to-end submission
// ---------------------------------------------------------------------------

func TestRunMain_Submit(t *testing.T) {
	t.Parallel()

	t.Run("dry run prints the manifest and skips the network", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, t.TempDir(), "post.md", "# Hi\n\ntext")

		env, stdout, stderr := testEnv()
		code := runMain([]string{
			"wechat-blog", "submit", input,
			"--wechat", "tester", "--email", "tester@example.com",
			"--dry-run",
		}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d\nstderr: %s", code, stderr.String())
		}
		for _, want := range []string{`"original_file_name": "post.md"`, `"tester@example.com"`} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("manifest output missing %s:\n%s", want, stdout.String())
			}
		}
	})

	t.Run("stored submission prints the receipt", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/submissions" {
				http.NotFound(w, r)
				return
			}
			if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
				t.Errorf("Authorization = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"folder":"20260314_x"}`))
		}))
		defer srv.Close()

		input := writeMarkdown(t, t.TempDir(), "post.md", "# Hi")

		env, stdout, stderr := testEnv()
		code := runMain([]string{
			"wechat-blog", "submit", input,
			"--wechat", "tester", "--email", "tester@example.com",
			"--base-url", srv.URL, "--token", "tok123",
		}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d\nstderr: %s", code, stderr.String())
		}
		for _, want := range []string{`"stored": true`, `"20260314_x"`} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("receipt output missing %s:\n%s", want, stdout.String())
			}
		}
	})

	t.Run("query filters the receipt", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"folder":"abc"}`))
		}))
		defer srv.Close()

		input := writeMarkdown(t, t.TempDir(), "post.md", "text")

		env, stdout, _ := testEnv()
		code := runMain([]string{
			"wechat-blog", "submit", input,
			"--wechat", "w", "--email", "e@x.com",
			"--base-url", srv.URL, "--token", "t",
			"--query", ".folder",
		}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d", code)
		}
		if got := strings.TrimSpace(stdout.String()); got != `"abc"` {
			t.Errorf("filtered output = %q, want %q", got, `"abc"`)
		}
	})

	t.Run("rejected token exits with ExitRemote and a hint", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad token", http.StatusUnauthorized)
		}))
		defer srv.Close()

		input := writeMarkdown(t, t.TempDir(), "post.md", "text")

		env, _, stderr := testEnv()
		code := runMain([]string{
			"wechat-blog", "submit", input,
			"--wechat", "w", "--email", "e@x.com",
			"--base-url", srv.URL, "--token", "stale",
		}, env)
		if code != ExitRemote {
			t.Fatalf("exit = %d, want %d", code, ExitRemote)
		}
		if !strings.Contains(stderr.String(), "auth login") {
			t.Errorf("stderr should hint at auth login: %q", stderr.String())
		}
	})

	t.Run("missing user fields are a usage error", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, t.TempDir(), "post.md", "text")

		env, _, _ := testEnv()
		code := runMain([]string{"wechat-blog", "submit", input, "--dry-run"}, env)
		if code != ExitUsage {
			t.Errorf("exit = %d, want %d", code, ExitUsage)
		}
	})

	t.Run("no endpoint configured is a usage error", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, t.TempDir(), "post.md", "text")

		env, _, stderr := testEnv()
		code := runMain([]string{
			"wechat-blog", "submit", input,
			"--wechat", "w", "--email", "e@x.com",
			"--token", "t",
		}, env)
		if code != ExitUsage {
			t.Fatalf("exit = %d, want %d\nstderr: %s", code, ExitUsage, stderr.String())
		}
		if !strings.Contains(stderr.String(), "base_url") {
			t.Errorf("stderr should point at remote.base_url: %q", stderr.String())
		}
	})
}
