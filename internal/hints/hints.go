// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/CodeDriverTech/wechat-blog/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForTemplateDir returns hints for template directory errors.
func ForTemplateDir(dir string) string {
	if dir == "" {
		return format("pass -t /path/to/fragments or rely on the embedded set")
	}
	return format("check that " + dir + " exists and contains the fragment .html files")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/wechat-blog/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/wechat-blog) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/wechat-blog") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForRemoteUnreachable returns hints for submission endpoint failures.
func ForRemoteUnreachable(baseURL string) string {
	var hints []string
	if baseURL == "" {
		hints = append(hints, "set remote.base_url in the config or pass --base-url")
	} else {
		hints = append(hints, "check that "+baseURL+" is reachable (try: wechat-blog doctor)")
	}
	if os.Getenv("HTTPS_PROXY") == "" && os.Getenv("https_proxy") == "" {
		hints = append(hints, "behind a proxy, set HTTPS_PROXY")
	}
	return formatHints(hints)
}

// ForUnauthorized returns hints for rejected API tokens.
func ForUnauthorized() string {
	return format("run wechat-blog auth login to store a fresh token")
}

// ForKeyring returns hints for keyring backend errors.
// Headless machines have no desktop secret service; suggest the file backend.
func ForKeyring() string {
	var hints []string
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" || IsInContainer() {
		hints = append(hints, "set WECHAT_BLOG_KEYRING_BACKEND=file on headless machines")
	}
	hints = append(hints, "or pass the token via WECHAT_BLOG_TOKEN")
	return formatHints(hints)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForSMTPIncomplete returns hints for partially configured mail notification.
func ForSMTPIncomplete() string {
	return format("fill smtp.host, smtp.port, smtp.from, and smtp.to to enable notifications")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
