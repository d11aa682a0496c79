package mailer

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

func completeConfig() Config {
	return Config{
		Host: "smtp.example.com",
		Port: 587,
		From: "bot@example.com",
		To:   "admin@example.com",
	}
}

func TestConfig_Complete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   bool
	}{
		{"all required fields", func(c *Config) {}, true},
		{"credentials optional", func(c *Config) { c.Username = ""; c.Password = "" }, true},
		{"missing host", func(c *Config) { c.Host = "" }, false},
		{"missing port", func(c *Config) { c.Port = 0 }, false},
		{"missing from", func(c *Config) { c.From = "" }, false},
		{"missing to", func(c *Config) { c.To = "" }, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := completeConfig()
			tt.mutate(&cfg)
			if got := cfg.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSend_IncompleteConfig(t *testing.T) {
	t.Parallel()

	m := New(Config{Host: "smtp.example.com"})
	if err := m.Send("subject", "body"); !errors.Is(err, ErrIncompleteConfig) {
		t.Errorf("Send() error = %v, want ErrIncompleteConfig", err)
	}
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	t.Run("headers and body", func(t *testing.T) {
		t.Parallel()
		cfg := completeConfig()
		cfg.ReplyTo = "noreply@example.com"
		msg := string(buildMessage(cfg, "New upload", "2 articles processed"))

		for _, want := range []string{
			"From: bot@example.com\r\n",
			"To: admin@example.com\r\n",
			"Reply-To: noreply@example.com\r\n",
			"Subject: New upload\r\n",
			"Content-Type: text/plain; charset=utf-8\r\n",
		} {
			if !strings.Contains(msg, want) {
				t.Errorf("message missing %q:\n%s", want, msg)
			}
		}

		headerEnd := strings.Index(msg, "\r\n\r\n")
		if headerEnd < 0 {
			t.Fatal("no blank line between headers and body")
		}
		if body := msg[headerEnd+4:]; body != "2 articles processed" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("reply-to omitted when empty", func(t *testing.T) {
		t.Parallel()
		msg := string(buildMessage(completeConfig(), "s", "b"))
		if strings.Contains(msg, "Reply-To:") {
			t.Error("empty Reply-To should not emit a header")
		}
	})

	t.Run("utf-8 subject q-encoded", func(t *testing.T) {
		t.Parallel()
		msg := string(buildMessage(completeConfig(), "新投稿：第3期", "body"))
		if !strings.Contains(msg, "Subject: =?utf-8?q?") {
			t.Errorf("non-ASCII subject should be Q-encoded:\n%s", msg)
		}
		if strings.Contains(msg, "Subject: 新投稿") {
			t.Error("raw UTF-8 subject must not appear unencoded")
		}
	})

	t.Run("ascii subject left plain", func(t *testing.T) {
		t.Parallel()
		msg := string(buildMessage(completeConfig(), "plain subject", "body"))
		if !strings.Contains(msg, "Subject: plain subject\r\n") {
			t.Errorf("ASCII subject should stay readable:\n%s", msg)
		}
	})
}

func TestSendMode_Selection(t *testing.T) {
	t.Parallel()

	// Port 465 must try implicit TLS first; everything else STARTTLS first.
	// The dial targets are unreachable, so Send exercises both modes and
	// reports the primary mode's failure.
	cfg := completeConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1 // nothing listens here

	err := New(cfg).Send("s", "b")
	if err == nil {
		t.Fatal("Send() to a dead port should fail")
	}
	if !strings.Contains(err.Error(), "smtp dial") {
		t.Errorf("port 587-style failure should come from the STARTTLS path, got: %v", err)
	}

	cfg.Port = 465
	// Rebuild: implicit TLS path reports a tls dial failure
	err = New(cfg).Send("s", "b")
	if err == nil {
		t.Fatal("Send() to a dead port should fail")
	}
	if !strings.Contains(err.Error(), "tls dial") {
		t.Errorf("port 465 failure should come from the implicit TLS path, got: %v", err)
	}
}

// fakeSMTPServer speaks just enough plaintext SMTP to reach the envelope,
// then rejects MAIL FROM. It counts accepted connections.
func fakeSMTPServer(t *testing.T) (host string, port int, conns *int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	var count int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			atomic.AddInt32(&count, 1)
			go func(c net.Conn) {
				defer func() { _ = c.Close() }()
				fmt.Fprintf(c, "220 fake ready\r\n")
				sc := bufio.NewScanner(c)
				for sc.Scan() {
					switch cmd := strings.ToUpper(sc.Text()); {
					case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
						fmt.Fprintf(c, "250 fake\r\n")
					case strings.HasPrefix(cmd, "MAIL"):
						fmt.Fprintf(c, "550 rejected\r\n")
					case strings.HasPrefix(cmd, "QUIT"):
						fmt.Fprintf(c, "221 bye\r\n")
						return
					default:
						fmt.Fprintf(c, "250 ok\r\n")
					}
				}
			}(conn)
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, err = strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}
	return host, port, &count
}

func TestSend_NoModeFallbackAfterConnect(t *testing.T) {
	t.Parallel()

	// An envelope rejection happens after the session is up; retrying the
	// other TLS mode would just open a doomed second connection.
	host, port, conns := fakeSMTPServer(t)
	cfg := completeConfig()
	cfg.Host = host
	cfg.Port = port

	err := New(cfg).Send("s", "b")
	if err == nil {
		t.Fatal("Send() with a rejected envelope should fail")
	}
	if !strings.Contains(err.Error(), "mail from") {
		t.Errorf("Send() error = %v, want the envelope rejection", err)
	}
	if n := atomic.LoadInt32(conns); n != 1 {
		t.Errorf("connections = %d, want 1 (no second TLS mode after the session was established)", n)
	}
}
