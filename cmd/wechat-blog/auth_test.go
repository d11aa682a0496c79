package main

// Notes:
// - fakeStore replaces the keyring via the openSecrets var, so these
//   tests are not parallel.

import (
	"errors"
	"strings"
	"testing"
)

type fakeStore struct {
	token   string
	setErr  error
	deleted bool
}

func (f *fakeStore) SetToken(token string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.token = token
	return nil
}

func (f *fakeStore) GetToken() (string, error) { return f.token, nil }

func (f *fakeStore) DeleteToken() error {
	f.deleted = true
	f.token = ""
	return nil
}

func withFakeStore(t *testing.T, store *fakeStore) {
	t.Helper()
	restore := openSecrets
	openSecrets = func() (tokenStore, error) { return store, nil }
	t.Cleanup(func() { openSecrets = restore })
}

func TestRunAuthLogin(t *testing.T) {
	t.Run("piped token is stored", func(t *testing.T) {
		store := &fakeStore{}
		withFakeStore(t, store)

		env, stdout, _ := testEnv()
		env.Stdin = strings.NewReader("tok-abc\n")

		if err := runAuthLogin(env); err != nil {
			t.Fatalf("runAuthLogin() error = %v", err)
		}
		if store.token != "tok-abc" {
			t.Errorf("stored token = %q", store.token)
		}
		if !strings.Contains(stdout.String(), "token stored") {
			t.Errorf("stdout = %q", stdout.String())
		}
	})

	t.Run("trailing whitespace trimmed", func(t *testing.T) {
		store := &fakeStore{}
		withFakeStore(t, store)

		env, _, _ := testEnv()
		env.Stdin = strings.NewReader("  tok-abc  \n")

		if err := runAuthLogin(env); err != nil {
			t.Fatalf("runAuthLogin() error = %v", err)
		}
		if store.token != "tok-abc" {
			t.Errorf("stored token = %q", store.token)
		}
	})

	t.Run("empty token rejected", func(t *testing.T) {
		withFakeStore(t, &fakeStore{})

		env, _, _ := testEnv()
		env.Stdin = strings.NewReader("\n")

		if err := runAuthLogin(env); !errors.Is(err, ErrEmptyToken) {
			t.Errorf("runAuthLogin() error = %v, want ErrEmptyToken", err)
		}
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		withFakeStore(t, &fakeStore{setErr: errors.New("locked")})

		env, _, _ := testEnv()
		env.Stdin = strings.NewReader("tok\n")

		if err := runAuthLogin(env); err == nil || !strings.Contains(err.Error(), "locked") {
			t.Errorf("runAuthLogin() error = %v, want the store failure", err)
		}
	})
}

func TestRunAuthLogout(t *testing.T) {
	store := &fakeStore{token: "tok"}
	withFakeStore(t, store)

	env, stdout, _ := testEnv()
	if err := runAuthLogout(env); err != nil {
		t.Fatalf("runAuthLogout() error = %v", err)
	}
	if !store.deleted {
		t.Error("token should be deleted")
	}
	if !strings.Contains(stdout.String(), "token removed") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunAuthStatus(t *testing.T) {
	restore := keyringToken
	t.Cleanup(func() { keyringToken = restore })

	t.Run("keyring token reported without revealing it", func(t *testing.T) {
		keyringToken = func() (string, error) { return "sekrit", nil }

		env, stdout, _ := testEnv()
		if err := runAuthStatus(env); err != nil {
			t.Fatalf("runAuthStatus() error = %v", err)
		}
		if !strings.Contains(stdout.String(), "keyring") {
			t.Errorf("stdout = %q, want the keyring source", stdout.String())
		}
		if strings.Contains(stdout.String(), "sekrit") {
			t.Error("status must never print the token")
		}
	})

	t.Run("absent token suggests login", func(t *testing.T) {
		keyringToken = func() (string, error) { return "", nil }

		env, stdout, _ := testEnv()
		if err := runAuthStatus(env); err != nil {
			t.Fatalf("runAuthStatus() error = %v", err)
		}
		if !strings.Contains(stdout.String(), "auth login") {
			t.Errorf("stdout = %q", stdout.String())
		}
	})
}

func TestRunAuthCmd_Dispatch(t *testing.T) {
	t.Run("missing subcommand", func(t *testing.T) {
		env, _, stderr := testEnv()
		if err := runAuthCmd(nil, env); !errors.Is(err, ErrFlagParse) {
			t.Errorf("runAuthCmd() error = %v, want ErrFlagParse", err)
		}
		if !strings.Contains(stderr.String(), "Usage: wechat-blog auth") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("unknown subcommand", func(t *testing.T) {
		env, _, _ := testEnv()
		if err := runAuthCmd([]string{"frobnicate"}, env); !errors.Is(err, ErrFlagParse) {
			t.Errorf("runAuthCmd() error = %v, want ErrFlagParse", err)
		}
	})
}
