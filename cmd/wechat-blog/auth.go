package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/CodeDriverTech/wechat-blog/internal/secrets"
)

// ErrEmptyToken is returned when login reads a blank token.
var ErrEmptyToken = errors.New("empty token")

// tokenStore is the subset of the secrets store auth needs.
type tokenStore interface {
	SetToken(token string) error
	GetToken() (string, error)
	DeleteToken() error
}

// openSecrets is swapped in tests to avoid touching the real keyring.
var openSecrets = func() (tokenStore, error) { return secrets.Open() }

// Compile-time interface implementation check.
var _ tokenStore = (*secrets.Store)(nil)

// runAuthCmd dispatches auth subcommands.
func runAuthCmd(args []string, env *Environment) error {
	if len(args) == 0 {
		printAuthUsage(env.Stderr)
		return fmt.Errorf("%w: auth needs a subcommand", ErrFlagParse)
	}

	switch args[0] {
	case "login":
		return runAuthLogin(env)
	case "status":
		return runAuthStatus(env)
	case "logout":
		return runAuthLogout(env)
	default:
		printAuthUsage(env.Stderr)
		return fmt.Errorf("%w: unknown auth subcommand %q", ErrFlagParse, args[0])
	}
}

// runAuthLogin prompts for a token and stores it in the keyring.
func runAuthLogin(env *Environment) error {
	token, err := readToken(env)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrEmptyToken
	}

	store, err := openSecrets()
	if err != nil {
		return err
	}
	if err := store.SetToken(token); err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, "token stored")
	return nil
}

// runAuthStatus reports where the effective token comes from, without
// printing the token itself.
func runAuthStatus(env *Environment) error {
	envCfg := loadEnvConfig()
	cfg, err := loadConfigFor("", envCfg)
	if err != nil {
		return err
	}

	if _, source := resolveToken("", envCfg, cfg); source != "none" {
		fmt.Fprintf(env.Stdout, "token configured (source: %s)\n", source)
		return nil
	}
	fmt.Fprintln(env.Stdout, "no token configured; run wechat-blog auth login")
	return nil
}

// runAuthLogout removes the stored token. Absence is not an error.
func runAuthLogout(env *Environment) error {
	store, err := openSecrets()
	if err != nil {
		return err
	}
	if err := store.DeleteToken(); err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, "token removed")
	return nil
}

// readToken prompts for the token. Terminal input is read without echo;
// piped input falls back to a plain line read.
func readToken(env *Environment) (string, error) {
	fmt.Fprint(env.Stderr, "API token: ")

	if f, ok := env.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(env.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(env.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
