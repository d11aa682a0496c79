package main

import (
	"fmt"
	"io"
	"strings"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// commandFlagSpecs maps each subcommand to its long flags, used by both
// completion generators.
var commandFlagSpecs = map[string][]string{
	"convert":    {"--output", "--templates", "--config", "--workers", "--quiet", "--verbose"},
	"submit":     {"--wechat", "--email", "--base-url", "--token", "--query", "--dry-run", "--keep", "--config", "--quiet", "--verbose"},
	"serve":      {"--addr", "--workers", "--config"},
	"auth":       {},
	"doctor":     {"--json", "--config"},
	"completion": {},
	"version":    {},
	"help":       {},
}

// GenerateCompletion writes a shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wechat-blog completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash    Bash completion script")
	fmt.Fprintln(w, "  zsh     Zsh completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(wechat-blog completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(wechat-blog completion zsh)\"")
}

// generateBash writes the bash completion function.
func generateBash(w io.Writer) error {
	fmt.Fprintln(w, "# bash completion for wechat-blog")
	fmt.Fprintln(w, "_wechat_blog() {")
	fmt.Fprintln(w, `    local cur prev commands`)
	fmt.Fprintln(w, `    COMPREPLY=()`)
	fmt.Fprintln(w, `    cur="${COMP_WORDS[COMP_CWORD]}"`)
	fmt.Fprintln(w, `    prev="${COMP_WORDS[COMP_CWORD-1]}"`)
	fmt.Fprintf(w, "    commands=%q\n", commandList())
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    if [[ ${COMP_CWORD} -eq 1 ]]; then`)
	fmt.Fprintln(w, `        COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )`)
	fmt.Fprintln(w, `        return 0`)
	fmt.Fprintln(w, `    fi`)
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    case "${COMP_WORDS[1]}" in`)
	for _, cmd := range commands {
		flags := commandFlagSpecs[cmd]
		if len(flags) == 0 {
			continue
		}
		fmt.Fprintf(w, "        %s)\n", cmd)
		fmt.Fprintf(w, "            COMPREPLY=( $(compgen -W %q -- \"${cur}\") $(compgen -f -- \"${cur}\") )\n", joinFlags(flags))
		fmt.Fprintln(w, `            ;;`)
	}
	fmt.Fprintln(w, `        auth)`)
	fmt.Fprintln(w, `            COMPREPLY=( $(compgen -W "login status logout" -- "${cur}") )`)
	fmt.Fprintln(w, `            ;;`)
	fmt.Fprintln(w, `        completion)`)
	fmt.Fprintln(w, `            COMPREPLY=( $(compgen -W "bash zsh" -- "${cur}") )`)
	fmt.Fprintln(w, `            ;;`)
	fmt.Fprintln(w, `        help)`)
	fmt.Fprintln(w, `            COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )`)
	fmt.Fprintln(w, `            ;;`)
	fmt.Fprintln(w, `    esac`)
	fmt.Fprintln(w, `    return 0`)
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "complete -F _wechat_blog wechat-blog")
	return nil
}

// generateZsh writes the zsh completion function.
func generateZsh(w io.Writer) error {
	fmt.Fprintln(w, "#compdef wechat-blog")
	fmt.Fprintln(w, "# zsh completion for wechat-blog")
	fmt.Fprintln(w, "_wechat_blog() {")
	fmt.Fprintln(w, `    local -a commands`)
	fmt.Fprintln(w, `    commands=(`)
	fmt.Fprintln(w, `        'convert:Convert markdown files to WeChat article HTML'`)
	fmt.Fprintln(w, `        'submit:Convert an upload and send it to the submission endpoint'`)
	fmt.Fprintln(w, `        'serve:Run the upload server'`)
	fmt.Fprintln(w, `        'auth:Manage the stored API token'`)
	fmt.Fprintln(w, `        'doctor:Diagnose configuration and connectivity'`)
	fmt.Fprintln(w, `        'completion:Generate shell completion script'`)
	fmt.Fprintln(w, `        'version:Show version information'`)
	fmt.Fprintln(w, `        'help:Show help for a command'`)
	fmt.Fprintln(w, `    )`)
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    if (( CURRENT == 2 )); then`)
	fmt.Fprintln(w, `        _describe 'command' commands`)
	fmt.Fprintln(w, `        return`)
	fmt.Fprintln(w, `    fi`)
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    case "${words[2]}" in`)
	for _, cmd := range commands {
		flags := commandFlagSpecs[cmd]
		if len(flags) == 0 {
			continue
		}
		fmt.Fprintf(w, "        %s)\n", cmd)
		fmt.Fprintf(w, "            _arguments %s '*:file:_files'\n", zshFlagArgs(flags))
		fmt.Fprintln(w, `            ;;`)
	}
	fmt.Fprintln(w, `        auth)`)
	fmt.Fprintln(w, `            _values 'subcommand' login status logout`)
	fmt.Fprintln(w, `            ;;`)
	fmt.Fprintln(w, `        completion)`)
	fmt.Fprintln(w, `            _values 'shell' bash zsh`)
	fmt.Fprintln(w, `            ;;`)
	fmt.Fprintln(w, `    esac`)
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "_wechat_blog")
	return nil
}

func commandList() string {
	return strings.Join(commands, " ")
}

func joinFlags(flags []string) string {
	return strings.Join(flags, " ")
}

func zshFlagArgs(flags []string) string {
	quoted := make([]string, len(flags))
	for i, f := range flags {
		quoted[i] = "'" + f + "'"
	}
	return strings.Join(quoted, " ")
}
