package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// commands lists the recognized subcommands.
var commands = []string{"convert", "submit", "serve", "auth", "doctor", "completion", "version", "help"}

// isCommand reports whether name is a known subcommand. Case sensitive.
func isCommand(name string) bool {
	for _, c := range commands {
		if name == c {
			return true
		}
	}
	return false
}

// looksLikeMarkdown reports whether the argument is a markdown file path,
// which lets `wechat-blog post.md` work without the convert keyword.
func looksLikeMarkdown(arg string) bool {
	return strings.HasSuffix(arg, ".md") || strings.HasSuffix(arg, ".markdown")
}

// runMain dispatches to the subcommand and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	warnUnknownEnvVars(env.Stderr)

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) {
		if looksLikeMarkdown(cmd) {
			cmd, rest = "convert", args[1:]
		} else {
			fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
			printUsage(env.Stderr)
			return ExitUsage
		}
	}

	ctx, stop := notifyContext(env.Context())
	defer stop()

	var err error
	switch cmd {
	case "convert":
		err = runConvertCmd(ctx, rest, env)
	case "submit":
		err = runSubmitCmd(ctx, rest, env)
	case "serve":
		err = runServeCmd(ctx, rest, env)
	case "auth":
		err = runAuthCmd(rest, env)
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "wechat-blog %s\n", Version)
		return ExitSuccess
	case "help":
		runHelp(rest, env)
		return ExitSuccess
	}

	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
