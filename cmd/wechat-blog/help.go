package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wechat-blog <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert markdown files to WeChat article HTML")
	fmt.Fprintln(w, "  submit      Convert an upload and send it to the submission endpoint")
	fmt.Fprintln(w, "  serve       Run the upload server")
	fmt.Fprintln(w, "  auth        Manage the stored API token")
	fmt.Fprintln(w, "  doctor      Diagnose configuration and connectivity")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'wechat-blog help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wechat-blog convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to WeChat article HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (default: next to input)")
	fmt.Fprintln(w, "  -t, --templates <dir>     Fragment template directory (default: embedded set)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}

// printSubmitUsage prints usage for the submit command.
func printSubmitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wechat-blog submit <file.md|bundle.zip> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert an upload and deliver it to the submission endpoint.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --wechat <id>         Contributor WeChat id")
	fmt.Fprintln(w, "      --email <addr>        Contributor email")
	fmt.Fprintln(w, "      --base-url <url>      Submission endpoint (overrides config)")
	fmt.Fprintln(w, "      --token <s>           API token (overrides keyring and config)")
	fmt.Fprintln(w, "      --query <jq>          jq expression applied to the receipt")
	fmt.Fprintln(w, "      --dry-run             Process and print the manifest without submitting")
	fmt.Fprintln(w, "      --keep                Keep the work directory afterwards")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wechat-blog serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the upload server: a browser form plus an upload API backed by")
	fmt.Fprintln(w, "a worker pool that converts, submits, and notifies.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :8000)")
	fmt.Fprintln(w, "  -w, --workers <n>         Processing workers (0 = config default)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// printAuthUsage prints usage for the auth command.
func printAuthUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wechat-blog auth <login|status|logout>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manage the API token in the system keyring.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  login    Prompt for a token and store it")
	fmt.Fprintln(w, "  status   Show where the effective token comes from")
	fmt.Fprintln(w, "  logout   Remove the stored token")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wechat-blog doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check templates, config, keyring, remote endpoint, and SMTP settings.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "submit":
		printSubmitUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "auth":
		printAuthUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: wechat-blog version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: wechat-blog help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
