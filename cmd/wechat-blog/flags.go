package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// convertFlags holds flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	templates string
	workers   int
}

// submitFlags holds flags for the submit command.
type submitFlags struct {
	common  commonFlags
	baseURL string
	token   string
	wechat  string
	email   string
	query   string
	keep    bool
	dryRun  bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common  commonFlags
	addr    string
	workers int
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, errW io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(errW)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.templates, "templates", "t", "", "fragment template directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printConvertUsage(errW) }
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseSubmitFlags parses submit command flags and returns positional args.
func parseSubmitFlags(args []string, errW io.Writer) (*submitFlags, []string, error) {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(errW)
	f := &submitFlags{}

	fs.StringVar(&f.baseURL, "base-url", "", "submission endpoint base URL")
	fs.StringVar(&f.token, "token", "", "API token (overrides keyring and config)")
	fs.StringVar(&f.wechat, "wechat", "", "contributor WeChat id")
	fs.StringVar(&f.email, "email", "", "contributor email")
	fs.StringVar(&f.query, "query", "", "jq expression applied to the receipt")
	fs.BoolVar(&f.keep, "keep", false, "keep the work directory after submission")
	fs.BoolVar(&f.dryRun, "dry-run", false, "process and print the manifest without submitting")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printSubmitUsage(errW) }
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, errW io.Writer) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(errW)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :8000)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "processing workers (0 = config default)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printServeUsage(errW) }
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, errW io.Writer) (*doctorFlags, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(errW)
	f := &doctorFlags{}

	fs.BoolVar(&f.json, "json", false, "machine-readable output")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printDoctorUsage(errW) }
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
