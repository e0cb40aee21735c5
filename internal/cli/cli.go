package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mimesync/internal/config"
)

// Exit codes
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitDeclined = 3
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options holds the parsed command line.
type Options struct {
	AppsDir      string
	MimeappsPath string
	ConfigPath   string
	LogFormat    string

	DryRun      bool
	Stdout      bool
	Diff        bool
	Interactive bool
	List        bool
	Restore     bool
	WriteConfig bool
	Pretty      bool
	SkipInvalid bool
	NoBackup    bool
	Version     bool
	Debug       bool

	explicit map[string]bool
}

// IsSet reports whether the named flag was given on the command line.
func (o *Options) IsSet(name string) bool {
	return o.explicit[name]
}

// Apply overrides cfg with the flags that were given explicitly.
func (o *Options) Apply(cfg *config.Config) {
	if o.IsSet("apps-dir") {
		cfg.AppsDir = o.AppsDir
	}
	if o.IsSet("mimeapps") {
		cfg.MimeappsPath = o.MimeappsPath
	}
	if o.IsSet("pretty") {
		cfg.Pretty = o.Pretty
	}
	if o.IsSet("skip-invalid") {
		cfg.SkipInvalid = o.SkipInvalid
	}
	if o.NoBackup {
		cfg.Backup = false
	}
}

// WritesTarget reports whether the run replaces the target file.
func (o *Options) WritesTarget() bool {
	return !o.DryRun && !o.Stdout
}

// aliases maps short flag names to their long form
var aliases = map[string]string{
	"d": "dry-run",
	"i": "interactive",
	"v": "version",
}

// Parse processes command-line arguments. It returns the parsed Options, a
// boolean indicating the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	slog.Debug("CLI parser started.")
	opts := &Options{explicit: make(map[string]bool)}

	flagSet := flag.NewFlagSet("mimesync", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
mimesync - reconcile mimeapps.list with the installed .desktop files.

Usage:
  mimesync [options]

Stale associations (missing, hidden or mismatched descriptors) are removed,
then every visible descriptor is appended to each MIME type it declares.

Options:
`)
		flagSet.PrintDefaults()
	}

	flagSet.BoolVar(&opts.DryRun, "dry-run", false, "Print the reconciled file to stdout instead of writing it.")
	flagSet.BoolVar(&opts.DryRun, "d", false, "Shorthand for --dry-run.")
	flagSet.BoolVar(&opts.Stdout, "stdout", false, "Write the reconciled file to stdout instead of the target file.")
	flagSet.BoolVar(&opts.Diff, "diff", false, "Print a diff between the current and the reconciled file.")
	flagSet.BoolVar(&opts.Interactive, "interactive", false, "Review the changes before writing.")
	flagSet.BoolVar(&opts.Interactive, "i", false, "Shorthand for --interactive.")
	flagSet.BoolVar(&opts.List, "list", false, "Print the reconciled associations as a tree.")
	flagSet.BoolVar(&opts.Restore, "restore", false, "Replace the target file with its latest backup.")
	flagSet.StringVar(&opts.AppsDir, "apps-dir", "", "Directory containing .desktop files.")
	flagSet.StringVar(&opts.MimeappsPath, "mimeapps", "", "Path of the mimeapps.list file to reconcile.")
	flagSet.BoolVar(&opts.Pretty, "pretty", false, "Pad '=' with spaces in the output.")
	flagSet.BoolVar(&opts.SkipInvalid, "skip-invalid", false, "Skip unparsable descriptors instead of aborting.")
	flagSet.BoolVar(&opts.NoBackup, "no-backup", false, "Do not keep a backup of the previous file.")
	flagSet.StringVar(&opts.ConfigPath, "config", "", "Path to the configuration file.")
	flagSet.BoolVar(&opts.WriteConfig, "write-config", false, "Save the effective configuration to the config file and exit.")
	flagSet.BoolVar(&opts.Version, "version", false, "Print the version and exit.")
	flagSet.BoolVar(&opts.Version, "v", false, "Shorthand for --version.")
	flagSet.BoolVar(&opts.Debug, "debug", false, "Enable debug logging.")
	flagSet.StringVar(&opts.LogFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	flagSet.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := aliases[name]; ok {
			name = long
		}
		opts.explicit[name] = true
	})

	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{
			Code:    ExitUsage,
			Message: fmt.Sprintf("unexpected argument: %s", flagSet.Arg(0)),
		}
	}

	if err := opts.validate(); err != nil {
		return nil, false, err
	}

	slog.Debug("CLI parser finished successfully.", "flags", len(opts.explicit))
	return opts, false, nil
}

// validate rejects unknown values and conflicting flags
func (o *Options) validate() error {
	o.LogFormat = strings.ToLower(o.LogFormat)
	if o.LogFormat != "text" && o.LogFormat != "json" {
		return &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	if o.Interactive && o.DryRun {
		return &ExitError{Code: ExitUsage, Message: "--interactive cannot be combined with --dry-run"}
	}
	if o.Interactive && o.Stdout {
		return &ExitError{Code: ExitUsage, Message: "--interactive cannot be combined with --stdout"}
	}

	if o.WriteConfig && o.Restore {
		return &ExitError{Code: ExitUsage, Message: "--write-config cannot be combined with --restore"}
	}

	if o.Restore {
		for _, name := range []string{"dry-run", "stdout", "diff", "interactive", "list", "apps-dir", "skip-invalid"} {
			if o.IsSet(name) {
				return &ExitError{
					Code:    ExitUsage,
					Message: fmt.Sprintf("--restore cannot be combined with --%s", name),
				}
			}
		}
	}

	return nil
}
