package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"mimesync/internal/backup"
	"mimesync/internal/cli"
	"mimesync/internal/config"
	"mimesync/internal/desktop"
	"mimesync/internal/diff"
	"mimesync/internal/mimeapps"
	"mimesync/internal/reconcile"
	"mimesync/internal/scanner"
	"mimesync/internal/ui"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// isTerminal reports whether f is attached to a terminal
var isTerminal = func(f any) bool {
	file, ok := f.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// review shows the pending diff and asks for confirmation
var review = func(title, content string, in io.Reader, out io.Writer) (bool, error) {
	return ui.Review(title, content, tea.WithInput(in), tea.WithOutput(out))
}

func main() {
	// Minimal logger until the flags are parsed
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error returned by run to the process exit code
func exitCode(err error) int {
	var exitErr *cli.ExitError
	switch {
	case err == nil:
		return cli.ExitOK
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, ui.ErrDeclined):
		return cli.ExitDeclined
	default:
		return cli.ExitFailure
	}
}

// newLogger creates the logger for a run. It does not touch the global
// logger so runs stay isolated.
func newLogger(opts *cli.Options, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// run parses args and performs one reconcile or restore
func run(stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, stdout)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	if opts.Version {
		fmt.Fprintf(stdout, "mimesync %s (built %s)\n", version, buildTime)
		return nil
	}

	logger := newLogger(opts, stderr)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts.Apply(cfg)
	logger.Debug("configuration loaded",
		"config", cfg.Path(),
		"apps_dir", cfg.AppsDir,
		"mimeapps", cfg.MimeappsPath)

	color := isTerminal(stderr)
	if opts.WriteConfig {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintln(stderr, ui.RenderNotification("success", "Wrote "+cfg.Path(), color))
		return nil
	}

	backups := backup.New(cfg.BackupDir, cfg.BackupKeep, logger)

	if opts.Restore {
		return restore(backups, cfg, stderr, color)
	}

	if opts.Interactive && !(isTerminal(stdin) && isTerminal(stdout)) {
		return &cli.ExitError{Code: cli.ExitUsage, Message: "--interactive needs a terminal"}
	}

	return reconcileFile(opts, cfg, backups, logger, stdin, stdout, stderr, color)
}

// reconcileFile loads the descriptors and the registry, reconciles them and
// routes the result according to opts
func reconcileFile(
	opts *cli.Options,
	cfg *config.Config,
	backups *backup.BackupManager,
	logger *slog.Logger,
	stdin io.Reader,
	stdout, stderr io.Writer,
	color bool,
) error {
	sources, err := scanner.New(cfg.AppsDir, logger).Scan()
	if err != nil {
		return err
	}

	set, err := desktop.LoadAll(sources, desktop.LoadOptions{
		SkipInvalid: cfg.SkipInvalid,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	reg, err := mimeapps.Load(cfg.MimeappsPath)
	if err != nil {
		return err
	}

	report := reconcile.Run(set, reg)

	data, err := reg.Bytes(cfg.Pretty)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", cfg.MimeappsPath, err)
	}

	oldDigest := mimeapps.Digest(reg.Original())
	newDigest := mimeapps.Digest(data)
	changed := reg.Original() == nil || oldDigest != newDigest
	logger.Debug("reconciled",
		"removed", len(report.Removed),
		"added", len(report.Added),
		"old", mimeapps.ShortDigest(oldDigest),
		"new", mimeapps.ShortDigest(newDigest))

	result := diff.Compute(string(reg.Original()), string(data))
	name := filepath.Base(cfg.MimeappsPath)
	oldLabel, newLabel := "a/"+name, "b/"+name

	if opts.Diff {
		fmt.Fprint(stdout, ui.RenderDiff(result, oldLabel, newLabel, isTerminal(stdout)))
	}
	if opts.List {
		fmt.Fprint(stdout, ui.RenderTree(cfg.MimeappsPath, reg.Associations()))
	}
	if opts.Stdout || (opts.DryRun && !opts.Diff && !opts.List) {
		if _, err := stdout.Write(data); err != nil {
			return err
		}
	}

	fmt.Fprint(stderr, ui.RenderReport(report, color))

	if !opts.WritesTarget() {
		return nil
	}
	if !changed {
		logger.Info("file unchanged, nothing written", "path", cfg.MimeappsPath)
		return nil
	}

	if opts.Interactive {
		ok, err := review("Pending changes to "+cfg.MimeappsPath,
			ui.RenderDiff(result, oldLabel, newLabel, true), stdin, stdout)
		if err != nil {
			return err
		}
		if !ok {
			return ui.ErrDeclined
		}
	}

	if cfg.Backup {
		saved, err := backups.Backup(cfg.MimeappsPath)
		if err != nil {
			return fmt.Errorf("failed to back up %s: %w", cfg.MimeappsPath, err)
		}
		if saved != nil {
			logger.Info("backed up", "path", saved.FilePath, "to", saved.DestPath)
		}
	}

	if err := reg.Save(cfg.MimeappsPath, cfg.Pretty); err != nil {
		return err
	}
	fmt.Fprintln(stderr, ui.RenderNotification("success", "Wrote "+cfg.MimeappsPath, color))
	return nil
}

// restore puts the latest backup of the target file back in place
func restore(backups *backup.BackupManager, cfg *config.Config, stderr io.Writer, color bool) error {
	restored, err := backups.Restore(cfg.MimeappsPath)
	if err != nil {
		return fmt.Errorf("failed to restore %s: %w", cfg.MimeappsPath, err)
	}
	fmt.Fprintln(stderr, ui.RenderNotification("success",
		fmt.Sprintf("Restored %s from %s", restored.DestPath, restored.SourcePath), color))
	return nil
}
