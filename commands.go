package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smartqr/smartqr/config"
	"github.com/smartqr/smartqr/render"
	"github.com/smartqr/smartqr/store"
	"github.com/smartqr/smartqr/upi"
)

// setup loads .env and the config file, then builds the logger.
func setup(configPath string, logOut io.Writer) (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, newLogger(cfg.LogLevel, logOut), nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// runGenerate is the root command: resolve the payload, render it and record
// the result.
func runGenerate(cmd *cobra.Command, f *generateFlags, args []string) error {
	cfg, log, err := setup(f.configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	// 1. Decide what to encode
	kind := store.KindText
	data := f.text
	if len(f.upi) > 0 {
		vpa, name, err := upiFields(f.upi, args)
		if err != nil {
			return err
		}
		kind = store.KindUPI
		data, err = upi.BuildURI(upi.Payment{
			VPA:    vpa,
			Name:   name,
			Amount: f.amount,
			Note:   f.note,
		})
		if err != nil {
			return fmt.Errorf("build upi uri: %w", err)
		}
	} else {
		if len(args) > 0 {
			return fmt.Errorf("unexpected argument %q with --text", args[0])
		}
		if f.amount != "" || f.note != "" {
			log.Warn("--amount and --note only apply to --upi, ignoring")
		}
	}

	// 2. Merge config with explicitly set flags
	opts, err := renderOptions(cmd, cfg, f)
	if err != nil {
		return err
	}
	renderer, err := render.NewRenderer(opts, log)
	if err != nil {
		return err
	}

	// 3. Render and save
	out, err := renderer.WriteFile(data, f.outfile)
	if err != nil {
		return err
	}

	if f.verify {
		if err := render.Verify(out, data); err != nil {
			return err
		}
		log.Info("verified qr decodes to payload", "path", out)
	}

	if f.terminal {
		if err := render.PrintTerminal(cmd.OutOrStdout(), data, opts.Level); err != nil {
			return err
		}
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		abs = out
	}

	// 4. Record history; failures here never fail the command
	if cfg.History {
		recordHistory(cfg, log, &store.Record{
			Kind:    kind,
			Payload: data,
			Path:    abs,
			Format:  string(render.FormatFromPath(out)),
			Level:   string(opts.Level),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "QR saved to %s\n", abs)
	return nil
}

// upiFields accepts both "--upi VPA NAME", where pflag leaves NAME as the
// positional argument, and the single-value "--upi VPA,NAME".
func upiFields(values, args []string) (vpa, name string, err error) {
	switch {
	case len(values) == 1 && len(args) == 1:
		return values[0], args[0], nil
	case len(values) == 2 && len(args) == 0:
		return values[0], values[1], nil
	}
	return "", "", fmt.Errorf("--upi takes exactly two values, VPA NAME; got %d", len(values)+len(args))
}

// renderOptions starts from the config file values and lets every flag the
// user actually passed take precedence.
func renderOptions(cmd *cobra.Command, cfg *config.Config, f *generateFlags) (render.Options, error) {
	fl := cmd.Flags()
	pick := func(name, fromFlag, fromCfg string) string {
		if fl.Changed(name) {
			return fromFlag
		}
		return fromCfg
	}

	opts := render.DefaultOptions()

	level, err := render.ParseLevel(pick("error", f.level, cfg.ErrorLevel))
	if err != nil {
		return opts, err
	}
	opts.Level = level

	fg, err := render.ParseHexColor(pick("fg", f.fg, cfg.Foreground))
	if err != nil {
		return opts, fmt.Errorf("foreground: %w", err)
	}
	bg, err := render.ParseHexColor(pick("bg", f.bg, cfg.Background))
	if err != nil {
		return opts, fmt.Errorf("background: %w", err)
	}
	opts.Foreground, opts.Background = fg, bg

	opts.BoxSize = cfg.BoxSize
	if fl.Changed("box-size") {
		opts.BoxSize = f.boxSize
	}
	opts.Border = cfg.Border
	if fl.Changed("border") {
		opts.Border = f.border
	}
	opts.LogoScale = cfg.LogoScale
	if fl.Changed("logo-scale") {
		opts.LogoScale = f.logoScale
	}
	opts.LogoPath = f.logo
	return opts, nil
}

func recordHistory(cfg *config.Config, log *slog.Logger, rec *store.Record) {
	if err := cfg.EnsureDataDir(); err != nil {
		log.Warn("history disabled", "error", err)
		return
	}
	hist, err := store.Open(cfg.HistoryPath())
	if err != nil {
		log.Warn("open history failed", "error", err)
		return
	}
	defer hist.Close()

	if err := hist.Save(rec); err != nil {
		log.Warn("record history failed", "error", err)
		return
	}
	log.Debug("recorded history", "id", rec.ID)
}

// runScan decodes a QR code image and prints its text.
func runScan(cmd *cobra.Command, path string) error {
	text, err := render.ScanFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// runHistory prints the most recent history entries as a table.
func runHistory(cmd *cobra.Command, configPath string, limit int) error {
	cfg, _, err := setup(configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.HistoryPath()); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "no history yet")
		return nil
	}

	hist, err := store.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer hist.Close()

	recs, err := hist.List(limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tKIND\tLEVEL\tPATH\tPAYLOAD")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Kind, r.Level, r.Path, r.Payload)
	}
	return tw.Flush()
}
