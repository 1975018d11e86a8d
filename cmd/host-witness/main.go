package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"host-witness/internal/config"
	"host-witness/internal/journal"
	"host-witness/internal/logging"
	"host-witness/internal/witness"
)

const version = "1.0.0"

type options struct {
	configPath string
	logDir     string
	logLevel   string
	keyFile    string

	cfg *config.Config
	log logr.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "host-witness",
		Short: "Record host and network facts after a failed login",
		Long: "host-witness collects a snapshot of the local host (identity, OS, interfaces, " +
			"public IP and geolocation) and appends it to per-day journals.\n\n" +
			"Run without a subcommand to capture once in the human-readable format.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCapture(cmd, opts, witness.FormatText)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (optional)")
	root.PersistentFlags().StringVar(&opts.logDir, "log-dir", "", "Journal directory (overrides log_dir)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(captureCmd(opts))
	root.AddCommand(verifyCmd(opts))
	root.AddCommand(pruneCmd(opts))
	return root
}

func (o *options) load() error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if o.logDir != "" {
		cfg.LogDir = o.logDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.keyFile != "" {
		cfg.Encryption.KeyFile = o.keyFile
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.log = log
	return nil
}

// key returns the configured encryption key, or nil when none is set.
func (o *options) key() ([]byte, error) {
	if o.cfg.Encryption.KeyFile == "" {
		return nil, nil
	}
	key, enc, err := journal.LoadKey(o.cfg.Encryption.KeyFile)
	if err != nil {
		return nil, err
	}
	o.log.V(1).Info("loaded encryption key", "file", o.cfg.Encryption.KeyFile, "encoding", enc, "bytes", len(key))
	return key, nil
}

func captureCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Collect one snapshot and append it to the journals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := witness.ParseFormat(format)
			if err != nil {
				return err
			}
			return runCapture(cmd, opts, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Journal format: text, json or both")
	cmd.Flags().StringVar(&opts.keyFile, "key-file", "", "AES key file for encrypting json records")
	return cmd
}

func runCapture(cmd *cobra.Command, opts *options, format witness.Format) error {
	key, err := opts.key()
	if err != nil {
		return err
	}

	svc, err := witness.New(opts.cfg, key, opts.log)
	if err != nil {
		return err
	}

	res, err := svc.Capture(cmd.Context(), format)
	if err != nil {
		return err
	}
	for _, path := range res.Paths {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

var errVerifyFailed = errors.New("one or more records failed verification")

func verifyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Check the integrity tags of a json journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := opts.key()
			if err != nil {
				return err
			}

			var opener journal.Sealer
			if len(key) > 0 {
				a, err := journal.NewAESGCM(key)
				if err != nil {
					return err
				}
				opener = a
			}

			results, err := journal.Verify(args[0], opener)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				mode := "plain"
				if r.Encrypted {
					mode = "sealed"
				}
				if r.OK() {
					fmt.Fprintf(out, "line %d: ok (%s) %s %s\n", r.Line, mode, r.Snapshot.TimestampUTC, r.Snapshot.Hostname)
					continue
				}
				failed++
				fmt.Fprintf(out, "line %d: FAIL (%s) %v\n", r.Line, mode, r.Err)
			}
			fmt.Fprintf(out, "%d records, %d failed\n", len(results), failed)

			if failed > 0 {
				return errVerifyFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.keyFile, "key-file", "", "AES key file for decrypting sealed records")
	return cmd
}

func pruneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove journal files older than retention_days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.RetentionDays == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "retention disabled (retention_days: 0)")
				return nil
			}

			svc, err := witness.New(opts.cfg, nil, opts.log)
			if err != nil {
				return err
			}
			removed, err := svc.Prune()
			if err != nil {
				return err
			}
			for _, path := range removed {
				fmt.Fprintln(cmd.OutOrStdout(), "removed", path)
			}
			return nil
		},
	}
}
