package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mycelian/partitionkey"
	"github.com/mycelian/partitionkey/internal/config"
	"github.com/mycelian/partitionkey/internal/platform/logger"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var (
		explain   bool
		logLevel  string
		logFormat string
	)
	cmd := &cobra.Command{
		Use:   "dpk [EVENT_JSON]",
		Short: "Print the deterministic partition key of a JSON event",
		Long: "Reads one JSON event from the argument, or from stdin when the argument\n" +
			"is missing or \"-\", and prints its partition key.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			level, _ := cfg.Level()
			log := logger.New("dpk", errOut, level, cfg.LogFormat)

			data, err := readEvent(in, args)
			if err != nil {
				return fmt.Errorf("read event: %w", err)
			}
			log.Debug().Int("bytes", len(data)).Msg("event read")

			d, err := partitionkey.New(partitionkey.WithLogger(log))
			if err != nil {
				return err
			}
			return runDerive(d, data, explain, out)
		},
	}
	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "Also print the derivation step, tab separated")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (overrides DPK_LOG_LEVEL)")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "Log format: console or json (overrides DPK_LOG_FORMAT)")
	return cmd
}
