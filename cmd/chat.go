package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/config"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/headless"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/transport"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask the agent questions",
	Long: `Without arguments chat reads questions from standard input, one per
line. Lines starting with / are commands, see /help. With a question it asks
once and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario, _ := cmd.Flags().GetString("scenario")
		t, err := transport.FromConfig(config.Get(), scenario)
		if err != nil {
			return err
		}

		cfg, closeTrace, err := runnerConfig(cmd, t)
		if err != nil {
			return err
		}
		defer closeTrace()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if len(args) > 0 {
			return headless.RunHeadless(ctx, cfg, strings.Join(args, " "))
		}

		runner, err := headless.NewRunner(cfg)
		if err != nil {
			return err
		}
		defer runner.Close()
		return runner.RunInteractive(ctx, cmd.InOrStdin())
	},
}

func init() {
	chatCmd.Flags().String("scenario", "", "scenario file for the replay transport")
	chatCmd.Flags().String("trace", "", "write the raw stream to this file")
	chatCmd.Flags().BoolP("progress", "P", false, "print node progress while streaming")
}

// runnerConfig sets up a headless runner writing to the command's streams.
// The returned func closes the trace file, if one was opened.
func runnerConfig(cmd *cobra.Command, t transport.Transport) (headless.Config, func(), error) {
	cfg := headless.Config{
		Settings:  config.Get(),
		Transport: t,
		Out:       cmd.OutOrStdout(),
		ErrOut:    cmd.ErrOrStderr(),
	}
	cfg.ShowProgress, _ = cmd.Flags().GetBool("progress")

	closeTrace := func() {}
	if path, _ := cmd.Flags().GetString("trace"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return cfg, nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		cfg.Trace = f
		closeTrace = func() { f.Close() }
	}
	return cfg, closeTrace, nil
}

