package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/headless"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/render"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/transport"
)

const defaultReplayQuestion = "replay"

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Play a recorded stream through the chat pipeline",
	Long: `replay feeds a recorded stream to the chat pipeline without contacting
an agent and prints the answer, the final node table, the transcript and
the exchange statistics. It is the quickest way to check how a captured
stream is classified.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario, err := transport.LoadScenario(args[0])
		if err != nil {
			return err
		}

		cfg, closeTrace, err := runnerConfig(cmd, transport.NewReplayTransport(scenario))
		if err != nil {
			return err
		}
		defer closeTrace()

		runner, err := headless.NewRunner(cfg)
		if err != nil {
			return err
		}

		question := scenario.Question
		if question == "" {
			question = defaultReplayQuestion
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "scenario %s: %s\n\n", scenario.Name, scenario.Description)

		result, err := runner.Ask(cmd.Context(), question)
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		opts := runner.RenderOptions()
		fmt.Fprintln(out, render.Nodes(runner.View().Nodes(), opts))
		fmt.Fprintln(out)
		fmt.Fprint(out, render.Transcript(runner.View().Transcript(), opts))
		fmt.Fprintln(out)

		stats := result.Stats
		fmt.Fprintf(out, "run %s: %d chunks, %d bytes, %d lines, %d persisted events in %s\n",
			stats.RunID, stats.Chunks, stats.Bytes, stats.Lines, stats.Persisted,
			stats.Duration().Round(time.Millisecond))
		if result.Err != nil {
			fmt.Fprintf(out, "stream failed: %v\n", result.Err)
		}
		return nil
	},
}

func init() {
	replayCmd.Flags().String("trace", "", "write the raw stream to this file")
	replayCmd.Flags().BoolP("progress", "P", false, "print node progress while streaming")
}
