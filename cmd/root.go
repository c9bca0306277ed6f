package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/config"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "chattest",
	Short: "Chat test harness for agent streams",
	Long: `chattest sends questions to an agent's streaming endpoint and shows
the answer as it arrives, the status of every node of the agent graph and
the conversation, including regenerating earlier answers.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .chattest/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().Bool("logging.persist", false, "persist system logs across sessions")
	viper.BindPFlag("logging.persist", rootCmd.PersistentFlags().Lookup("logging.persist"))

	rootCmd.PersistentFlags().StringP("transport", "t", "", "stream transport (http, ollama, replay)")
	viper.BindPFlag("stream.transport", rootCmd.PersistentFlags().Lookup("transport"))

	rootCmd.PersistentFlags().StringP("endpoint", "e", "", "agent stream endpoint for the http transport")
	viper.BindPFlag("stream.endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))

	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(chatCmd, replayCmd, initCmd)
}

func initConfig() error {
	if err := config.Init(cfgFile); err != nil {
		return err
	}

	if noColor, _ := rootCmd.PersistentFlags().GetBool("no-color"); noColor {
		config.Get().Render.Color = false
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.WithComponent("cmd").Debug("Configuration loaded",
		"file", viper.ConfigFileUsed(),
		"transport", config.Get().Stream.Transport)
	return nil
}
