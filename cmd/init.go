package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to the settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefaultConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", config.Get().ConfigFile)
		return nil
	},
}
