// Package cmd contains the ledger commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Drive a proof of work ledger",
	Long:  `ledger runs the demo chain in process, verifies stored chains and talks to a node.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("url", "u", "http://localhost:8080", "Url of the node.")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "binding root flags:", err)
	}

	rootCmd.SilenceUsage = true

	viper.SetEnvPrefix("ledger")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bindFlags makes the flags of the command being run available through
// viper so they can also be set from the environment. Commands share flag
// names, so only the running command is bound.
func bindFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding %s flags: %w", cmd.Name(), err)
	}
	return nil
}
