package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/tubefetch/internal/config"
)

var configReveal bool

func init() {
	configListCmd.Flags().BoolVar(&configReveal, "reveal", false, "print secrets unmasked")
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the config file",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every key with its effective value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := config.ListValues(loadConfig(), !configReveal)
		if err != nil {
			return fmt.Errorf("list config: %w", err)
		}

		for _, k := range config.SortedKeys(values) {
			fmt.Fprintf(os.Stdout, "%s = %v\n", k, values[k])
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one value from the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		val, err := config.GetValue(cfgPath, args[0])
		if err != nil {
			return err
		}
		if s, ok := val.(string); ok && config.IsSecretKey(args[0]) {
			val = config.MaskToken(s)
		}
		fmt.Fprintln(os.Stdout, val)
		return nil
	},
}

// configSetCmd writes the value, then reloads the file so an invalid
// setting is reported right away rather than at the next serve.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one value in the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1]
		if err := config.SetValue(cfgPath, key, raw); err != nil {
			return err
		}
		if _, err := config.Load(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: config no longer valid: %v\n", err)
		}

		display := raw
		if config.IsSecretKey(key) {
			display = config.MaskToken(raw)
		}
		fmt.Fprintf(os.Stdout, "Set %s = %s\n", key, display)
		if key == "telegram.token" || key == "data_dir" || key == "session.backend" {
			fmt.Fprintln(os.Stdout, "Restart the bot for this to take effect (tubefetch restart).")
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, cfgPath)
	},
}
