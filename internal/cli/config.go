package cli

import (
	"fmt"
	"os"

	"github.com/OmarSalvatierra99/cleandoc/internal/config"
	"github.com/spf13/cobra"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return config.Encode(cmd.OutOrStdout(), cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Create a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !flagForce {
			fmt.Fprintf(os.Stderr, "Config file already exists at %s\n", path)
			return nil
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		if err := config.Encode(f, config.DefaultConfig()); err != nil {
			f.Close()
			return fmt.Errorf("writing config: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}
