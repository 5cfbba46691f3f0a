package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the merged configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := resolveConfigPath(configFile)
		cfg, err := loadMergedConfig(path)
		if err != nil {
			return err
		}
		if path != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "# built-in defaults (no config file found)")
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List themes defined in the config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadMergedConfig(resolveConfigPath(configFile))
		if err != nil {
			return err
		}
		names := themeNames(cfg)
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no themes defined; using the built-in palette")
			return nil
		}
		for _, name := range names {
			marker := " "
			if name == cfg.Theme {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
		}
		return nil
	},
}

func init() {
	configCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML config file")
	configCmd.AddCommand(configThemesCmd)
	rootCmd.AddCommand(configCmd)
}
