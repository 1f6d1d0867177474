package main

import (
	"fmt"

	"github.com/4thel00z/gitstore/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewConfigCmd(config func() *internal.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration",
		Long:  `Print the effective configuration, or write it to the config file with --write.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			write, _ := cmd.Flags().GetBool("write")
			cfg := config()

			if write {
				path, _ := cmd.Flags().GetString("config")
				if path == "" {
					return fmt.Errorf("no config path")
				}
				if err := internal.SaveConfig(path, cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().Bool("write", false, "Write the effective configuration to the config file")
	return cmd
}
