package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/4thel00z/gitstore/internal"
	v1 "github.com/4thel00z/gitstore/pkg/v1"
	"github.com/spf13/cobra"
)

type app struct {
	client *v1.Client
	config *internal.Config
}

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gitstore",
		Short:         "Git-backed, taggable file store",
		Long:          `Commit, read, log and tag files in a directory backed by a git repository.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		}
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", defaultConfigPath(), "Config file")
	cmd.PersistentFlags().String("log-level", "", "Log level (trace|debug|info|warn|error|none)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, a *app) {
	client := func() *v1.Client { return a.client }
	config := func() *internal.Config { return a.config }

	root.AddCommand(
		NewAddCmd(client),
		NewCatCmd(client),
		NewLogCmd(client),
		NewTagCmd(client),
		NewTagsCmd(client),
		NewWatchCmd(client),
		NewConfigCmd(config),
	)
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.client != nil {
		return nil
	}

	path, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return err
	}
	if level != "" {
		cfg.Log.Level = level
	}

	client, err := v1.New(
		v1.WithConfigFile(path),
		v1.WithLogger(internal.NewLogger(cfg.Log, cmd.ErrOrStderr())),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	a.client = client
	a.config = cfg
	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gitstore", "config.yaml")
}
