package main

import (
	"fmt"
	"io"

	v1 "github.com/4thel00z/gitstore/pkg/v1"
	"github.com/spf13/cobra"
)

func NewCatCmd(client func() *v1.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <repo> <path>",
		Short: "Print a file",
		Long:  `Print a file as of head, a commit or a tag.`,
		Args:  cobra.ExactArgs(2),
		RunE:  makeCatRunner(client),
	}

	cmd.Flags().String("commit", "", "Read from this commit id")
	cmd.Flags().String("tag", "", "Read from this tag")
	return cmd
}

func makeCatRunner(client func() *v1.Client) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		commit, _ := cmd.Flags().GetString("commit")
		tag, _ := cmd.Flags().GetString("tag")

		rc, err := client().ReadFile(cmd.Context(), args[0], args[1], v1.AtCommit(commit), v1.AtTag(tag))
		if v1.IsRepositoryMissing(err) {
			return fmt.Errorf("no store at %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		defer rc.Close()

		_, err = io.Copy(cmd.OutOrStdout(), rc)
		return err
	}
}
