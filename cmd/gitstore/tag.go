package main

import (
	"fmt"

	v1 "github.com/4thel00z/gitstore/pkg/v1"
	"github.com/spf13/cobra"
)

func NewTagCmd(client func() *v1.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <repo> <name>",
		Short: "Tag the current head",
		Long:  `Create an annotated tag at the head of a store. Existing tags are never moved.`,
		Args:  cobra.ExactArgs(2),
		RunE:  makeTagRunner(client),
	}

	cmd.Flags().StringP("message", "m", "", "Tag message")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func makeTagRunner(client func() *v1.Client) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")

		tag, err := client().CreateTag(cmd.Context(), args[0], args[1], message)
		if err != nil {
			return fmt.Errorf("create tag: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s as %s\n", shortID(tag.CommitID), tag.Name)
		return nil
	}
}

func NewTagsCmd(client func() *v1.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <repo>",
		Short: "List tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			tags, err := client().Tags(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}

			if asJSON {
				return outputJSON(cmd, tags)
			}

			for _, t := range tags {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Name, shortID(t.CommitID))
			}
			return nil
		},
	}
}
