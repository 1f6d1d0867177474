package main

import (
	"encoding/json"
	"fmt"

	v1 "github.com/4thel00z/gitstore/pkg/v1"
	"github.com/spf13/cobra"
)

func NewLogCmd(client func() *v1.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <repo>",
		Short: "Show commit history",
		Long:  `Show the commit history of a store, most recent first.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeLogRunner(client),
	}

	cmd.Flags().Bool("oneline", false, "Show each commit on one line")
	return cmd
}

func makeLogRunner(client func() *v1.Client) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		oneline, _ := cmd.Flags().GetBool("oneline")
		asJSON, _ := cmd.Flags().GetBool("json")

		commits, err := client().Logs(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get log: %w", err)
		}

		if asJSON {
			return outputJSON(cmd, commits)
		}

		for _, c := range commits {
			if oneline {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", shortID(c.ID), c.Message)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "commit %s", c.ID)
			if c.IsHead {
				fmt.Fprint(cmd.OutOrStdout(), " (HEAD)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "Author: %s <%s>\n", c.AuthorName, c.AuthorEmail)
			fmt.Fprintf(cmd.OutOrStdout(), "Date:   %s\n\n", c.Date.Format("Mon Jan 2 15:04:05 2006 -0700"))
			fmt.Fprintf(cmd.OutOrStdout(), "    %s\n\n", c.Message)
		}
		return nil
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
