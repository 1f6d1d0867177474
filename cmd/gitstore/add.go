package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v1 "github.com/4thel00z/gitstore/pkg/v1"
	"github.com/spf13/cobra"
)

func NewAddCmd(client func() *v1.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <repo> <file>[=<source>]...",
		Short: "Commit files to a store",
		Long: `Commit one or more files as a single commit, creating the store if needed.
Each argument is either a relative path read from the working directory or
<path>=<source> to store the local file <source> under <path>.`,
		Args: cobra.MinimumNArgs(2),
		RunE: makeAddRunner(client),
	}

	cmd.Flags().StringP("message", "m", "", "Commit message")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func makeAddRunner(client func() *v1.Client) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		message, _ := cmd.Flags().GetString("message")

		files := make([]v1.FileEntry, 0, len(args)-1)
		for _, arg := range args[1:] {
			dest, src := parseFileArg(arg)

			f, err := os.Open(src)
			if err != nil {
				return fmt.Errorf("open %s: %w", src, err)
			}
			defer f.Close()

			files = append(files, v1.FileEntry{Path: dest, Content: f})
		}

		id, err := client().AddFiles(cmd.Context(), repo, message, files...)
		if err != nil {
			return fmt.Errorf("add files: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", shortID(id), message)
		return nil
	}
}

// parseFileArg splits "dest=src". Without '=' the source path doubles as the
// destination, converted to slash form.
func parseFileArg(arg string) (dest, src string) {
	if d, s, ok := strings.Cut(arg, "="); ok && d != "" && s != "" {
		return d, s
	}
	return filepath.ToSlash(arg), arg
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
