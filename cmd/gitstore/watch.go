package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/4thel00z/gitstore/internal"
	v1 "github.com/4thel00z/gitstore/pkg/v1"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd(client func() *v1.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <repo> <dir>",
		Short: "Watch a directory and commit changes",
		Long: `Watch a source directory and commit every changed file into the store.
Changes within the debounce window are batched into one commit. Paths
matching patterns in <dir>/.gitstoreignore are skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: makeWatchRunner(client),
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(client func() *v1.Client) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		repo, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		dir, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}
		debounce, _ := cmd.Flags().GetDuration("debounce")

		ignore, err := internal.NewIgnoreMatcher(dir)
		if err != nil {
			return fmt.Errorf("read ignore file: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := addWatchDirs(watcher, dir, ignore); err != nil {
			return fmt.Errorf("add watch dirs: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", dir)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		changed := map[string]bool{}

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if shouldIgnoreEvent(event, repo) {
					continue
				}
				info, statErr := os.Stat(event.Name)
				isDir := statErr == nil && info.IsDir()
				if ignore.Match(event.Name, isDir) {
					continue
				}
				if isDir {
					if event.Has(fsnotify.Create) {
						_ = addWatchDirs(watcher, event.Name, ignore)
					}
					continue
				}
				if len(changed) == 0 {
					timer.Reset(debounce)
				}
				changed[event.Name] = true
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				paths := sortedKeys(changed)
				changed = map[string]bool{}

				id, n, err := commitChanged(cmd, client(), repo, dir, paths)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "commit: %v\n", err)
					continue
				}
				if n > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %d file(s)\n", shortID(id), n)
				}
			}
		}
	}
}

// commitChanged commits the regular files among paths that still exist.
// Removals are skipped: the store's history is append-only.
func commitChanged(cmd *cobra.Command, client *v1.Client, repo, dir string, paths []string) (string, int, error) {
	var files []v1.FileEntry
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			continue
		}

		f, err := os.Open(p)
		if err != nil {
			return "", 0, fmt.Errorf("open %s: %w", p, err)
		}
		defer f.Close()

		files = append(files, v1.FileEntry{Path: filepath.ToSlash(rel), Content: f})
	}

	if len(files) == 0 {
		return "", 0, nil
	}

	id, err := client.AddFiles(cmd.Context(), repo, "auto: watch commit", files...)
	if err != nil {
		return "", 0, err
	}
	return id, len(files), nil
}

func addWatchDirs(watcher *fsnotify.Watcher, root string, ignore *internal.IgnoreMatcher) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if path != root && (strings.HasPrefix(base, ".") || ignore.Match(path, true)) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func shouldIgnoreEvent(event fsnotify.Event, repo string) bool {
	if event.Name == repo || strings.HasPrefix(event.Name, repo+string(filepath.Separator)) {
		return true
	}

	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return true
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return true
	}

	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
