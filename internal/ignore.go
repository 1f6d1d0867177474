package internal

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFilename holds gitignore-style patterns for paths a watched source
// directory should never commit.
const IgnoreFilename = ".gitstoreignore"

type IgnoreMatcher struct {
	matcher  gitignore.Matcher
	basePath string
}

// NewIgnoreMatcher reads basePath/.gitstoreignore. A missing file yields a
// matcher that ignores nothing.
func NewIgnoreMatcher(basePath string) (*IgnoreMatcher, error) {
	patterns, err := parseIgnoreFile(filepath.Join(basePath, IgnoreFilename))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return &IgnoreMatcher{
		matcher:  gitignore.NewMatcher(patterns),
		basePath: basePath,
	}, nil
}

// Match reports whether path, absolute or relative to the base, is excluded.
// Paths outside the base are never excluded.
func (m *IgnoreMatcher) Match(path string, isDir bool) bool {
	parts, ok := m.split(path)
	if !ok {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

func (m *IgnoreMatcher) split(path string) ([]string, bool) {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(m.basePath, path)
		if err != nil {
			return nil, false
		}
		rel = r
	}

	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return nil, false
	}
	return strings.Split(rel, "/"), true
}

func parseIgnoreFile(path string) ([]gitignore.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}
