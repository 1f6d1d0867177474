package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v1 "github.com/4thel00z/gitstore/pkg/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, config: filepath.Join(t.TempDir(), "config.yaml")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()

	cmd := NewRootCmd("test", &app{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", c.config, "--log-level", "none"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestE2EAddCatLogTag(t *testing.T) {
	c := newCLI(t)
	src := t.TempDir()
	repo := filepath.Join(t.TempDir(), "store")

	v1File := writeSource(t, src, "v1.txt", "Version 1")
	v2File := writeSource(t, src, "v2.txt", "Version 2")

	out, err := c.run("add", repo, "docs/root.txt="+v1File, "-m", "First commit")
	require.NoError(t, err, out)
	assert.Contains(t, out, "First commit")

	out, err = c.run("tag", repo, "1.0", "-m", "first release")
	require.NoError(t, err, out)
	assert.Contains(t, out, "as 1.0")

	_, err = c.run("add", repo, "docs/root.txt="+v2File, "-m", "Second commit")
	require.NoError(t, err)

	out, err = c.run("cat", repo, "docs/root.txt")
	require.NoError(t, err)
	assert.Equal(t, "Version 2", out)

	out, err = c.run("cat", repo, "docs/root.txt", "--tag", "1.0")
	require.NoError(t, err)
	assert.Equal(t, "Version 1", out)

	out, err = c.run("log", repo, "--oneline")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Second commit")
	assert.Contains(t, lines[1], "First commit")

	out, err = c.run("log", repo, "--json")
	require.NoError(t, err)
	var commits []v1.CommitInfo
	require.NoError(t, json.Unmarshal([]byte(out), &commits))
	require.Len(t, commits, 2)
	assert.True(t, commits[0].IsHead)
	assert.False(t, commits[1].IsHead)

	out, err = c.run("tags", repo, "--json")
	require.NoError(t, err)
	var tags []v1.TagInfo
	require.NoError(t, json.Unmarshal([]byte(out), &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, "1.0", tags[0].Name)
	assert.Equal(t, commits[1].ID, tags[0].CommitID)
}

func TestE2ECatMissingStore(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("cat", filepath.Join(t.TempDir(), "nope"), "file.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no store at")
}

func TestE2EConfigWrite(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("config", "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(c.config)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gitstore@local")
}

func TestParseFileArg(t *testing.T) {
	tests := []struct {
		arg      string
		wantDest string
		wantSrc  string
	}{
		{"a.txt", "a.txt", "a.txt"},
		{"docs/a.txt=/tmp/x.txt", "docs/a.txt", "/tmp/x.txt"},
		{"=/tmp/x.txt", "=/tmp/x.txt", "=/tmp/x.txt"},
		{"a.txt=", "a.txt=", "a.txt="},
	}

	for _, tt := range tests {
		dest, src := parseFileArg(tt.arg)
		if dest != tt.wantDest || src != tt.wantSrc {
			t.Errorf("parseFileArg(%q) = (%q, %q), want (%q, %q)", tt.arg, dest, src, tt.wantDest, tt.wantSrc)
		}
	}
}
