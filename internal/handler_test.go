package internal

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempRepo(t *testing.T) string {
	t.Helper()
	// not created: the first write must create it
	return filepath.Join(t.TempDir(), "repo")
}

func addFiles(t *testing.T, h *Handler, root, message string, files ...FileEntry) string {
	t.Helper()
	cmd, err := NewAddFilesCommand(root, message, files)
	require.NoError(t, err)
	id, err := Execute[string](context.Background(), h, cmd)
	require.NoError(t, err)
	return id
}

func entry(p, content string) FileEntry {
	return FileEntry{Path: p, Content: strings.NewReader(content)}
}

func readFile(h *Handler, root, p string, opts ...ReadOption) (string, error) {
	cmd, err := NewReadFileCommand(root, p, opts...)
	if err != nil {
		return "", err
	}
	rc, err := Execute[io.ReadCloser](context.Background(), h, cmd)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	return string(data), err
}

func listLogs(t *testing.T, h *Handler, root string) []CommitInfo {
	t.Helper()
	cmd, err := NewListLogsCommand(root)
	require.NoError(t, err)
	logs, err := Execute[[]CommitInfo](context.Background(), h, cmd)
	require.NoError(t, err)
	return logs
}

func listTags(t *testing.T, h *Handler, root string) []TagInfo {
	t.Helper()
	cmd, err := NewListTagsCommand(root)
	require.NoError(t, err)
	tags, err := Execute[[]TagInfo](context.Background(), h, cmd)
	require.NoError(t, err)
	return tags
}

func createTag(h *Handler, root, name, message string) (TagInfo, error) {
	cmd, err := NewCreateTagCommand(root, name, message)
	if err != nil {
		return TagInfo{}, err
	}
	return Execute[TagInfo](context.Background(), h, cmd)
}

func TestAddFilesCreatesRepositoryAndReadsBack(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)

	id := addFiles(t, h, root, "Initial commit",
		entry("root.txt", "This is root file"),
		entry("dir/file.txt", "This is a file in dir"),
	)
	assert.Len(t, id, 40)
	assert.True(t, h.Resolver().Exists(root))

	got, err := readFile(h, root, "root.txt")
	require.NoError(t, err)
	assert.Equal(t, "This is root file", got)

	got, err = readFile(h, root, "dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "This is a file in dir", got)

	logs := listLogs(t, h, root)
	require.Len(t, logs, 1)
	assert.Equal(t, id, logs[0].ID)
	assert.Equal(t, DefaultAuthor, logs[0].AuthorName)
	assert.Equal(t, DefaultEmail, logs[0].AuthorEmail)
	assert.Equal(t, "Initial commit", logs[0].Message)
	assert.True(t, logs[0].IsHead)
	assert.True(t, logs[0].IsCurrent)
	assert.False(t, logs[0].Date.IsZero())
}

func TestReadMissingPathIsFailure(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)
	addFiles(t, h, root, "Initial commit", entry("root.txt", "content"))

	_, err := readFile(h, root, "none")
	require.Error(t, err)
	assert.Equal(t, KindFailure, KindOf(err))
	assert.False(t, IsRepositoryMissing(err))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, object.ErrFileNotFound)
}

func TestReadCommandsOnMissingRepository(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)

	_, err := readFile(h, root, "file.txt")
	assert.True(t, IsRepositoryMissing(err), "read: %v", err)
	assert.ErrorIs(t, err, ErrRepositoryMissing)

	logsCmd, err := NewListLogsCommand(root)
	require.NoError(t, err)
	_, err = Execute[[]CommitInfo](context.Background(), h, logsCmd)
	assert.True(t, IsRepositoryMissing(err), "logs: %v", err)

	tagsCmd, err := NewListTagsCommand(root)
	require.NoError(t, err)
	_, err = Execute[[]TagInfo](context.Background(), h, tagsCmd)
	assert.True(t, IsRepositoryMissing(err), "tags: %v", err)

	_, statErr := os.Stat(root)
	assert.True(t, os.IsNotExist(statErr), "read commands must not create the store")
}

func TestSecondCommitBecomesHead(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)

	first := addFiles(t, h, root, "First commit", entry("root.txt", "Version 1"))
	second := addFiles(t, h, root, "Second commit", entry("root.txt", "Version 2"))

	logs := listLogs(t, h, root)
	require.Len(t, logs, 2)
	assert.Equal(t, second, logs[0].ID)
	assert.Equal(t, first, logs[1].ID)
	assert.Equal(t, "Second commit", logs[0].Message)

	heads := 0
	for _, c := range logs {
		if c.IsHead {
			heads++
		}
		assert.Equal(t, c.IsHead, c.IsCurrent)
	}
	assert.Equal(t, 1, heads)
	assert.True(t, logs[0].IsHead)

	got, err := readFile(h, root, "root.txt")
	require.NoError(t, err)
	assert.Equal(t, "Version 2", got)

	got, err = readFile(h, root, "root.txt", AtCommit(first))
	require.NoError(t, err)
	assert.Equal(t, "Version 1", got)
}

func TestTags(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)

	first := addFiles(t, h, root, "First commit", entry("root.txt", "Version 1"))
	assert.Empty(t, listTags(t, h, root))

	created, err := createTag(h, root, "1.0", "Test first tag")
	require.NoError(t, err)
	assert.Equal(t, "1.0", created.Name)
	assert.Equal(t, first, created.CommitID)

	tags := listTags(t, h, root)
	require.Len(t, tags, 1)
	assert.Equal(t, "1.0", tags[0].Name)
	assert.NotEmpty(t, tags[0].CommitID)
	assert.Equal(t, first, tags[0].CommitID)
	assert.Equal(t, "Test first tag", tags[0].Message)

	got, err := readFile(h, root, "root.txt", AtTag("1.0"))
	require.NoError(t, err)
	assert.Equal(t, "Version 1", got)

	got, err = readFile(h, root, "root.txt", AtCommit(tags[0].CommitID))
	require.NoError(t, err)
	assert.Equal(t, "Version 1", got)

	addFiles(t, h, root, "Second commit", entry("root.txt", "Version 2"))

	got, err = readFile(h, root, "root.txt", AtTag("1.0"))
	require.NoError(t, err)
	assert.Equal(t, "Version 1", got)

	got, err = readFile(h, root, "root.txt")
	require.NoError(t, err)
	assert.Equal(t, "Version 2", got)
}

func TestDuplicateTagIsRejected(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)

	first := addFiles(t, h, root, "First commit", entry("root.txt", "Version 1"))
	_, err := createTag(h, root, "1.0", "first")
	require.NoError(t, err)

	addFiles(t, h, root, "Second commit", entry("root.txt", "Version 2"))
	_, err = createTag(h, root, "1.0", "again")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTagExists)
	assert.Equal(t, KindFailure, KindOf(err))

	tags := listTags(t, h, root)
	require.Len(t, tags, 1)
	assert.Equal(t, first, tags[0].CommitID)
}

func TestCreateTagOnEmptyRepository(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)

	_, err := createTag(h, root, "1.0", "nothing to tag")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyRepository)
	assert.False(t, IsRepositoryMissing(err))

	// the write created the store, so reads now see an empty history
	assert.True(t, h.Resolver().Exists(root))
	assert.Empty(t, listLogs(t, h, root))
	assert.Empty(t, listTags(t, h, root))
}

func TestListTagsPeelsLightweightTags(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)
	id := addFiles(t, h, root, "First commit", entry("root.txt", "Version 1"))

	repo, err := git.PlainOpen(root)
	require.NoError(t, err)
	_, err = repo.CreateTag("light", plumbing.NewHash(id), nil)
	require.NoError(t, err)
	_, err = createTag(h, root, "annotated", "with message")
	require.NoError(t, err)

	tags := listTags(t, h, root)
	require.Len(t, tags, 2)
	assert.Equal(t, "annotated", tags[0].Name)
	assert.Equal(t, "light", tags[1].Name)
	for _, tag := range tags {
		assert.Equal(t, id, tag.CommitID, tag.Name)
	}
}

func TestReadUnknownRefs(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)
	addFiles(t, h, root, "First commit", entry("root.txt", "Version 1"))

	_, err := readFile(h, root, "root.txt", AtTag("nope"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindFailure, KindOf(err))

	_, err = readFile(h, root, "root.txt", AtCommit(strings.Repeat("a", 40)))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindFailure, KindOf(err))
}

func TestAddFilesReadErrorRecordsNothing(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)
	addFiles(t, h, root, "First commit", entry("root.txt", "Version 1"))

	boom := errors.New("boom")
	cmd, err := NewAddFilesCommand(root, "Broken commit", []FileEntry{
		entry("root.txt", "Version 2"),
		{Path: "other.txt", Content: iotest.ErrReader(boom)},
	})
	require.NoError(t, err)

	_, err = Execute[string](context.Background(), h, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, KindFailure, KindOf(err))

	assert.Len(t, listLogs(t, h, root), 1)
	got, err := readFile(h, root, "root.txt")
	require.NoError(t, err)
	assert.Equal(t, "Version 1", got)
}

func TestAddFilesStagingErrorRestoresIndex(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)
	addFiles(t, h, root, "First commit", entry("a", "a plain file"))

	// "a" is a file, so creating "a/c.txt" fails after "b.txt" was staged
	cmd, err := NewAddFilesCommand(root, "Broken commit", []FileEntry{
		entry("b.txt", "staged then dropped"),
		entry("a/c.txt", "cannot be written"),
	})
	require.NoError(t, err)
	_, err = Execute[string](context.Background(), h, cmd)
	require.Error(t, err)
	assert.Equal(t, KindFailure, KindOf(err))
	assert.Len(t, listLogs(t, h, root), 1)

	addFiles(t, h, root, "Next commit", entry("d.txt", "d"))
	assert.Len(t, listLogs(t, h, root), 2)

	_, err = readFile(h, root, "b.txt")
	assert.ErrorIs(t, err, ErrNotFound, "half-staged file leaked into a later commit")
}

type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func TestAddFilesLeavesCallerStreamsOpen(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)

	r := &trackingReader{Reader: strings.NewReader("content")}
	addFiles(t, h, root, "commit", FileEntry{Path: "f.txt", Content: r})
	assert.False(t, r.closed)
}

func TestAddFilesIdenticalContentStillCommits(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)

	addFiles(t, h, root, "First commit", entry("root.txt", "same"))
	addFiles(t, h, root, "Second commit", entry("root.txt", "same"))

	assert.Len(t, listLogs(t, h, root), 2)
}

func TestHandlerReusedAcrossRepositories(t *testing.T) {
	h := NewHandler(nil, nil)
	one := tempRepo(t)
	two := tempRepo(t)

	addFiles(t, h, one, "one", entry("f.txt", "one"))
	addFiles(t, h, two, "two", entry("f.txt", "two"))

	got, err := readFile(h, one, "f.txt")
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	got, err = readFile(h, two, "f.txt")
	require.NoError(t, err)
	assert.Equal(t, "two", got)
}

func TestConfiguredAuthor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Author = AuthorConfig{Name: "Administrator", Email: "admin@example.org"}
	h := NewHandler(cfg, nil)
	root := tempRepo(t)

	addFiles(t, h, root, "commit", entry("f.txt", "x"))

	logs := listLogs(t, h, root)
	require.Len(t, logs, 1)
	assert.Equal(t, "Administrator", logs[0].AuthorName)
	assert.Equal(t, "admin@example.org", logs[0].AuthorEmail)
}

func TestExecuteCanceledContext(t *testing.T) {
	h := NewHandler(nil, nil)
	root := tempRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd, err := NewAddFilesCommand(root, "commit", []FileEntry{entry("f.txt", "x")})
	require.NoError(t, err)
	_, err = Execute[string](ctx, h, cmd)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, h.Resolver().Exists(root))
}
