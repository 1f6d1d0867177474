package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Operation identifies a command kind.
type Operation int

const (
	OpAddFiles Operation = iota
	OpReadFile
	OpListLogs
	OpCreateTag
	OpListTags
)

func (o Operation) String() string {
	switch o {
	case OpAddFiles:
		return "add-files"
	case OpReadFile:
		return "read-file"
	case OpListLogs:
		return "list-logs"
	case OpCreateTag:
		return "create-tag"
	case OpListTags:
		return "list-tags"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// creates reports whether the operation may create a missing store.
func (o Operation) creates() bool {
	return o == OpAddFiles || o == OpCreateTag
}

// Command is the closed set of operations the Handler executes. R is the
// operation's result type. Values are immutable once their constructor returns.
type Command[R any] interface {
	Operation() Operation
	RepositoryPath() string
	execute(repo *GitRepository) (R, error)
}

var (
	_ Command[string]        = (*AddFilesCommand)(nil)
	_ Command[io.ReadCloser] = (*ReadFileCommand)(nil)
	_ Command[[]CommitInfo]  = (*ListLogsCommand)(nil)
	_ Command[TagInfo]       = (*CreateTagCommand)(nil)
	_ Command[[]TagInfo]     = (*ListTagsCommand)(nil)
)

var (
	commitIDPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
	tagNamePattern  = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)
)

// FileEntry is one file of an AddFiles commit. Content is read fully during
// execution and is never closed by this package.
type FileEntry struct {
	Path    string
	Content io.Reader
}

type repoPath string

func (p repoPath) RepositoryPath() string {
	return string(p)
}

func newRepoPath(p string) (repoPath, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("repository path is empty")
	}
	return repoPath(filepath.Clean(p)), nil
}

// AddFilesCommand commits a set of files atomically. Result: the new commit id.
type AddFilesCommand struct {
	repoPath
	message string
	files   []FileEntry
}

func NewAddFilesCommand(repo, message string, files []FileEntry) (*AddFilesCommand, error) {
	var errs *multierror.Error

	root, err := newRepoPath(repo)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if strings.TrimSpace(message) == "" {
		errs = multierror.Append(errs, errors.New("commit message is empty"))
	}
	if len(files) == 0 {
		errs = multierror.Append(errs, errors.New("no files to add"))
	}

	entries := make([]FileEntry, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		p, err := cleanFilePath(f.Path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if f.Content == nil {
			errs = multierror.Append(errs, fmt.Errorf("file %q has no content", p))
			continue
		}
		if seen[p] {
			errs = multierror.Append(errs, fmt.Errorf("file %q added twice", p))
			continue
		}
		seen[p] = true
		entries = append(entries, FileEntry{Path: p, Content: f.Content})
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, invalid(OpAddFiles.String(), err)
	}

	return &AddFilesCommand{
		repoPath: root,
		message:  message,
		files:    entries,
	}, nil
}

func (c *AddFilesCommand) Operation() Operation { return OpAddFiles }

func (c *AddFilesCommand) Message() string { return c.message }

// Paths returns the cleaned file paths in commit order.
func (c *AddFilesCommand) Paths() []string {
	paths := make([]string, len(c.files))
	for i, f := range c.files {
		paths[i] = f.Path
	}
	return paths
}

func (c *AddFilesCommand) execute(repo *GitRepository) (string, error) {
	staged := make([]stagedFile, 0, len(c.files))
	for _, f := range c.files {
		content, err := io.ReadAll(f.Content)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Path, err)
		}
		staged = append(staged, stagedFile{path: f.Path, content: content})
	}

	hash, err := repo.CommitFiles(c.message, staged)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// ReadFileCommand reads one file as of a commit, a tag or head.
// Result: a reader positioned at the start of the content; the caller closes it.
type ReadFileCommand struct {
	repoPath
	path string
	rev  revision
}

type ReadOption func(*ReadFileCommand)

// AtCommit reads from the given full commit id. An empty id is ignored.
func AtCommit(id string) ReadOption {
	return func(c *ReadFileCommand) {
		c.rev.commitID = strings.ToLower(strings.TrimSpace(id))
	}
}

// AtTag reads from the commit the tag resolves to. An empty name is ignored.
func AtTag(name string) ReadOption {
	return func(c *ReadFileCommand) {
		c.rev.tag = strings.TrimSpace(name)
	}
}

func NewReadFileCommand(repo, filePath string, opts ...ReadOption) (*ReadFileCommand, error) {
	cmd := &ReadFileCommand{}
	for _, opt := range opts {
		opt(cmd)
	}

	var errs *multierror.Error

	root, err := newRepoPath(repo)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	p, err := cleanFilePath(filePath)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if cmd.rev.commitID != "" && cmd.rev.tag != "" {
		errs = multierror.Append(errs, errors.New("commit id and tag are mutually exclusive"))
	}
	if cmd.rev.commitID != "" && !commitIDPattern.MatchString(cmd.rev.commitID) {
		errs = multierror.Append(errs, fmt.Errorf("malformed commit id %q", cmd.rev.commitID))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, invalid(OpReadFile.String(), err)
	}

	cmd.repoPath = root
	cmd.path = p
	return cmd, nil
}

func (c *ReadFileCommand) Operation() Operation { return OpReadFile }

func (c *ReadFileCommand) FilePath() string { return c.path }

func (c *ReadFileCommand) execute(repo *GitRepository) (io.ReadCloser, error) {
	content, err := repo.ReadFile(c.rev, c.path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// ListLogsCommand lists history from head backwards.
type ListLogsCommand struct {
	repoPath
}

func NewListLogsCommand(repo string) (*ListLogsCommand, error) {
	root, err := newRepoPath(repo)
	if err != nil {
		return nil, invalid(OpListLogs.String(), err)
	}
	return &ListLogsCommand{repoPath: root}, nil
}

func (c *ListLogsCommand) Operation() Operation { return OpListLogs }

func (c *ListLogsCommand) execute(repo *GitRepository) ([]CommitInfo, error) {
	return repo.Log()
}

// CreateTagCommand creates an annotated tag at head.
type CreateTagCommand struct {
	repoPath
	name    string
	message string
}

func NewCreateTagCommand(repo, name, message string) (*CreateTagCommand, error) {
	var errs *multierror.Error

	root, err := newRepoPath(repo)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := validateTagName(name); err != nil {
		errs = multierror.Append(errs, err)
	}
	if strings.TrimSpace(message) == "" {
		errs = multierror.Append(errs, errors.New("tag message is empty"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, invalid(OpCreateTag.String(), err)
	}

	return &CreateTagCommand{
		repoPath: root,
		name:     name,
		message:  message,
	}, nil
}

func (c *CreateTagCommand) Operation() Operation { return OpCreateTag }

func (c *CreateTagCommand) TagName() string { return c.name }

func (c *CreateTagCommand) execute(repo *GitRepository) (TagInfo, error) {
	return repo.CreateTag(c.name, c.message)
}

type ListTagsCommand struct {
	repoPath
}

func NewListTagsCommand(repo string) (*ListTagsCommand, error) {
	root, err := newRepoPath(repo)
	if err != nil {
		return nil, invalid(OpListTags.String(), err)
	}
	return &ListTagsCommand{repoPath: root}, nil
}

func (c *ListTagsCommand) Operation() Operation { return OpListTags }

func (c *ListTagsCommand) execute(repo *GitRepository) ([]TagInfo, error) {
	return repo.Tags()
}

// cleanFilePath normalizes a posix relative path and rejects anything that
// would escape the worktree or touch the git directory.
func cleanFilePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("file path is empty")
	}
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("file path %q is absolute", p)
	}

	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("file path %q escapes the repository", p)
	}
	if first, _, _ := strings.Cut(cleaned, "/"); first == GitDir {
		return "", fmt.Errorf("file path %q is reserved", p)
	}

	return cleaned, nil
}

func validateTagName(name string) error {
	switch {
	case name == "":
		return errors.New("tag name is empty")
	case !tagNamePattern.MatchString(name),
		strings.Contains(name, ".."),
		strings.Contains(name, "//"),
		strings.HasSuffix(name, "/"),
		strings.HasSuffix(name, ".lock"):
		return fmt.Errorf("invalid tag name %q", name)
	}
	return nil
}
