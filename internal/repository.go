package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	DefaultBranch = "main"
	GitDir        = ".git"
)

// Resolver opens the store rooted at a path, creating it on demand for writers.
type Resolver struct {
	author AuthorConfig
	now    func() time.Time
}

func NewResolver(author AuthorConfig) *Resolver {
	return &Resolver{
		author: author,
		now:    time.Now,
	}
}

// Exists reports whether an initialized store lives at root.
func (r *Resolver) Exists(root string) bool {
	repo, err := r.open(root)
	if err != nil {
		return false
	}
	_ = repo.Close()
	return true
}

// Resolve opens the store at root. When none exists it is created if create is
// set, otherwise the returned error wraps ErrRepositoryMissing. The caller owns
// the returned handle and must Close it.
func (r *Resolver) Resolve(root string, create bool) (*GitRepository, error) {
	repo, err := r.open(root)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, ErrRepositoryMissing) {
		return nil, err
	}
	if !create {
		return nil, err
	}
	return r.init(root)
}

func (r *Resolver) open(root string) (*GitRepository, error) {
	gitPath := filepath.Join(root, GitDir)

	info, err := os.Stat(gitPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryMissing, root)
	}
	if err != nil {
		return nil, fmt.Errorf("stat repository: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRepositoryMissing, gitPath)
	}

	storage := filesystem.NewStorage(osfs.New(gitPath), cache.NewObjectLRUDefault())
	repo, err := git.Open(storage, osfs.New(root))
	if errors.Is(err, git.ErrRepositoryNotExists) {
		_ = storage.Close()
		return nil, fmt.Errorf("%w: %s", ErrRepositoryMissing, root)
	}
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return r.wrap(repo, storage, root)
}

func (r *Resolver) init(root string) (*GitRepository, error) {
	gitPath := filepath.Join(root, GitDir)
	if err := os.MkdirAll(gitPath, 0755); err != nil {
		return nil, fmt.Errorf("create repository directory: %w", err)
	}

	storage := filesystem.NewStorage(osfs.New(gitPath), cache.NewObjectLRUDefault())
	repo, err := git.InitWithOptions(storage, osfs.New(root), git.InitOptions{
		DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
	})
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("init repository: %w", err)
	}

	return r.wrap(repo, storage, root)
}

func (r *Resolver) wrap(repo *git.Repository, storage *filesystem.Storage, root string) (*GitRepository, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &GitRepository{
		repo:     repo,
		worktree: worktree,
		storage:  storage,
		rootPath: root,
		author:   r.author,
		now:      r.now,
	}, nil
}

// GitRepository is an opened store. It is only valid until Close.
type GitRepository struct {
	repo     *git.Repository
	worktree *git.Worktree
	storage  *filesystem.Storage
	rootPath string
	author   AuthorConfig
	now      func() time.Time
}

func (r *GitRepository) Path() string {
	return r.rootPath
}

func (r *GitRepository) Close() error {
	return r.storage.Close()
}

type stagedFile struct {
	path    string
	content []byte
}

// CommitFiles writes and stages every file, then records them as a single
// commit. If anything fails the index is restored, so nothing half-staged can
// leak into a later commit.
func (r *GitRepository) CommitFiles(message string, files []stagedFile) (plumbing.Hash, error) {
	snapshot, err := r.repo.Storer.Index()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("read index: %w", err)
	}

	rollback := func(cause error) error {
		if err := r.repo.Storer.SetIndex(snapshot); err != nil {
			return fmt.Errorf("%w (restore index: %v)", cause, err)
		}
		return cause
	}

	for _, f := range files {
		if err := r.stage(f); err != nil {
			return plumbing.ZeroHash, rollback(err)
		}
	}

	sig := r.signature()
	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		return plumbing.ZeroHash, rollback(fmt.Errorf("commit: %w", err))
	}

	return hash, nil
}

func (r *GitRepository) stage(f stagedFile) error {
	fs := r.worktree.Filesystem

	if dir := path.Dir(f.path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := util.WriteFile(fs, f.path, f.content, 0644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}

	if _, err := r.worktree.Add(f.path); err != nil {
		return fmt.Errorf("stage %s: %w", f.path, err)
	}

	return nil
}

// ReadFile returns the content of filePath in the tree of the commit rev
// resolves to.
func (r *GitRepository) ReadFile(rev revision, filePath string) ([]byte, error) {
	hash, err := r.resolveRevision(rev)
	if err != nil {
		return nil, err
	}

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w", hash, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}

	file, err := tree.File(filePath)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", filePath, hash, err)
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	return content, nil
}

// Log walks history from head, most recent first. A store without commits
// has an empty history.
func (r *GitRepository) Log() ([]CommitInfo, error) {
	head, err := r.head()
	if errors.Is(err, ErrEmptyRepository) {
		return []CommitInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head})
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	commits := []CommitInfo{}
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, toCommitInfo(c, c.Hash == head))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk log: %w", err)
	}

	return commits, nil
}

// CreateTag adds an annotated tag at head. Existing names are never moved.
func (r *GitRepository) CreateTag(name, message string) (TagInfo, error) {
	_, err := r.repo.Tag(name)
	if err == nil {
		return TagInfo{}, fmt.Errorf("%w: %s", ErrTagExists, name)
	}
	if !errors.Is(err, git.ErrTagNotFound) {
		return TagInfo{}, fmt.Errorf("lookup tag %s: %w", name, err)
	}

	head, err := r.head()
	if err != nil {
		return TagInfo{}, err
	}

	if _, err := r.repo.CreateTag(name, head, &git.CreateTagOptions{
		Tagger:  r.signature(),
		Message: message,
	}); err != nil {
		return TagInfo{}, fmt.Errorf("create tag %s: %w", name, err)
	}

	return TagInfo{
		Name:     name,
		CommitID: head.String(),
		Message:  message,
	}, nil
}

func (r *GitRepository) Tags() ([]TagInfo, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	tags := []TagInfo{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		info, err := r.tagInfo(ref)
		if err != nil {
			return err
		}
		tags = append(tags, info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortTags(tags)
	return tags, nil
}

func (r *GitRepository) signature() *object.Signature {
	return &object.Signature{
		Name:  r.author.Name,
		Email: r.author.Email,
		When:  r.now(),
	}
}

func toCommitInfo(c *object.Commit, head bool) CommitInfo {
	return CommitInfo{
		ID:          c.Hash.String(),
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		Date:        c.Author.When,
		Message:     strings.TrimSpace(c.Message),
		IsHead:      head,
		IsCurrent:   head,
	}
}
