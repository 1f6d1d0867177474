package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// revision selects the commit a read resolves to. Precedence: commit id, tag, head.
type revision struct {
	commitID string
	tag      string
}

func (rev revision) String() string {
	switch {
	case rev.commitID != "":
		return rev.commitID
	case rev.tag != "":
		return "tag " + rev.tag
	default:
		return "HEAD"
	}
}

func (r *GitRepository) resolveRevision(rev revision) (plumbing.Hash, error) {
	switch {
	case rev.commitID != "":
		return r.resolveCommit(rev.commitID)
	case rev.tag != "":
		return r.resolveTag(rev.tag)
	default:
		return r.head()
	}
}

func (r *GitRepository) resolveCommit(id string) (plumbing.Hash, error) {
	hash := plumbing.NewHash(id)
	if _, err := r.repo.CommitObject(hash); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit %s: %w", id, err)
	}
	return hash, nil
}

func (r *GitRepository) resolveTag(name string) (plumbing.Hash, error) {
	ref, err := r.repo.Tag(name)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("tag %s: %w", name, err)
	}

	info, err := r.tagInfo(ref)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return plumbing.NewHash(info.CommitID), nil
}

func (r *GitRepository) head() (plumbing.Hash, error) {
	ref, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, ErrEmptyRepository
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("get HEAD: %w", err)
	}
	return ref.Hash(), nil
}

// tagInfo peels annotated tags down to their commit. Lightweight tags point
// at the commit directly.
func (r *GitRepository) tagInfo(ref *plumbing.Reference) (TagInfo, error) {
	name := ref.Name().Short()

	tag, err := r.repo.TagObject(ref.Hash())
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return TagInfo{Name: name, CommitID: ref.Hash().String()}, nil
	}
	if err != nil {
		return TagInfo{}, fmt.Errorf("get tag %s: %w", name, err)
	}

	commit, err := tag.Commit()
	if err != nil {
		return TagInfo{}, fmt.Errorf("peel tag %s: %w", name, err)
	}

	return TagInfo{
		Name:     name,
		CommitID: commit.Hash.String(),
		Message:  strings.TrimSpace(tag.Message),
	}, nil
}

func sortTags(tags []TagInfo) {
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})
}
