package v1

import "github.com/4thel00z/gitstore/internal"

// CommitInfo describes one commit of a store's history.
type CommitInfo = internal.CommitInfo

// TagInfo describes a tag and the commit it was created on.
type TagInfo = internal.TagInfo

// FileEntry is one file of an AddFiles commit. The caller keeps ownership of Content.
type FileEntry = internal.FileEntry

// Error is returned by every failing command.
type Error = internal.Error

// Kind tells a missing store apart from any other failure.
type Kind = internal.Kind

const (
	KindFailure           = internal.KindFailure
	KindRepositoryMissing = internal.KindRepositoryMissing
)

var (
	ErrRepositoryMissing = internal.ErrRepositoryMissing
	ErrNotFound          = internal.ErrNotFound
	ErrTagExists         = internal.ErrTagExists
	ErrInvalidCommand    = internal.ErrInvalidCommand
	ErrEmptyRepository   = internal.ErrEmptyRepository
)

// IsRepositoryMissing reports whether err means no store exists at the path yet.
func IsRepositoryMissing(err error) bool {
	return internal.IsRepositoryMissing(err)
}

// KindOf returns the kind of err.
func KindOf(err error) Kind {
	return internal.KindOf(err)
}
