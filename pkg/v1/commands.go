package v1

import "github.com/4thel00z/gitstore/internal"

// Command is any command accepted by Execute. R is its result type.
type Command[R any] = internal.Command[R]

type (
	AddFilesCommand  = internal.AddFilesCommand
	ReadFileCommand  = internal.ReadFileCommand
	ListLogsCommand  = internal.ListLogsCommand
	CreateTagCommand = internal.CreateTagCommand
	ListTagsCommand  = internal.ListTagsCommand
	ReadOption       = internal.ReadOption
)

// NewAddFilesCommand validates a commit of files. Paths are posix relative and unique.
func NewAddFilesCommand(repo, message string, files []FileEntry) (*AddFilesCommand, error) {
	return internal.NewAddFilesCommand(repo, message, files)
}

// NewReadFileCommand validates a read of filePath. Without options it reads from head.
func NewReadFileCommand(repo, filePath string, opts ...ReadOption) (*ReadFileCommand, error) {
	return internal.NewReadFileCommand(repo, filePath, opts...)
}

// AtCommit reads from a full commit id.
func AtCommit(id string) ReadOption {
	return internal.AtCommit(id)
}

// AtTag reads from the commit a tag was created on.
func AtTag(name string) ReadOption {
	return internal.AtTag(name)
}

func NewListLogsCommand(repo string) (*ListLogsCommand, error) {
	return internal.NewListLogsCommand(repo)
}

// NewCreateTagCommand validates an annotated tag creation at head.
func NewCreateTagCommand(repo, name, message string) (*CreateTagCommand, error) {
	return internal.NewCreateTagCommand(repo, name, message)
}

func NewListTagsCommand(repo string) (*ListTagsCommand, error) {
	return internal.NewListTagsCommand(repo)
}
