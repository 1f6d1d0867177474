package internal

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	ErrRepositoryMissing = errors.New("repository not initialized")
	ErrNotFound          = errors.New("not found")
	ErrTagExists         = errors.New("tag already exists")
	ErrInvalidCommand    = errors.New("invalid command")
	ErrEmptyRepository   = errors.New("repository has no commits")
)

// Kind separates the expected "no store yet" condition from every other failure.
type Kind int

const (
	KindFailure Kind = iota
	KindRepositoryMissing
)

func (k Kind) String() string {
	switch k {
	case KindRepositoryMissing:
		return "repository-missing"
	default:
		return "failure"
	}
}

// Error is the only error type returned by Execute and the command constructors.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind carried by err. Errors not produced by this package
// are reported as KindFailure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindFailure
}

func IsRepositoryMissing(err error) bool {
	return err != nil && KindOf(err) == KindRepositoryMissing
}

func invalid(op string, err error) *Error {
	return &Error{
		Kind: KindFailure,
		Op:   op,
		Err:  fmt.Errorf("%w: %w", ErrInvalidCommand, err),
	}
}

// translate normalizes engine failures into *Error. Only ErrRepositoryMissing
// maps to KindRepositoryMissing; the resolver is the sole producer of it.
func translate(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errors.Is(err, ErrRepositoryMissing) {
		return &Error{Kind: KindRepositoryMissing, Op: op, Path: path, Err: err}
	}

	switch {
	case errors.Is(err, object.ErrFileNotFound),
		errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, git.ErrTagNotFound):
		if !errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	case errors.Is(err, git.ErrTagExists):
		if !errors.Is(err, ErrTagExists) {
			err = fmt.Errorf("%w: %w", ErrTagExists, err)
		}
	}

	return &Error{Kind: KindFailure, Op: op, Path: path, Err: err}
}
