package v1

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/4thel00z/gitstore/internal"
)

// Client provides programmatic access to stores. Commands on the same
// repository path are serialized; different paths run independently.
type Client struct {
	handler *internal.Handler
	locks   sync.Map
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	conf, err := internal.LoadConfig(cfg.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.authorName != "" {
		conf.Author.Name = cfg.authorName
	}
	if cfg.authorEmail != "" {
		conf.Author.Email = cfg.authorEmail
	}

	logger := cfg.logger
	if logger == nil {
		logger = internal.NewLogger(conf.Log, os.Stderr)
	}

	return &Client{
		handler: internal.NewHandler(conf, logger),
	}, nil
}

// Execute runs any command and returns its typed result.
func Execute[R any](ctx context.Context, c *Client, cmd Command[R]) (R, error) {
	unlock := c.lock(cmd.RepositoryPath())
	defer unlock()

	return internal.Execute(ctx, c.handler, cmd)
}

// AddFiles commits files to repo, creating the store if needed, and returns
// the new commit id.
func (c *Client) AddFiles(ctx context.Context, repo, message string, files ...FileEntry) (string, error) {
	cmd, err := NewAddFilesCommand(repo, message, files)
	if err != nil {
		return "", err
	}
	return Execute[string](ctx, c, cmd)
}

// ReadFile returns the content of filePath. The caller must close the reader.
func (c *Client) ReadFile(ctx context.Context, repo, filePath string, opts ...ReadOption) (io.ReadCloser, error) {
	cmd, err := NewReadFileCommand(repo, filePath, opts...)
	if err != nil {
		return nil, err
	}
	return Execute[io.ReadCloser](ctx, c, cmd)
}

// Logs returns the history of repo, head first.
func (c *Client) Logs(ctx context.Context, repo string) ([]CommitInfo, error) {
	cmd, err := NewListLogsCommand(repo)
	if err != nil {
		return nil, err
	}
	return Execute[[]CommitInfo](ctx, c, cmd)
}

// CreateTag tags the head of repo.
func (c *Client) CreateTag(ctx context.Context, repo, name, message string) (TagInfo, error) {
	cmd, err := NewCreateTagCommand(repo, name, message)
	if err != nil {
		return TagInfo{}, err
	}
	return Execute[TagInfo](ctx, c, cmd)
}

// Tags returns every tag of repo sorted by name.
func (c *Client) Tags(ctx context.Context, repo string) ([]TagInfo, error) {
	cmd, err := NewListTagsCommand(repo)
	if err != nil {
		return nil, err
	}
	return Execute[[]TagInfo](ctx, c, cmd)
}

// Exists reports whether a store has been initialized at repo.
func (c *Client) Exists(repo string) bool {
	return c.handler.Resolver().Exists(repo)
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

func (c *Client) lock(repo string) func() {
	key, err := filepath.Abs(repo)
	if err != nil {
		key = filepath.Clean(repo)
	}

	v, _ := c.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
