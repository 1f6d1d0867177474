package internal

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Handler is the single funnel every command goes through. It holds no state
// between calls and performs no locking; callers serialize writers per path.
type Handler struct {
	resolver *Resolver
	log      logrus.FieldLogger
}

// NewHandler builds a Handler committing as cfg.Author. A nil cfg means
// DefaultConfig, a nil logger discards output.
func NewHandler(cfg *Config, logger logrus.FieldLogger) *Handler {
	c := DefaultConfig()
	if cfg != nil {
		*c = *cfg
		c.fillDefaults()
	}
	if logger == nil {
		logger = discardLogger()
	}

	return &Handler{
		resolver: NewResolver(c.Author),
		log:      logger,
	}
}

// Resolver exposes the repository resolver the handler uses.
func (h *Handler) Resolver() *Resolver {
	return h.resolver
}

// Execute resolves the command's repository, runs the command against it and
// translates any failure into *Error. The repository handle is released
// before Execute returns.
func Execute[R any](ctx context.Context, h *Handler, cmd Command[R]) (R, error) {
	var zero R

	op := cmd.Operation()
	root := cmd.RepositoryPath()
	log := h.log.WithFields(logrus.Fields{
		KindFieldKey:       op.String(),
		RepositoryFieldKey: root,
	})

	if err := ctx.Err(); err != nil {
		return zero, translate(op.String(), root, err)
	}

	log.Debug("executing command")

	repo, err := h.resolver.Resolve(root, op.creates())
	if err != nil {
		err = translate(op.String(), root, err)
		if IsRepositoryMissing(err) {
			log.Debug("repository missing")
		} else {
			log.WithError(err).Warn("resolve repository")
		}
		return zero, err
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			log.WithError(cerr).Warn("close repository")
		}
	}()

	result, err := cmd.execute(repo)
	if err != nil {
		err = translate(op.String(), root, err)
		log.WithError(err).Warn("command failed")
		return zero, err
	}

	log.Debug("command done")
	return result, nil
}
