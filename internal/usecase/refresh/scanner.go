package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"daily-refresher/internal/domain/entity"
	"daily-refresher/internal/observability/logging"
	"daily-refresher/internal/observability/tracing"
)

// Resolver resolves vault-relative paths to entries.
// Missing paths are reported with an error wrapping entity.ErrNotFound.
type Resolver interface {
	Resolve(ctx context.Context, path string) (entity.Entry, error)
}

// Scanner collects candidate notes below a root folder.
type Scanner struct {
	vault Resolver
}

// NewScanner returns a Scanner over vault.
func NewScanner(vault Resolver) *Scanner {
	return &Scanner{vault: vault}
}

// Scan walks the tree at c.Root depth-first and returns every file matching c,
// in lexical path order. Entries whose name starts with a dot are skipped.
//
// A missing root yields no candidates and no error; the condition is logged
// as a warning. A root that is itself a file is the only candidate considered.
// Folders that cannot be listed are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, c entity.SelectionCriteria) ([]entity.Document, error) {
	ctx, span := tracing.StartSpan(ctx, "refresh.scan", attribute.String("refresh.root", c.Root))
	defer span.End()
	logger := logging.FromContext(ctx)

	root, err := s.vault.Resolve(ctx, c.Root)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			logger.Warn("selection root not found, treating as empty",
				slog.String("root", c.Root),
				slog.Any("error", err))
			return []entity.Document{}, nil
		}
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("resolve selection root: %w", err)
	}

	docs := []entity.Document{}
	if err := s.walk(ctx, logger, root, c, &docs); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("refresh.candidates", len(docs)))
	logger.Debug("scan completed",
		slog.String("root", c.Root),
		slog.Int("candidates", len(docs)))
	return docs, nil
}

func (s *Scanner) walk(ctx context.Context, logger *slog.Logger, e entity.Entry, c entity.SelectionCriteria, out *[]entity.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch v := e.(type) {
	case entity.File:
		if c.Matches(v) {
			*out = append(*out, entity.NewDocument(v))
		}
	case entity.Folder:
		children, err := v.Children(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn("cannot list folder, skipping",
				slog.String("folder", v.Path()),
				slog.Any("error", err))
			return nil
		}
		for _, child := range children {
			if isHidden(child.Name()) {
				continue
			}
			if err := s.walk(ctx, logger, child, c, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
