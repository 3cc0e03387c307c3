package compiler

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/store"
)

// errFrontendFault marks a panic recovered from the front end.
var errFrontendFault = errors.New("front-end fault")

// workItem holds everything a parse worker needs for one unit. A zero fileID
// means the unit is parsed without extracting symbols.
type workItem struct {
	unit   *frontend.SourceUnit
	fileID int64
	batch  *store.BatchedStore
}

// guard runs fn, turning a panic into an error wrapping errFrontendFault.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errFrontendFault, r)
		}
	}()
	return fn()
}

// parseItem parses one unit and extracts its declarations into the batch.
func parseItem(ctx context.Context, item workItem) error {
	return guard(func() error {
		if err := frontend.Parse(ctx, item.unit); err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		if item.fileID == 0 || item.batch == nil || item.unit.Module == nil {
			return nil
		}
		if err := extractModule(item.batch, item.fileID, item.unit.Module); err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		return nil
	})
}

// parseAll parses items, on a worker pool bounded by the CPU count when
// parallel is set. Per-file failures are collected; the returned error
// summarizes them and wraps the first. A front-end fault is returned as is.
func parseAll(ctx context.Context, items []workItem, parallel bool) error {
	errs := make([]error, len(items))
	if parallel && len(items) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(runtime.NumCPU(), len(items)))
		for i, item := range items {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				errs[i] = parseItem(gctx, item)
				if errors.Is(errs[i], errFrontendFault) {
					return errs[i]
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			errs[i] = parseItem(ctx, item)
			if errors.Is(errs[i], errFrontendFault) {
				return errs[i]
			}
		}
	}

	var failed []error
	for i, err := range errs {
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", items[i].unit.URI, err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("parsing had %d error(s): %w", len(failed), failed[0])
	}
	return nil
}
