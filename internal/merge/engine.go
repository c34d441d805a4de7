package merge

import (
	"context"
	"fmt"
)

// Engine merges candidates onto a growing reference, one at a time.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	reference *Raster
	search    SearchOptions
	compose   ComposeOptions
}

// NewEngine returns an engine anchored on reference with default options.
func NewEngine(reference *Raster) (*Engine, error) {
	if err := validate("reference", reference); err != nil {
		return nil, err
	}
	return &Engine{
		reference: reference,
		search:    DefaultSearchOptions(),
		compose:   DefaultComposeOptions(),
	}, nil
}

// Reference returns the current reference raster.
func (e *Engine) Reference() *Raster { return e.reference }

// SetReference replaces the reference raster.
func (e *Engine) SetReference(r *Raster) error {
	if err := validate("reference", r); err != nil {
		return err
	}
	e.reference = r
	return nil
}

// SetLeftSeamCorrection toggles seam blending for subsequent compositions.
func (e *Engine) SetLeftSeamCorrection(on bool) { e.compose.SeamCorrection = on }

// LeftSeamCorrection reports whether seam blending is on.
func (e *Engine) LeftSeamCorrection() bool { return e.compose.SeamCorrection }

// SetReporter sets the progress sink for subsequent searches. Nil disables
// reporting.
func (e *Engine) SetReporter(r Reporter) { e.search.Reporter = r }

// SetSearchOptions replaces all search options.
func (e *Engine) SetSearchOptions(opts SearchOptions) { e.search = opts }

// SetComposeOptions replaces all compose options.
func (e *Engine) SetComposeOptions(opts ComposeOptions) { e.compose = opts }

// Search finds the pose of candidate against the current reference.
func (e *Engine) Search(ctx context.Context, candidate *Raster) (MergeResult, error) {
	report, err := Search(ctx, e.reference, candidate, e.search)
	if err != nil {
		return MergeResult{}, err
	}
	return report.Result, nil
}

// Compose paints candidate at pose onto a copy of the current reference.
func (e *Engine) Compose(candidate *Raster, pose MergeResult) (*Raster, error) {
	return Compose(e.reference, candidate, pose, e.compose)
}

// MergeOnRight searches, composes and adopts the composite as the new
// reference, which it also returns.
func (e *Engine) MergeOnRight(ctx context.Context, candidate *Raster) (*Raster, error) {
	_, out, err := e.mergeOnRight(ctx, candidate)
	return out, err
}

func (e *Engine) mergeOnRight(ctx context.Context, candidate *Raster) (MergeResult, *Raster, error) {
	pose, err := e.Search(ctx, candidate)
	if err != nil {
		return MergeResult{}, nil, fmt.Errorf("failed to search: %w", err)
	}
	out, err := e.Compose(candidate, pose)
	if err != nil {
		return pose, nil, fmt.Errorf("failed to compose: %w", err)
	}
	e.reference = out
	return pose, out, nil
}

// MergeAll folds fragments left to right: each fragment is merged onto the
// composite of all before it. It returns the final raster and the pose found
// for each fragment after the first.
func MergeAll(ctx context.Context, fragments []*Raster, search SearchOptions, compose ComposeOptions) (*Raster, []MergeResult, error) {
	if len(fragments) == 0 {
		return nil, nil, fmt.Errorf("%w: no fragments", ErrInvalidRaster)
	}
	e, err := NewEngine(fragments[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start merge: %w", err)
	}
	e.SetSearchOptions(search)
	e.SetComposeOptions(compose)

	poses := make([]MergeResult, 0, len(fragments)-1)
	for i, frag := range fragments[1:] {
		pose, _, err := e.mergeOnRight(ctx, frag)
		if err != nil {
			return nil, poses, fmt.Errorf("failed to merge fragment %d: %w", i+1, err)
		}
		poses = append(poses, pose)
	}
	return e.Reference(), poses, nil
}
