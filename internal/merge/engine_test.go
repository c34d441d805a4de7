package merge

import (
	"context"
	"errors"
	"testing"
)

func TestNewEngine_Invalid(t *testing.T) {
	if _, err := NewEngine(nil); !errors.Is(err, ErrInvalidRaster) {
		t.Errorf("got %v, want ErrInvalidRaster", err)
	}
}

func TestEngine_Options(t *testing.T) {
	e, err := NewEngine(uniformRaster(t, 10, 10, red))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if e.LeftSeamCorrection() {
		t.Error("seam correction should default to off")
	}
	e.SetLeftSeamCorrection(true)
	if !e.LeftSeamCorrection() {
		t.Error("SetLeftSeamCorrection(true) had no effect")
	}

	e.SetReporter(NopReporter{})
	if e.search.Reporter == nil {
		t.Error("SetReporter did not install the reporter")
	}

	if err := e.SetReference(&Raster{}); !errors.Is(err, ErrInvalidRaster) {
		t.Errorf("SetReference(empty): got %v, want ErrInvalidRaster", err)
	}
	next := uniformRaster(t, 5, 5, blue)
	if err := e.SetReference(next); err != nil {
		t.Fatalf("SetReference failed: %v", err)
	}
	if e.Reference() != next {
		t.Error("Reference did not return the raster just set")
	}
}

func TestEngine_MergeOnRight(t *testing.T) {
	f := smallScan(t)
	e, err := NewEngine(f.fragments[0])
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	var samples int
	e.SetReporter(ReporterFunc(func(ProgressSample) { samples++ }))

	out, err := e.MergeOnRight(context.Background(), f.fragments[1])
	if err != nil {
		t.Fatalf("MergeOnRight failed: %v", err)
	}
	if out.Width() != 424+848 || out.Height() != 1200 {
		t.Errorf("merged size: got %dx%d, want 1272x1200", out.Width(), out.Height())
	}
	if e.Reference() != out {
		t.Error("merged raster was not adopted as the reference")
	}
	if samples < 3 {
		t.Errorf("progress samples: got %d, want at least one per level", samples)
	}
}

func TestEngine_MergeOnRight_Cancelled(t *testing.T) {
	f := smallScan(t)
	e, err := NewEngine(f.fragments[0])
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.MergeOnRight(ctx, f.fragments[1]); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if e.Reference() != f.fragments[0] {
		t.Error("failed merge replaced the reference")
	}
}

func TestMergeAll_Empty(t *testing.T) {
	if _, _, err := MergeAll(context.Background(), nil, SearchOptions{}, ComposeOptions{}); !errors.Is(err, ErrInvalidRaster) {
		t.Errorf("got %v, want ErrInvalidRaster", err)
	}
}

func TestMergeAll_Single(t *testing.T) {
	only := uniformRaster(t, 20, 20, red)
	out, poses, err := MergeAll(context.Background(), []*Raster{only}, SearchOptions{}, ComposeOptions{})
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if out != only || len(poses) != 0 {
		t.Errorf("single fragment: got %v poses, raster changed=%v", poses, out != only)
	}
}

// TestMergeAll_RecoversPage reassembles a page from three overlapping
// fragments and expects every pixel back.
func TestMergeAll_RecoversPage(t *testing.T) {
	f := smallScan(t)
	compose := DefaultComposeOptions()
	compose.SeamCorrection = true

	out, poses, err := MergeAll(context.Background(), f.fragments, DefaultSearchOptions(), compose)
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}

	want := []MergeResult{{X: 424}, {X: 848}}
	if len(poses) != len(want) {
		t.Fatalf("poses: got %d, want %d", len(poses), len(want))
	}
	for i, p := range poses {
		if p.X != want[i].X || p.Y != 0 || p.Angle != 0 {
			t.Errorf("pose %d: got %+v, want x=%d y=0 angle=0", i, p, want[i].X)
		}
		if QualityFor(p.Deviation) != QualityVeryGood {
			t.Errorf("pose %d deviation %v rated %s", i, p.Deviation, QualityFor(p.Deviation))
		}
	}
	if out.Width() != f.page.Width() || out.Height() != f.page.Height() {
		t.Fatalf("merged size: got %dx%d, want %dx%d", out.Width(), out.Height(), f.page.Width(), f.page.Height())
	}
	if !samePixels(out, f.page) {
		t.Error("merged page differs from the original")
	}
}

// TestMergeAll_A3Landscape runs the full-size 2480x1754 scenario.
func TestMergeAll_A3Landscape(t *testing.T) {
	if testing.Short() {
		t.Skip("full-size merge in short mode")
	}
	f := buildFixture(t, 2480, 1754)
	if f.positions[1] != 620 || f.positions[2] != 1240 {
		t.Fatalf("fragment positions: got %v, want [0 620 1240]", f.positions)
	}

	out, poses, err := MergeAll(context.Background(), f.fragments, DefaultSearchOptions(), DefaultComposeOptions())
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if poses[0].X != 620 || poses[1].X != 1240 {
		t.Errorf("poses: got x=%d and x=%d, want 620 and 1240", poses[0].X, poses[1].X)
	}
	if out.Width() != 2480 || out.Height() != 1754 {
		t.Errorf("merged size: got %dx%d, want 2480x1754", out.Width(), out.Height())
	}
}
