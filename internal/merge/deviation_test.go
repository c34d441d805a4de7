package merge

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestDeviation_SelfMerge(t *testing.T) {
	f := smallScan(t)
	dev, ok, err := Deviation(f.page, f.page, MergeResult{})
	if err != nil {
		t.Fatalf("Deviation failed: %v", err)
	}
	if !ok || dev != 0 {
		t.Errorf("self deviation: got %v ok=%v, want 0", dev, ok)
	}
}

func TestDeviation_KnownPose(t *testing.T) {
	f := smallScan(t)
	at, ok, err := Deviation(f.fragments[0], f.fragments[1], MergeResult{X: 424})
	if err != nil || !ok {
		t.Fatalf("Deviation failed: ok=%v err=%v", ok, err)
	}
	off, ok, err := Deviation(f.fragments[0], f.fragments[1], MergeResult{X: 430, Y: 3})
	if err != nil || !ok {
		t.Fatalf("Deviation failed: ok=%v err=%v", ok, err)
	}
	if at != 0 || off <= at {
		t.Errorf("deviation at true pose %v, off pose %v", at, off)
	}

	if _, ok, _ := Deviation(f.fragments[0], f.fragments[1], MergeResult{X: 424, Angle: 0.003}); !ok {
		t.Error("rotated pose produced no samples")
	}
}

func TestDeviation_NoOverlap(t *testing.T) {
	ref := uniformRaster(t, 300, 100, red)
	cand := uniformRaster(t, 50, 50, red)

	tests := []struct {
		name string
		pose MergeResult
	}{
		{"right of reference", MergeResult{X: 300}},
		{"below reference", MergeResult{X: 150, Y: 100}},
		{"above reference", MergeResult{X: 150, Y: -60}},
		{"inside dead zone", MergeResult{X: 0}},
		{"rotated far away", MergeResult{X: 5000, Y: 5000, Angle: 0.01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := Deviation(ref, cand, tt.pose)
			if err != nil {
				t.Fatalf("Deviation failed: %v", err)
			}
			if ok {
				t.Error("expected no valid samples")
			}
		})
	}
}

func TestDeviation_Invalid(t *testing.T) {
	good := uniformRaster(t, 10, 10, red)
	if _, _, err := Deviation(good, nil, MergeResult{}); !errors.Is(err, ErrInvalidRaster) {
		t.Errorf("got %v, want ErrInvalidRaster", err)
	}
}

func TestDeviation_ColorDifference(t *testing.T) {
	ref := uniformRaster(t, 300, 100, color.NRGBA{100, 100, 100, 255})
	cand := uniformRaster(t, 300, 100, color.NRGBA{110, 90, 100, 255})
	dev, ok, err := Deviation(ref, cand, MergeResult{X: 0})
	if err != nil || !ok {
		t.Fatalf("Deviation failed: ok=%v err=%v", ok, err)
	}
	if dev != 20 {
		t.Errorf("deviation: got %v, want 20", dev)
	}
}

func TestDownscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	if got := downscale(img, 1); got != img {
		t.Error("factor 1 must return the input")
	}
	if got := downscale(img, 4).Bounds(); got != image.Rect(0, 0, 2, 1) {
		t.Errorf("factor 4 bounds: got %v", got)
	}
	if got := downscale(img, 8).Bounds(); !got.Empty() {
		t.Errorf("factor 8 bounds: got %v, want empty", got)
	}
}

func TestQualityFor(t *testing.T) {
	tests := []struct {
		dev  float64
		want Quality
	}{
		{0, QualityVeryGood},
		{59.9, QualityVeryGood},
		{60, QualityGood},
		{99.9, QualityGood},
		{100, QualityPoor},
	}
	for _, tt := range tests {
		if got := QualityFor(tt.dev); got != tt.want {
			t.Errorf("QualityFor(%v): got %s, want %s", tt.dev, got, tt.want)
		}
	}
}
