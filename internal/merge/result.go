package merge

import "math"

// MergeResult is the pose at which a candidate is placed on the reference.
//
// X and Y locate the candidate's top-left corner (after rotation about that
// corner) relative to the reference's origin. Angle is in radians; positive
// values rotate clockwise on screen. Deviation is the mean absolute RGB
// difference measured at this pose during the search (lower is better);
// math.MaxFloat64 means no overlapping samples were found.
type MergeResult struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Angle     float64 `json:"angle"`
	Deviation float64 `json:"deviation"`
}

// AngleDegrees returns Angle converted to degrees.
func (r MergeResult) AngleDegrees() float64 {
	return r.Angle * 180 / math.Pi
}

// SearchWindow is the range of offsets scanned at one pyramid level.
// Ranges are half-open: [XMin, XMax) and [YMin, YMax).
type SearchWindow struct {
	XMin  int `json:"x_min"`
	XMax  int `json:"x_max"`
	YMin  int `json:"y_min"`
	YMax  int `json:"y_max"`
	Scale int `json:"scale"`
}

// LevelResult records the winner of one pyramid level, in that level's pixels.
type LevelResult struct {
	Window SearchWindow `json:"window"`
	Best   MergeResult  `json:"best"`
	Found  bool         `json:"found"`
}

// SearchReport is the full outcome of a search.
type SearchReport struct {
	FirstScale int           `json:"first_scale"`
	Levels     []LevelResult `json:"levels"`
	Result     MergeResult   `json:"result"`
}

// Quality is an informal rating of a deviation score.
type Quality string

const (
	QualityVeryGood Quality = "very good"
	QualityGood     Quality = "good"
	QualityPoor     Quality = "poor"
)

// QualityFor rates a deviation: below 60 is very good, below 100 is good.
// It is advisory only; nothing in this package rejects a merge.
func QualityFor(deviation float64) Quality {
	switch {
	case deviation < 60:
		return QualityVeryGood
	case deviation < 100:
		return QualityGood
	default:
		return QualityPoor
	}
}
