// Package trend compares two compliance percentages.
package trend

import "math"

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Labels printed for a direction, plus the one used when there is no
// previous scan.
const (
	LabelImproving = "IMPROVING"
	LabelDeclining = "DECLINING"
	LabelSame      = "SAME"
	LabelFirstRun  = "FIRST_RUN"
)

type Trend struct {
	Delta     float64   `json:"delta"`
	Direction Direction `json:"direction"`
	From      float64   `json:"from"`
	To        float64   `json:"to"`
}

// Compute returns the change from prev to curr, both in percent.
func Compute(prev, curr float64) Trend {
	d := round(curr-prev, 1)

	dir := Flat
	if d > 0 {
		dir = Up
	} else if d < 0 {
		dir = Down
	}

	return Trend{
		Delta:     d,
		Direction: dir,
		From:      round(prev, 1),
		To:        round(curr, 1),
	}
}

func (t Trend) Label() string {
	switch t.Direction {
	case Up:
		return LabelImproving
	case Down:
		return LabelDeclining
	default:
		return LabelSame
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
