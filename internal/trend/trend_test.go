package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		prev, curr float64
		delta      float64
		dir        Direction
		label      string
	}{
		{50, 71.43, 21.4, Up, LabelImproving},
		{80, 60, -20, Down, LabelDeclining},
		{66.7, 66.66, 0, Flat, LabelSame},
	}
	for _, tt := range tests {
		got := Compute(tt.prev, tt.curr)
		assert.InDelta(t, tt.delta, got.Delta, 0.001)
		assert.Equal(t, tt.dir, got.Direction)
		assert.Equal(t, tt.label, got.Label())
	}
}
