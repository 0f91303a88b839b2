package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPercent(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{name: "zero", input: 0, want: 0},
		{name: "one", input: 1, want: 100},
		{name: "quarter", input: 0.25, want: 25},
		{name: "rounds half up", input: 0.12345, want: 12.35},
		{name: "rounds down", input: 0.12344, want: 12.34},
		{name: "confidence cap", input: 0.95, want: 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPercent(tt.input))
		})
	}
}

func TestFromPercent(t *testing.T) {
	assert.Equal(t, 0.45, FromPercent(45))
	assert.Equal(t, 1.0, FromPercent(100))
	assert.Equal(t, 0.0, FromPercent(0))
}
