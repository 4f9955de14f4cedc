package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanConfidence(t *testing.T) {
	assert.Equal(t, float32(0.0), MeanConfidence(nil))
	assert.Equal(t, float32(0.0), MeanConfidence([]Line{}))

	lines := []Line{
		{Text: "a", Confidence: 0.9},
		{Text: "b", Confidence: 0.5},
		{Text: "c", Confidence: 0.7},
	}
	assert.InDelta(t, 0.7, MeanConfidence(lines), 1e-6)
}

func TestJoinText(t *testing.T) {
	assert.Equal(t, "", JoinText(nil))
	assert.Equal(t, "one", JoinText([]Line{{Text: "one"}}))
	assert.Equal(t, "one\ntwo", JoinText([]Line{{Text: "one"}, {Text: "two"}}))
}
