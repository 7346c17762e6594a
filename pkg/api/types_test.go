package api

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceTierBoundaries(t *testing.T) {
	cases := []struct {
		in   float64
		want Tier
	}{
		{1.0, TierGood},
		{0.70, TierGood},
		{0.699999, TierWarn},
		{0.50, TierWarn},
		{0.4999, TierLow},
		{0, TierLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ConfidenceTier(tc.in), "score %v", tc.in)
	}
}

func TestConfidencePercent(t *testing.T) {
	assert.Equal(t, 92, ConfidencePercent(0.92))
	assert.Equal(t, 70, ConfidencePercent(0.699999))
	assert.Equal(t, 0, ConfidencePercent(0))
	assert.Equal(t, 100, ConfidencePercent(1))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("Bot")
	assert.True(t, ok)
	assert.Equal(t, RoleAssistant, r)

	r, ok = ParseRole(" user ")
	assert.True(t, ok)
	assert.Equal(t, RoleUser, r)

	_, ok = ParseRole("system")
	assert.False(t, ok)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "hello there", FirstLine("  hello   there\nworld\n", 0))
	assert.Equal(t, "", FirstLine(" \n ", 10))
	assert.Equal(t, "ééé", FirstLine("éééééé", 3))
}

func TestValidConfidence(t *testing.T) {
	assert.True(t, ValidConfidence(nil))
	assert.True(t, ValidConfidence(Confidence(0)))
	assert.True(t, ValidConfidence(Confidence(1)))
	assert.False(t, ValidConfidence(Confidence(7)))
	assert.False(t, ValidConfidence(Confidence(-3)))
	assert.False(t, ValidConfidence(Confidence(math.NaN())))
}
