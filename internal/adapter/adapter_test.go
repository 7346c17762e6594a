package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawbridge/lawbridge/pkg/api"
)

func TestNormalizeShapes(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		content string
		conf    *float64
	}{
		{"output field", `{"output":"**Answer:** yes"}`, "**Answer:** yes", nil},
		{"answer before response", `{"answer":"a","response":"r"}`, "a", nil},
		{"response", `{"response":"r","confidence":0.8}`, "r", api.Confidence(0.8)},
		{"estimate", `{"estimate":"cost: 500"}`, "cost: 500", nil},
		{"nested data", `{"data":{"answer":"nested","confidence":91}}`, "nested", api.Confidence(0.91)},
		{"percent confidence", `{"text":"t","confidence_score":89}`, "t", api.Confidence(0.89)},
		{"skips empty field", `{"output":"  ","answer":"fallback"}`, "fallback", nil},
		{"json string", `"just text"`, "just text", nil},
		{"raw text", "Plain answer\n• one", "Plain answer\n• one", nil},
		{"array", `[{"output":"first"}]`, "first", nil},
		{"clamped", `{"output":"x","confidence":-3}`, "x", api.Confidence(0)},
		{"over hundred", `{"output":"x","confidence":250}`, "x", api.Confidence(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			turn, err := Normalize([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, api.RoleAssistant, turn.Role)
			assert.Equal(t, tc.content, turn.Content)
			if tc.conf == nil {
				assert.Nil(t, turn.Confidence)
				return
			}
			require.NotNil(t, turn.Confidence)
			assert.InDelta(t, *tc.conf, *turn.Confidence, 1e-9)
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", `{}`, `{"output":""}`, `""`, `[]`, `{"confidence":0.9}`} {
		_, err := Normalize([]byte(raw))
		assert.ErrorIs(t, err, ErrEmptyResponse, "input %q", raw)
	}
}
