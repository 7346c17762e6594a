// Package adapter turns upstream AI payloads into assistant turns.
package adapter

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lawbridge/lawbridge/pkg/api"
)

var ErrEmptyResponse = errors.New("adapter: empty response")

// Content paths tried in order on JSON object payloads.
var contentPaths = []string{
	"output",
	"answer",
	"response",
	"estimate",
	"text",
	"data.answer",
	"data.response",
	"data.output",
}

var confidencePaths = []string{
	"confidence",
	"confidence_score",
	"data.confidence",
}

// Normalize extracts the answer text and optional confidence from raw.
// Objects are searched by field, a JSON string is used as-is and anything
// that is not JSON is taken as the answer text itself.
func Normalize(raw []byte) (api.Turn, error) {
	turn := api.Turn{Role: api.RoleAssistant}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return turn, ErrEmptyResponse
	}
	if !gjson.Valid(trimmed) {
		turn.Content = trimmed
		return turn, nil
	}

	res := gjson.Parse(trimmed)
	switch {
	case res.Type == gjson.String:
		turn.Content = strings.TrimSpace(res.String())
	case res.IsArray():
		// n8n webhooks answer with a one-element array.
		first := res.Get("0")
		if !first.IsObject() {
			return turn, ErrEmptyResponse
		}
		turn.Content, turn.Confidence = fromObject(first)
	case res.IsObject():
		turn.Content, turn.Confidence = fromObject(res)
	default:
		turn.Content = trimmed
	}
	if turn.Content == "" {
		return turn, ErrEmptyResponse
	}
	return turn, nil
}

func fromObject(obj gjson.Result) (string, *float64) {
	var content string
	for _, p := range contentPaths {
		v := obj.Get(p)
		if v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			content = strings.TrimSpace(v.String())
			break
		}
	}
	for _, p := range confidencePaths {
		v := obj.Get(p)
		if v.Type == gjson.Number {
			return content, api.Confidence(scaleConfidence(v.Float()))
		}
	}
	return content, nil
}

// scaleConfidence maps percentages (1, 100] to [0,1] and clamps the result.
func scaleConfidence(c float64) float64 {
	if c > 1 {
		c /= 100
	}
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
