package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/lawbridge/lawbridge/pkg/api"
)

const untitled = "Untitled conversation"

// prepare fills ID, title and timestamps and canonicalises roles before a
// conversation is stored.
func prepare(c api.Conversation, now time.Time) (api.Conversation, error) {
	c = c.Snapshot()
	if strings.TrimSpace(c.ID) == "" {
		c.ID = api.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.CreatedAt = c.CreatedAt.UTC()
	for i, t := range c.Turns {
		t, err := prepareTurn(t, c.CreatedAt)
		if err != nil {
			return api.Conversation{}, fmt.Errorf("turn %d: %w", i, err)
		}
		c.Turns[i] = t
	}
	if strings.TrimSpace(c.Title) == "" {
		c.Title = deriveTitle(c.Turns)
	}
	return c, nil
}

func prepareTurn(t api.Turn, now time.Time) (api.Turn, error) {
	role, ok := api.ParseRole(string(t.Role))
	if !ok {
		return api.Turn{}, fmt.Errorf("%w: unknown role %q", ErrInvalid, t.Role)
	}
	t.Role = role
	if !api.ValidConfidence(t.Confidence) {
		return api.Turn{}, fmt.Errorf("%w: confidence %v outside [0, 1]", ErrInvalid, *t.Confidence)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

// deriveTitle uses the first line of the first question.
func deriveTitle(turns []api.Turn) string {
	for _, t := range turns {
		if t.Role != api.RoleUser {
			continue
		}
		if line := api.FirstLine(t.Content, 60); line != "" {
			return line
		}
	}
	return untitled
}

type cursorToken struct {
	ts time.Time
	id string
}

func parseCursorToken(s string) (cursorToken, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "|", 2)
	if len(parts) != 2 {
		return cursorToken{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return cursorToken{}, false
	}
	id := strings.TrimSpace(parts[1])
	if id == "" {
		return cursorToken{}, false
	}
	return cursorToken{ts: ts, id: id}, true
}

func encodeCursorToken(s api.Summary) string {
	return fmt.Sprintf("%s|%s", s.CreatedAt.UTC().Format(time.RFC3339Nano), s.ID)
}

// before reports whether s sorts after the cursor in newest-first order.
func (c cursorToken) before(s api.Summary) bool {
	return s.CreatedAt.Before(c.ts) || (s.CreatedAt.Equal(c.ts) && s.ID < c.id)
}

// buildPage trims a limit+1 result to limit and derives the cursors.
func buildPage(out []api.Summary, limit int, hasCursor bool) ([]api.Summary, api.Page) {
	var page api.Page
	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	if len(out) == 0 {
		return out, page
	}
	if hasMore {
		page.Next = encodeCursorToken(out[len(out)-1])
	}
	if hasCursor {
		page.Prev = encodeCursorToken(out[0])
	}
	return out, page
}
