package api

import (
	"math"
	"strings"
	"time"
)

// BlockKind identifies the shape of a Block.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
)

// Block is one typed unit of segmented content.
// Only the fields matching Kind are populated.
type Block struct {
	Kind    BlockKind `json:"kind"`
	Text    string    `json:"text,omitempty"`
	Lines   []string  `json:"lines,omitempty"`
	Ordered bool      `json:"ordered,omitempty"`
	Items   []string  `json:"items,omitempty"`
}

func Heading(text string) Block {
	return Block{Kind: BlockHeading, Text: text}
}

func Paragraph(lines ...string) Block {
	return Block{Kind: BlockParagraph, Lines: append([]string(nil), lines...)}
}

func List(ordered bool, items ...string) Block {
	return Block{Kind: BlockList, Ordered: ordered, Items: append([]string(nil), items...)}
}

// Document is a segmented answer in display order.
type Document []Block

// Run is a span of inline text with its emphasis.
type Run struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole accepts the canonical roles plus the aliases the chat clients send.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "you":
		return RoleUser, true
	case "assistant", "bot", "ai":
		return RoleAssistant, true
	default:
		return "", false
	}
}

// Turn is one message in a conversation.
type Turn struct {
	Role       Role      `json:"role" yaml:"role"`
	Content    string    `json:"content" yaml:"content"`
	Confidence *float64  `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Conversation is an append-only sequence of turns.
type Conversation struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Bot       string    `json:"bot,omitempty" yaml:"bot,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Turns     []Turn    `json:"turns" yaml:"turns"`
}

// Append adds a turn at the end of the conversation.
func (c *Conversation) Append(t Turn) {
	c.Turns = append(c.Turns, t)
}

// Snapshot returns a copy whose turn slice is independent of c.
func (c Conversation) Snapshot() Conversation {
	out := c
	out.Turns = make([]Turn, len(c.Turns))
	for i, t := range c.Turns {
		if t.Confidence != nil {
			v := *t.Confidence
			t.Confidence = &v
		}
		out.Turns[i] = t
	}
	return out
}

// Confidence returns a pointer to v, for building turns inline.
func Confidence(v float64) *float64 { return &v }

// ValidConfidence reports whether c is absent or a score in [0,1].
func ValidConfidence(c *float64) bool {
	return c == nil || (*c >= 0 && *c <= 1)
}

type Tier string

const (
	TierGood Tier = "good"
	TierWarn Tier = "warn"
	TierLow  Tier = "low"
)

// ConfidenceTier classifies a score in [0,1]. Both thresholds are inclusive.
func ConfidenceTier(c float64) Tier {
	switch {
	case c >= 0.70:
		return TierGood
	case c >= 0.50:
		return TierWarn
	default:
		return TierLow
	}
}

// ConfidencePercent rounds a score in [0,1] to the nearest integer percent.
func ConfidencePercent(c float64) int {
	return int(math.Round(c * 100))
}
