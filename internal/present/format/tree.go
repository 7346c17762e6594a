// Package format turns segmented answers into output for each surface.
package format

import (
	"strconv"
	"strings"

	"github.com/lawbridge/lawbridge/internal/segment"
	"github.com/lawbridge/lawbridge/pkg/api"
)

type NodeKind string

const (
	NodeHeading    NodeKind = "heading"
	NodeParagraph  NodeKind = "paragraph"
	NodeItem       NodeKind = "item"
	NodeConfidence NodeKind = "confidence"
)

// Node is one display element. Items carry their marker ("•" or "N.");
// the confidence node carries a Badge instead of runs.
type Node struct {
	Kind    NodeKind  `json:"kind"`
	Runs    []api.Run `json:"runs,omitempty"`
	Marker  string    `json:"marker,omitempty"`
	Ordered bool      `json:"ordered,omitempty"`
	Badge   *Badge    `json:"badge,omitempty"`
}

type Badge struct {
	Percent int      `json:"percent"`
	Tier    api.Tier `json:"tier"`
}

// Label is the badge text shown under an answer.
func (b Badge) Label() string {
	return strconv.Itoa(b.Percent) + "% Confidence"
}

// Text returns the node's runs without emphasis.
func (n Node) Text() string {
	var b strings.Builder
	for _, r := range n.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Tree is a display-ready answer.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// BuildTree lays out doc for display, followed by a confidence node when
// confidence is set. Blocks of unknown kind are skipped.
func BuildTree(doc api.Document, confidence *float64) Tree {
	t := Tree{Nodes: []Node{}}
	for _, b := range doc {
		switch b.Kind {
		case api.BlockHeading:
			t.Nodes = append(t.Nodes, Node{Kind: NodeHeading, Runs: segment.Runs(b.Text)})
		case api.BlockParagraph:
			t.Nodes = append(t.Nodes, Node{Kind: NodeParagraph, Runs: segment.Runs(strings.Join(b.Lines, " "))})
		case api.BlockList:
			for i, it := range b.Items {
				t.Nodes = append(t.Nodes, Node{
					Kind:    NodeItem,
					Runs:    segment.Runs(it),
					Marker:  segment.Marker(b.Ordered, i),
					Ordered: b.Ordered,
				})
			}
		}
	}
	if confidence != nil {
		t.Nodes = append(t.Nodes, Node{
			Kind: NodeConfidence,
			Badge: &Badge{
				Percent: api.ConfidencePercent(*confidence),
				Tier:    api.ConfidenceTier(*confidence),
			},
		})
	}
	return t
}

// TurnTree segments a turn's content and builds its tree.
func TurnTree(t api.Turn) Tree {
	return BuildTree(segment.Segment(t.Content), t.Confidence)
}
