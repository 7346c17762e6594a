package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawbridge/lawbridge/pkg/api"
)

func sampleDoc() api.Document {
	return api.Document{
		api.Heading("Short answer"),
		api.Paragraph("You **may** be entitled", "to a refund."),
		api.List(true, "Keep the receipt", "Write to the seller"),
		api.List(false, "Deadline is **14 days**"),
	}
}

func TestBuildTree(t *testing.T) {
	tree := BuildTree(append(sampleDoc(), api.Block{Kind: "table"}), api.Confidence(0.7))
	want := []Node{
		{Kind: NodeHeading, Runs: []api.Run{{Text: "Short answer"}}},
		{Kind: NodeParagraph, Runs: []api.Run{{Text: "You "}, {Text: "may", Bold: true}, {Text: " be entitled to a refund."}}},
		{Kind: NodeItem, Runs: []api.Run{{Text: "Keep the receipt"}}, Marker: "1.", Ordered: true},
		{Kind: NodeItem, Runs: []api.Run{{Text: "Write to the seller"}}, Marker: "2.", Ordered: true},
		{Kind: NodeItem, Runs: []api.Run{{Text: "Deadline is "}, {Text: "14 days", Bold: true}}, Marker: "•"},
		{Kind: NodeConfidence, Badge: &Badge{Percent: 70, Tier: api.TierGood}},
	}
	if diff := cmp.Diff(want, tree.Nodes); diff != "" {
		t.Fatalf("BuildTree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTreeWithoutConfidence(t *testing.T) {
	tree := BuildTree(api.Document{api.Paragraph("hi")}, nil)
	require.Len(t, tree.Nodes, 1)
	assert.Nil(t, tree.Nodes[0].Badge)

	empty := BuildTree(nil, nil)
	assert.NotNil(t, empty.Nodes)
	assert.Empty(t, empty.Nodes)
}

func TestBadgeTiers(t *testing.T) {
	for _, tc := range []struct {
		c     float64
		label string
		tier  api.Tier
	}{
		{0.92, "92% Confidence", api.TierGood},
		{0.5, "50% Confidence", api.TierWarn},
		{0.1, "10% Confidence", api.TierLow},
	} {
		tree := BuildTree(nil, api.Confidence(tc.c))
		require.Len(t, tree.Nodes, 1)
		assert.Equal(t, tc.label, tree.Nodes[0].Badge.Label())
		assert.Equal(t, tc.tier, tree.Nodes[0].Badge.Tier)
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown(BuildTree(sampleDoc(), api.Confidence(0.9)))
	want := "### Short answer\n\n" +
		"You **may** be entitled to a refund.\n\n" +
		"1. Keep the receipt\n2. Write to the seller\n\n" +
		"- Deadline is **14 days**\n"
	assert.Equal(t, want, got)
}

func TestMarkdownEscapes(t *testing.T) {
	tree := BuildTree(api.Document{
		api.Paragraph("2024. was busy"),
		api.Paragraph("see [s. 21] <Act> #1"),
		api.List(false, "- nested?"),
	}, nil)
	got := Markdown(tree)
	assert.Contains(t, got, "2024\\. was busy")
	assert.Contains(t, got, `see \[s. 21\] \<Act\> \#1`)
	assert.Contains(t, got, `- \- nested?`)
}

func TestTildeFenceStaysParagraph(t *testing.T) {
	tree := BuildTree(api.Document{
		api.Paragraph("~~~ not code"),
		api.Paragraph("after"),
	}, nil)
	assert.Contains(t, Markdown(tree), "\\~~~ not code")

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, tree))
	out := buf.String()
	assert.NotContains(t, out, "<pre>")
	assert.Contains(t, out, "<p>~~~ not code</p>")
	assert.Contains(t, out, "<p>after</p>")
}

func TestWritePlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlain(&buf, BuildTree(sampleDoc(), api.Confidence(0.55)), 80))
	want := "Short answer\n\n" +
		"You may be entitled to a refund.\n\n" +
		"1. Keep the receipt\n2. Write to the seller\n\n" +
		"• Deadline is 14 days\n\n" +
		"Confidence: 55% (warn)\n"
	assert.Equal(t, want, buf.String())
}

func TestWritePlainHangingIndent(t *testing.T) {
	var buf bytes.Buffer
	tree := BuildTree(api.Document{api.List(false, strings.Repeat("word ", 10))}, nil)
	require.NoError(t, WritePlain(&buf, tree, 22))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "• word"))
	for _, l := range lines[1:] {
		assert.True(t, strings.HasPrefix(l, "  word"), "continuation %q", l)
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, BuildTree(sampleDoc(), api.Confidence(0.31))))
	out := buf.String()
	assert.Contains(t, out, "<h3>Short answer</h3>")
	assert.Contains(t, out, "You <strong>may</strong> be entitled to a refund.")
	assert.Contains(t, out, "<ol>\n<li>Keep the receipt</li>")
	assert.Contains(t, out, "<li>Deadline is <strong>14 days</strong></li>")
	assert.Contains(t, out, `<p class="confidence confidence-low">31% Confidence</p>`)
}

func TestWritePretty(t *testing.T) {
	r, err := NewTermRenderer("notty", 60)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WritePretty(&buf, r, BuildTree(sampleDoc(), api.Confidence(0.92))))
	out := buf.String()
	assert.Contains(t, out, "Short answer")
	assert.Contains(t, out, "Keep the receipt")
	assert.Contains(t, out, "92% Confidence")
}

func TestJSONStreamWriter(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var buf bytes.Buffer
	jw := NewJSONStreamWriter(&buf, false)
	require.NoError(t, jw.WriteSummaries([]api.Summary{{ID: "a", CreatedAt: ts}}))
	require.NoError(t, jw.WriteSummaries([]api.Summary{{ID: "b", CreatedAt: ts}, {ID: "c", CreatedAt: ts}}))
	require.NoError(t, jw.Close())

	var got []api.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[2].ID)

	buf.Reset()
	empty := NewJSONStreamWriter(&buf, true)
	require.NoError(t, empty.Close())
	assert.Equal(t, "[]\n", buf.String())
}

func TestPlainStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPlainStreamWriter(&buf, true)
	require.NoError(t, pw.WriteSummaries([]api.Summary{{ID: "a", Title: "tab\there", Bot: "Bot", Turns: 3}}))
	require.NoError(t, pw.Close())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id"))
	assert.Contains(t, lines[1], `tab\there`)
}
