package segment

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawbridge/lawbridge/pkg/api"
)

func TestSegment(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want api.Document
	}{
		{
			name: "heading then paragraph",
			in:   "**Heading:**\nline one\nline two",
			want: api.Document{api.Heading("Heading"), api.Paragraph("line one", "line two")},
		},
		{
			name: "bullet to numbered switch",
			in:   "• item one\n• item two\n1. step one",
			want: api.Document{
				api.List(false, "item one", "item two"),
				api.List(true, "step one"),
			},
		},
		{
			name: "inline bullets after sentence",
			in:   "Intro text. • a • b • c",
			want: api.Document{api.Paragraph("Intro text."), api.List(false, "a", "b", "c")},
		},
		{
			name: "numbered to bullet switch",
			in:   "1. first\n2. second\n- dash item\n* star item",
			want: api.Document{
				api.List(true, "first", "second"),
				api.List(false, "dash item", "star item"),
			},
		},
		{
			name: "list closed by prose",
			in:   "- a\n- b\nThat is all.",
			want: api.Document{api.List(false, "a", "b"), api.Paragraph("That is all.")},
		},
		{
			name: "unmatched bold is not a heading",
			in:   "**Important note\nsecond line",
			want: api.Document{api.Paragraph("**Important note", "second line")},
		},
		{
			name: "double star line is not a bullet",
			in:   "**bold** start of prose",
			want: api.Document{api.Paragraph("**bold** start of prose")},
		},
		{
			name: "inline emphasis kept in items",
			in:   "1. **Court Fees:** ₹500",
			want: api.Document{api.List(true, "**Court Fees:** ₹500")},
		},
		{
			name: "heading with trailing text",
			in:   "**Timeline:** 6-12 months",
			want: api.Document{api.Heading("Timeline: 6-12 months")},
		},
		{
			name: "blank lines do not split lists",
			in:   "• a\n\n\n• b",
			want: api.Document{api.List(false, "a", "b")},
		},
		{
			name: "multiple bullets on one line without spaces",
			in:   "•one•two• •three",
			want: api.Document{api.List(false, "one", "two", "three")},
		},
		{
			name: "crlf input",
			in:   "**Summary:**\r\nShort answer.\r\n",
			want: api.Document{api.Heading("Summary"), api.Paragraph("Short answer.")},
		},
		{
			name: "consecutive headings",
			in:   "**A:**\n**B:**",
			want: api.Document{api.Heading("A"), api.Heading("B")},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Segment(tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Segment(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestSegmentTotality(t *testing.T) {
	inputs := []string{
		"x",
		"**",
		"•",
		"- ",
		"1.",
		"1. ",
		"::**",
		"• • •",
		"\n\n**:**\n\n",
		strings.Repeat("word ", 500),
	}
	for _, in := range inputs {
		doc := Segment(in)
		require.NotEmpty(t, doc, "input %q", in)
	}
}

func TestSegmentWhitespaceOnly(t *testing.T) {
	for _, in := range []string{"", " ", "\n", " \t\n  \n", "\r\n\r\n"} {
		doc := Segment(in)
		require.Len(t, doc, 1, "input %q", in)
		assert.Equal(t, api.BlockParagraph, doc[0].Kind)
		assert.Equal(t, strings.TrimSpace(in), strings.TrimSpace(strings.Join(doc[0].Lines, "")))
	}
}

func TestSegmentIsPure(t *testing.T) {
	in := "**Cost Factors:**\n- a\n- b\n1. c\nprose\nmore prose"
	first := Segment(in)
	second := Segment(in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated segmentation differs:\n%s", diff)
	}
}

func TestStepDoesNotAliasState(t *testing.T) {
	s0 := state{lines: make([]string, 1, 8)}
	s0.lines[0] = "first"

	s1, _ := step(s0, "second")
	s2, _ := step(s0, "other")

	assert.Equal(t, []string{"first", "second"}, s1.lines)
	assert.Equal(t, []string{"first", "other"}, s2.lines)
	assert.Equal(t, []string{"first"}, s0.lines)
}

func TestRuns(t *testing.T) {
	cases := []struct {
		in   string
		want []api.Run
	}{
		{"plain **bold** plain", []api.Run{{Text: "plain "}, {Text: "bold", Bold: true}, {Text: " plain"}}},
		{"no markers", []api.Run{{Text: "no markers"}}},
		{"**all bold**", []api.Run{{Text: "all bold", Bold: true}}},
		{"tail **open", []api.Run{{Text: "tail "}, {Text: "open", Bold: true}}},
		{"trailing **", []api.Run{{Text: "trailing "}}},
		{"", []api.Run{}},
	}
	for _, tc := range cases {
		got := Runs(tc.in)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("Runs(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestFlatten(t *testing.T) {
	doc := api.Document{
		api.Heading("Answer"),
		api.Paragraph("first **line**", "second line"),
		api.List(true, "step", "**next** step"),
		api.List(false, "point"),
		{Kind: api.BlockKind("table")},
	}
	want := []string{
		"Answer",
		"first line second line",
		"1. step",
		"2. next step",
		"• point",
	}
	assert.Equal(t, want, Flatten(doc))
}

func TestMarkerIsPositional(t *testing.T) {
	doc := Segment("7. seventh\n9. ninth")
	require.Len(t, doc, 1)
	assert.Equal(t, []string{"1. seventh", "2. ninth"}, Flatten(doc))
}
