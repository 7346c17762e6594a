// Package export lays a conversation out onto fixed-size pages and renders the
// result to PDF.
//
// Layout is pure: it produces positioned drawing operations only, so page
// breaking can be tested without a PDF backend. The Backend turns those
// operations into a document.
package export

import (
	"fmt"

	"github.com/lawbridge/lawbridge/internal/segment"
	"github.com/lawbridge/lawbridge/pkg/api"
)

// Font selects the face used for a text operation.
type Font struct {
	Bold bool
	Size float64
}

// Measurer reports the rendered width of s in page units.
type Measurer interface {
	StringWidth(s string, f Font) float64
}

// Options controls page geometry and the fixed strings of an export.
// Units are millimetres.
type Options struct {
	PageWidth      float64
	PageHeight     float64
	Margin         float64
	Title          string
	Subtitle       string
	UserLabel      string
	AssistantLabel string
	Disclaimer     string

	// Font sizes in points.
	TitleSize float64
	LabelSize float64
	BodySize  float64

	// Vertical advances in millimetres. LineHeight applies to the subtitle,
	// body and confidence lines.
	TitleHeight  float64
	LabelHeight  float64
	LineHeight   float64
	TurnGap      float64
	SeparatorGap float64
}

const (
	DefaultPageWidth      = 210.0
	DefaultPageHeight     = 297.0
	DefaultMargin         = 15.0
	DefaultTitle          = "LawBridge Chat Conversation"
	DefaultUserLabel      = "YOUR QUESTION:"
	DefaultAssistantLabel = "LEGAL ADVICE:"
	DefaultDisclaimer     = "AI-generated legal information, not a substitute for advice from a qualified lawyer."

	DefaultTitleSize    = 16.0
	DefaultLabelSize    = 11.0
	DefaultBodySize     = 10.0
	DefaultTitleHeight  = 10.0
	DefaultLabelHeight  = 7.0
	DefaultLineHeight   = 6.0
	DefaultTurnGap      = 5.0
	DefaultSeparatorGap = 6.0
)

// DefaultOptions returns A4 portrait with the standard labels.
func DefaultOptions() Options {
	return Options{
		PageWidth:      DefaultPageWidth,
		PageHeight:     DefaultPageHeight,
		Margin:         DefaultMargin,
		Title:          DefaultTitle,
		UserLabel:      DefaultUserLabel,
		AssistantLabel: DefaultAssistantLabel,
		Disclaimer:     DefaultDisclaimer,
		TitleSize:      DefaultTitleSize,
		LabelSize:      DefaultLabelSize,
		BodySize:       DefaultBodySize,
		TitleHeight:    DefaultTitleHeight,
		LabelHeight:    DefaultLabelHeight,
		LineHeight:     DefaultLineHeight,
		TurnGap:        DefaultTurnGap,
		SeparatorGap:   DefaultSeparatorGap,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PageWidth <= 0 {
		o.PageWidth = d.PageWidth
	}
	if o.PageHeight <= 0 {
		o.PageHeight = d.PageHeight
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.UserLabel == "" {
		o.UserLabel = d.UserLabel
	}
	if o.AssistantLabel == "" {
		o.AssistantLabel = d.AssistantLabel
	}
	if o.Disclaimer == "" {
		o.Disclaimer = d.Disclaimer
	}
	for _, f := range []struct{ v, def *float64 }{
		{&o.TitleSize, &d.TitleSize},
		{&o.LabelSize, &d.LabelSize},
		{&o.BodySize, &d.BodySize},
		{&o.TitleHeight, &d.TitleHeight},
		{&o.LabelHeight, &d.LabelHeight},
		{&o.LineHeight, &d.LineHeight},
		{&o.TurnGap, &d.TurnGap},
		{&o.SeparatorGap, &d.SeparatorGap},
	} {
		if *f.v <= 0 {
			*f.v = *f.def
		}
	}
	return o
}

// ContentWidth is the usable line width between the side margins.
func (o Options) ContentWidth() float64 { return o.PageWidth - 2*o.Margin }

// Bottom is the lowest y a content line may reach.
func (o Options) Bottom() float64 { return o.PageHeight - o.Margin }

func (o Options) titleFont() Font      { return Font{Bold: true, Size: o.TitleSize} }
func (o Options) subtitleFont() Font   { return Font{Size: o.BodySize} }
func (o Options) labelFont() Font      { return Font{Bold: true, Size: o.LabelSize} }
func (o Options) bodyFont() Font       { return Font{Size: o.BodySize} }
func (o Options) confidenceFont() Font { return Font{Bold: true, Size: o.BodySize - 1} }

// The footer block sits below the bottom margin and is not configurable.
var (
	footerFont     = Font{Size: 8}
	disclaimerFont = Font{Size: 7}
)

const (
	headerGap         = 9.0
	footerOffset      = 3.0
	footerAdvance     = 4.0
	disclaimerAdvance = 3.0
)

type OpKind int

const (
	OpText OpKind = iota
	OpRule
)

// Op is a single positioned drawing operation. For OpText, (X, Y) is the top
// left of a cell W wide and H tall; for OpRule it is a horizontal line from X
// to X+W at Y.
type Op struct {
	Kind  OpKind
	X, Y  float64
	W, H  float64
	Text  string
	Font  Font
	Align string
}

type Page struct {
	Ops []Op
}

// Document is a fully laid out export.
type Document struct {
	Options Options
	Pages   []Page
}

// Texts returns the text of every text operation on page i, in order.
func (d Document) Texts(i int) []string {
	var out []string
	for _, op := range d.Pages[i].Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Layout paginates conv. It reports false, with an empty document, when the
// conversation has no turns.
func Layout(conv api.Conversation, opts Options, m Measurer) (Document, bool) {
	if len(conv.Turns) == 0 {
		return Document{}, false
	}
	l := &layouter{opts: opts.withDefaults(), m: m}
	l.newPage()

	o := l.opts
	l.text(o.Title, o.titleFont(), o.TitleHeight)
	if o.Subtitle != "" {
		l.text(o.Subtitle, o.subtitleFont(), o.LineHeight)
	}
	l.y += headerGap

	last := len(conv.Turns) - 1
	for i, t := range conv.Turns {
		label := o.UserLabel
		if t.Role == api.RoleAssistant {
			label = o.AssistantLabel
		}
		l.text(label, o.labelFont(), o.LabelHeight)
		for _, para := range segment.Flatten(segment.Segment(t.Content)) {
			for _, line := range wrap(para, o.ContentWidth(), o.bodyFont(), m) {
				l.text(line, o.bodyFont(), o.LineHeight)
			}
		}
		if t.Confidence != nil {
			l.text(fmt.Sprintf("Confidence: %d%%", api.ConfidencePercent(*t.Confidence)), o.confidenceFont(), o.LineHeight)
		}
		if t.Role == api.RoleAssistant && i < last {
			l.rule()
			continue
		}
		l.y += o.TurnGap
	}

	l.stampFooters()
	return Document{Options: l.opts, Pages: l.pages}, true
}

type layouter struct {
	opts  Options
	m     Measurer
	pages []Page
	y     float64
}

func (l *layouter) newPage() {
	l.pages = append(l.pages, Page{})
	l.y = l.opts.Margin
}

// reserve starts a new page when h more millimetres would cross the bottom margin.
func (l *layouter) reserve(h float64) {
	if l.y+h > l.opts.Bottom() {
		l.newPage()
	}
}

func (l *layouter) add(op Op) {
	p := &l.pages[len(l.pages)-1]
	p.Ops = append(p.Ops, op)
}

func (l *layouter) text(s string, f Font, advance float64) {
	l.reserve(advance)
	l.add(Op{Kind: OpText, X: l.opts.Margin, Y: l.y, W: l.opts.ContentWidth(), H: advance, Text: s, Font: f, Align: "L"})
	l.y += advance
}

func (l *layouter) rule() {
	gap := l.opts.SeparatorGap
	l.reserve(gap)
	l.add(Op{Kind: OpRule, X: l.opts.Margin, Y: l.y + gap/2, W: l.opts.ContentWidth()})
	l.y += gap
}

// stampFooters writes "Page X of N" and the disclaimer below the bottom
// margin of every page. It runs once N is known.
func (l *layouter) stampFooters() {
	n := len(l.pages)
	disclaimer := wrap(l.opts.Disclaimer, l.opts.ContentWidth(), disclaimerFont, l.m)
	for i := range l.pages {
		y := l.opts.Bottom() + footerOffset
		footer := fmt.Sprintf("Page %d of %d", i+1, n)
		l.pages[i].Ops = append(l.pages[i].Ops, Op{Kind: OpText, X: l.opts.Margin, Y: y, W: l.opts.ContentWidth(), H: footerAdvance, Text: footer, Font: footerFont, Align: "C"})
		y += footerAdvance
		for _, d := range disclaimer {
			l.pages[i].Ops = append(l.pages[i].Ops, Op{Kind: OpText, X: l.opts.Margin, Y: y, W: l.opts.ContentWidth(), H: disclaimerAdvance, Text: d, Font: disclaimerFont, Align: "C"})
			y += disclaimerAdvance
		}
	}
}
