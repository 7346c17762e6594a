package present

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lawbridge/lawbridge/internal/present/format"
	"github.com/lawbridge/lawbridge/internal/present/tui"
	"github.com/lawbridge/lawbridge/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeHTML
	ModeJSON
	ModeNDJSON
	ModeTUI
)

type Options struct {
	Mode           Mode
	Width          int
	Style          string
	JSONIndent     bool
	Headers        bool
	UserLabel      string
	AssistantLabel string
}

// ParseMode parses "plain", "pretty", "html", "json", "ndjson" or "tui".
// "auto" resolves to pretty on a terminal and plain otherwise.
func ParseMode(s string, tty bool) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "html":
		return ModeHTML, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "tui":
		return ModeTUI, true
	case "", "auto":
		if tty {
			return ModePretty, true
		}
		return ModePlain, true
	default:
		return ModePlain, false
	}
}

func (o Options) labels() (string, string) {
	u, a := o.UserLabel, o.AssistantLabel
	if u == "" {
		u = "YOUR QUESTION:"
	}
	if a == "" {
		a = "LEGAL ADVICE:"
	}
	return u, a
}

func (o Options) width() int {
	if o.Width <= 0 {
		return 80
	}
	return o.Width
}

// messageView is the JSON shape of a rendered turn.
type messageView struct {
	Role       api.Role    `json:"role"`
	Content    string      `json:"content"`
	Confidence *float64    `json:"confidence,omitempty"`
	Tree       format.Tree `json:"tree"`
}

type conversationView struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Bot      string        `json:"bot,omitempty"`
	Messages []messageView `json:"messages"`
}

func viewOf(t api.Turn) messageView {
	return messageView{Role: t.Role, Content: t.Content, Confidence: t.Confidence, Tree: format.TurnTree(t)}
}

// RenderMessage renders a single answer according to options.
func RenderMessage(ctx context.Context, w io.Writer, t api.Turn, opts Options) error {
	tree := format.TurnTree(t)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, viewOf(t), opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteJSON(w, viewOf(t), false)
	case ModeHTML:
		return format.WriteHTML(w, tree)
	case ModePretty:
		r, err := format.NewTermRenderer(opts.Style, opts.width())
		if err != nil {
			return err
		}
		return format.WritePretty(w, r, tree)
	case ModeTUI:
		return tui.View(ctx, "Message", func(width int) (string, error) {
			var buf bytes.Buffer
			o := opts
			o.Mode, o.Width = ModePretty, width
			err := RenderMessage(ctx, &buf, t, o)
			return buf.String(), err
		})
	default:
		return format.WritePlain(w, tree, opts.width())
	}
}

// RenderConversation renders every turn under its role label.
func RenderConversation(ctx context.Context, w io.Writer, c api.Conversation, opts Options) error {
	switch opts.Mode {
	case ModeJSON, ModeNDJSON:
		v := conversationView{ID: c.ID, Title: c.Title, Bot: c.Bot, Messages: make([]messageView, 0, len(c.Turns))}
		for _, t := range c.Turns {
			v.Messages = append(v.Messages, viewOf(t))
		}
		return format.WriteJSON(w, v, opts.JSONIndent && opts.Mode == ModeJSON)
	case ModeHTML:
		return writeHTMLConversation(ctx, w, c, opts)
	case ModePretty:
		return writePrettyConversation(ctx, w, c, opts)
	case ModeTUI:
		return tui.View(ctx, titleOf(c), func(width int) (string, error) {
			var buf bytes.Buffer
			o := opts
			o.Mode, o.Width = ModePretty, width
			err := writePrettyConversation(ctx, &buf, c, o)
			return buf.String(), err
		})
	default:
		return writePlainConversation(ctx, w, c, opts)
	}
}

func titleOf(c api.Conversation) string {
	if c.Bot != "" {
		return c.Title + " · " + c.Bot
	}
	return c.Title
}

func (o Options) labelFor(r api.Role) string {
	u, a := o.labels()
	if r == api.RoleAssistant {
		return a
	}
	return u
}

func writePlainConversation(ctx context.Context, w io.Writer, c api.Conversation, opts Options) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", titleOf(c)); err != nil {
		return err
	}
	last := len(c.Turns) - 1
	for i, t := range c.Turns {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, opts.labelFor(t.Role)); err != nil {
			return err
		}
		if err := format.WritePlain(w, format.TurnTree(t), opts.width()); err != nil {
			return err
		}
		sep := "\n"
		if t.Role == api.RoleAssistant && i < last {
			sep = "\n" + strings.Repeat("─", min(opts.width(), 40)) + "\n\n"
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
	}
	return nil
}

var labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))

func writePrettyConversation(ctx context.Context, w io.Writer, c api.Conversation, opts Options) error {
	r, err := format.NewTermRenderer(opts.Style, opts.width())
	if err != nil {
		return err
	}
	for _, t := range c.Turns {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "  "+labelStyle.Render(opts.labelFor(t.Role))+"\n"); err != nil {
			return err
		}
		if err := format.WritePretty(w, r, format.TurnTree(t)); err != nil {
			return err
		}
	}
	return nil
}

func writeHTMLConversation(ctx context.Context, w io.Writer, c api.Conversation, opts Options) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<article class=\"conversation\">\n<h2>%s</h2>\n", html.EscapeString(c.Title))
	for _, t := range c.Turns {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(&buf, "<section class=\"turn turn-%s\">\n<h4>%s</h4>\n", t.Role, html.EscapeString(opts.labelFor(t.Role)))
		if err := format.WriteHTML(&buf, format.TurnTree(t)); err != nil {
			return err
		}
		buf.WriteString("</section>\n")
	}
	buf.WriteString("</article>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// NewSummaryWriter returns the streaming writer for conversation listings.
func NewSummaryWriter(w io.Writer, opts Options) (format.SummaryWriter, error) {
	switch opts.Mode {
	case ModeJSON:
		return format.NewJSONStreamWriter(w, opts.JSONIndent), nil
	case ModeNDJSON:
		return format.NewNDJSONWriter(w), nil
	case ModePlain, ModePretty:
		return format.NewPlainStreamWriter(w, opts.Headers), nil
	default:
		return nil, errors.New("listing is not supported in this output mode")
	}
}
