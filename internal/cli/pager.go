package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/lawbridge/lawbridge/internal/present"
	"github.com/lawbridge/lawbridge/pkg/api"
)

const defaultPager = "less -FRSX"

func renderConversation(ctx context.Context, out, errOut io.Writer, c api.Conversation, opts present.Options) error {
	if opts.Mode == present.ModeTUI {
		return present.RenderConversation(ctx, out, c, opts)
	}
	return withPager(ctx, out, errOut, func(w io.Writer) error {
		return present.RenderConversation(ctx, w, c, opts)
	})
}

func renderMessage(ctx context.Context, out, errOut io.Writer, t api.Turn, opts present.Options) error {
	if opts.Mode == present.ModeTUI {
		return present.RenderMessage(ctx, out, t, opts)
	}
	return withPager(ctx, out, errOut, func(w io.Writer) error {
		return present.RenderMessage(ctx, w, t, opts)
	})
}

// withPager streams write through $PAGER (default less) when out is a
// terminal. If the pager cannot start the output goes straight to out.
func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	if !isTerminal(out) {
		return write(out)
	}
	pager := strings.TrimSpace(os.Getenv("PAGER"))
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout, cmd.Stderr = out, errOut
	pipe, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	werr := write(pipe)
	_ = pipe.Close()
	if err := cmd.Wait(); werr == nil {
		werr = err
	}
	return werr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth is the width of w when it is a terminal, else fallback.
func terminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}

// outputFlags are the presentation flags shared by render, show and list.
type outputFlags struct {
	mode      string
	width     int
	style     string
	indent    bool
	noHeaders bool
}

func addOutputFlags(cmd *cobra.Command, f *outputFlags, modes []string) {
	cmd.Flags().StringVarP(&f.mode, "output", "o", "", "output mode: "+strings.Join(modes, "|")+" (default render.mode)")
	cmd.Flags().IntVarP(&f.width, "width", "w", 0, "wrap width (0 uses render.width, or the terminal width)")
	cmd.Flags().StringVar(&f.style, "style", "", "glamour style for pretty output (default render.style)")
	cmd.Flags().BoolVar(&f.indent, "indent", false, "indent JSON output")
	cmd.Flags().BoolVar(&f.noHeaders, "noheaders", false, "hide column headers in listings")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}

func (f outputFlags) options(v *viper.Viper, out io.Writer) (present.Options, error) {
	raw := f.mode
	if raw == "" {
		raw = v.GetString("render.mode")
	}
	mode, ok := present.ParseMode(raw, isTerminal(out))
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --output: %s", raw)
	}
	width := f.width
	if width <= 0 {
		width = v.GetInt("render.width")
		if isTerminal(out) {
			width = min(width, terminalWidth(out, width))
		}
	}
	style := f.style
	if style == "" {
		style = v.GetString("render.style")
	}
	return present.Options{
		Mode:           mode,
		Width:          width,
		Style:          style,
		JSONIndent:     f.indent,
		Headers:        !f.noHeaders,
		UserLabel:      v.GetString("export.user_label"),
		AssistantLabel: v.GetString("export.assistant_label"),
	}, nil
}
