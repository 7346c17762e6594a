package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawbridge/lawbridge/internal/present"
	"github.com/lawbridge/lawbridge/internal/present/tui"
	"github.com/lawbridge/lawbridge/internal/util"
	"github.com/lawbridge/lawbridge/pkg/api"
)

var listModes = []string{"auto", "plain", "json", "ndjson", "tui"}

type listFlags struct {
	bot   string
	since string
	match string
	limit int
	all   bool
}

func (f listFlags) query() (api.ListQuery, error) {
	q := api.ListQuery{Bot: strings.TrimSpace(f.bot), Limit: f.limit}
	if f.since != "" {
		t, err := util.ParseSince(f.since, time.Now())
		if err != nil {
			return api.ListQuery{}, fmt.Errorf("invalid --since: %w", err)
		}
		q.Since = t
	}
	return q, nil
}

func addListFlags(cmd *cobra.Command, f *listFlags) {
	cmd.Flags().StringVar(&f.bot, "bot", "", "only conversations with this assistant")
	cmd.Flags().StringVar(&f.since, "since", "", "only conversations updated since (RFC3339, 2006-01-02, or relative like 36h, 3d, 2w)")
	cmd.Flags().StringVarP(&f.match, "match", "m", "", "fuzzy filter on title and bot")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 50, "page size")
}

func newChatListCmd() *cobra.Command {
	var lf listFlags
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			q, err := lf.query()
			if err != nil {
				return err
			}
			opts, err := out.options(app.Cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if opts.Mode == present.ModePretty {
				opts.Mode = present.ModePlain
			}

			if opts.Mode == present.ModeTUI {
				items, err := fetchAllSummaries(cmd.Context(), app.Store.Conversations, q, lf.match)
				if err != nil {
					return err
				}
				chosen, ok, err := tui.Pick(cmd.Context(), items, opts.Headers)
				if err != nil || !ok {
					return err
				}
				conv, err := app.Store.Conversations.GetConversation(cmd.Context(), chosen.ID)
				if err != nil {
					return err
				}
				return present.RenderConversation(cmd.Context(), cmd.OutOrStdout(), conv, opts)
			}

			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				sw, err := present.NewSummaryWriter(w, opts)
				if err != nil {
					return err
				}
				return streamSummaries(cmd.Context(), app.Store.Conversations, q, lf.all, lf.match, sw)
			})
		},
	}
	addListFlags(cmd, &lf)
	cmd.Flags().BoolVarP(&lf.all, "all", "a", false, "follow cursors through every page")
	addOutputFlags(cmd, &out, listModes)
	return cmd
}
