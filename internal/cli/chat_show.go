package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/lawbridge/lawbridge/internal/present"
	"github.com/lawbridge/lawbridge/internal/present/tui"
)

var conversationModes = []string{"auto", "plain", "pretty", "html", "json", "tui"}

func newChatShowCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:               "show <id>",
		Short:             "Print a conversation with role labels",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeConversationIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			conv, err := app.Store.Conversations.GetConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts, err := out.options(app.Cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return renderConversation(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), conv, opts)
		},
	}
	addOutputFlags(cmd, &out, conversationModes)
	return cmd
}

// newChatViewCmd opens the full-screen viewer, picking the conversation from
// a table when no id is given.
func newChatViewCmd() *cobra.Command {
	var lf listFlags
	var out outputFlags
	cmd := &cobra.Command{
		Use:               "view [id]",
		Short:             "Browse conversations in a full-screen viewer",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeConversationIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.New("view needs a terminal; use `chat show` instead")
			}
			opts, err := out.options(app.Cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			opts.Mode = present.ModeTUI

			id := ""
			if len(args) == 1 {
				id = args[0]
			} else {
				q, err := lf.query()
				if err != nil {
					return err
				}
				items, err := fetchAllSummaries(cmd.Context(), app.Store.Conversations, q, lf.match)
				if err != nil {
					return err
				}
				chosen, ok, err := tui.Pick(cmd.Context(), items, opts.Headers)
				if err != nil || !ok {
					return err
				}
				id = chosen.ID
			}
			conv, err := app.Store.Conversations.GetConversation(cmd.Context(), id)
			if err != nil {
				return err
			}
			return present.RenderConversation(cmd.Context(), cmd.OutOrStdout(), conv, opts)
		},
	}
	addListFlags(cmd, &lf)
	cmd.Flags().StringVar(&out.style, "style", "", "glamour style (default render.style)")
	cmd.Flags().BoolVar(&out.noHeaders, "noheaders", false, "hide column headers in the picker")
	return cmd
}
