package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lawbridge/lawbridge/pkg/api"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Manage stored conversations",
	}
	cmd.AddCommand(newChatNewCmd())
	cmd.AddCommand(newChatAddCmd())
	cmd.AddCommand(newChatImportCmd())
	cmd.AddCommand(newChatListCmd())
	cmd.AddCommand(newChatShowCmd())
	cmd.AddCommand(newChatViewCmd())
	cmd.AddCommand(newChatDeleteCmd())
	return cmd
}

func newChatNewCmd() *cobra.Command {
	var bot string
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Start an empty conversation",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			conv, err := app.Store.Conversations.CreateConversation(cmd.Context(), api.Conversation{
				Title: strings.TrimSpace(strings.Join(args, " ")),
				Bot:   strings.TrimSpace(bot),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", conv.ID, conv.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&bot, "bot", "", "assistant name, used for the export title and filename")
	return cmd
}

func newChatDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:               "delete <id>",
		Short:             "Delete a conversation",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeConversationIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			conv, err := app.Store.Conversations.GetConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			desc := fmt.Sprintf("%q, %d turns", conv.Title, len(conv.Turns))
			if err := confirmDelete(cmd, "Delete conversation "+conv.ID+"?", desc, yes); err != nil {
				return err
			}
			if err := app.Store.Conversations.DeleteConversation(cmd.Context(), conv.ID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", conv.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// confirmDelete asks on the terminal; without one the caller must pass --yes.
func confirmDelete(cmd *cobra.Command, title, desc string, yes bool) error {
	if yes {
		return nil
	}
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return errors.New("confirmation required; rerun with --yes")
	}
	confirm := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(desc).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirm),
	))
	if err := form.RunWithContext(cmd.Context()); err != nil {
		return err
	}
	if !confirm {
		return errors.New("aborted")
	}
	return nil
}
