package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lawbridge/lawbridge/internal/adapter"
	"github.com/lawbridge/lawbridge/internal/editor"
	"github.com/lawbridge/lawbridge/pkg/api"
)

func newChatAddCmd() *cobra.Command {
	var (
		role       string
		confidence float64
		edit       bool
		raw        string
	)
	cmd := &cobra.Command{
		Use:   "add <id> [text...]",
		Short: "Append a turn to a conversation",
		Long: "Append a question or an answer. The text comes from the arguments, stdin,\n" +
			"$EDITOR with --edit, or an upstream AI payload with --raw <file|->.",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeConversationIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			id := args[0]
			conv, err := app.Store.Conversations.GetConversation(cmd.Context(), id)
			if err != nil {
				return err
			}

			var turn api.Turn
			switch {
			case raw != "":
				data, err := readInput(cmd, raw)
				if err != nil {
					return err
				}
				if turn, err = adapter.Normalize(data); err != nil {
					return err
				}
			case edit:
				r, ok := api.ParseRole(role)
				if !ok {
					return fmt.Errorf("invalid --role: %s", role)
				}
				var conf *float64
				if cmd.Flags().Changed("confidence") {
					conf = api.Confidence(confidence)
				}
				t, done, err := editTurn(cmd, conv, r, conf, strings.Join(args[1:], " "))
				if err != nil || done {
					return err
				}
				turn = t
			default:
				r, ok := api.ParseRole(role)
				if !ok {
					return fmt.Errorf("invalid --role: %s", role)
				}
				text := strings.Join(args[1:], " ")
				if strings.TrimSpace(text) == "" {
					data, err := readInput(cmd, "-")
					if err != nil {
						return err
					}
					text = string(data)
				}
				turn = api.Turn{Role: r, Content: strings.TrimSpace(text)}
			}

			if cmd.Flags().Changed("confidence") && !edit {
				c := confidence
				if c > 1 {
					c /= 100
				}
				if c < 0 || c > 1 {
					return errors.New("--confidence must be within [0, 1] or a percentage")
				}
				turn.Confidence = api.Confidence(c)
			}
			if turn.Content == "" {
				return errors.New("empty turn")
			}

			conv, err = app.Store.Conversations.AppendTurn(cmd.Context(), id, turn)
			if err != nil {
				return err
			}
			app.Log.Debug("turn appended", zap.String("conversation", id), zap.String("role", string(turn.Role)), zap.Int("turns", len(conv.Turns)))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d turns\n", conv.ID, len(conv.Turns))
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "user", "turn role: user|assistant")
	cmd.Flags().Float64VarP(&confidence, "confidence", "c", 0, "answer confidence in [0,1] or percent")
	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "compose the turn in $EDITOR")
	cmd.Flags().StringVar(&raw, "raw", "", "read an upstream AI payload from a file or - for stdin")
	cmd.MarkFlagsMutuallyExclusive("edit", "raw")
	_ = cmd.RegisterFlagCompletionFunc("role", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"user", "assistant"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// editTurn opens the editor on a draft turn. done is true when the user left
// the draft unchanged or empty and nothing should be stored.
func editTurn(cmd *cobra.Command, conv api.Conversation, role api.Role, conf *float64, body string) (api.Turn, bool, error) {
	app := getApp(cmd)
	path, err := editor.PathForID(conv.ID)
	if err != nil {
		return api.Turn{}, false, err
	}
	initial := []byte(editor.ComposeTurn(conv.Title, role, conf, body))
	out, changed, err := editor.OpenAt(path, initial)
	if err != nil {
		return api.Turn{}, false, err
	}
	_ = os.Remove(path)

	if !changed && body == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No edits; conversation unchanged.")
		return api.Turn{}, true, nil
	}
	turn, err := editor.ParseEditedTurn(string(out))
	if err != nil {
		return api.Turn{}, false, err
	}
	if turn.Content == "" {
		if app.Cfg.GetBool("editor.delete_empty") {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Turn aborted: empty content.")
			return api.Turn{}, true, nil
		}
		return api.Turn{}, false, errors.New("turn aborted: empty content")
	}
	return turn, false, nil
}
