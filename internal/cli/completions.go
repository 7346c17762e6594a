package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lawbridge/lawbridge/internal/config"
	"github.com/lawbridge/lawbridge/internal/util"
	"github.com/lawbridge/lawbridge/internal/wire"
	"github.com/lawbridge/lawbridge/pkg/api"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "completion bash|zsh|fish",
		Short:                 "Generate shell completion scripts",
		Args:                  cobra.ExactArgs(1),
		ValidArgs:             []string{"bash", "zsh", "fish"},
		DisableFlagsInUseLine: true,
		Annotations:           map[string]string{standalone: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return fmt.Errorf("unsupported shell %q", args[0])
			}
		},
	}
	return cmd
}

const maxCompletions = 20

// completeConversationIDs offers stored conversation IDs ranked by a fuzzy
// match of the typed prefix against "id title". Completion runs without the
// root pre-run, so the store is opened here.
func completeConversationIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	v := viper.New()
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
	}
	if err := config.Load(ctx, v); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	app, err := wire.BuildApp(ctx, v, zap.NewNop())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer app.Close()

	items, _, err := app.Store.Conversations.ListConversations(ctx, api.ListQuery{Limit: 500})
	if err != nil {
		cobra.CompErrorln(err.Error())
		return nil, cobra.ShellCompDirectiveError
	}
	candidates := make([]string, 0, len(items))
	byLine := make(map[string]string, len(items))
	for _, s := range items {
		line := s.ID + " " + s.Title
		candidates = append(candidates, line)
		byLine[line] = s.ID + "\t" + s.Title
	}
	ranked := util.ScoreCompletions(toComplete, candidates, maxCompletions)
	out := make([]string, 0, len(ranked))
	for _, line := range ranked {
		out = append(out, byLine[line])
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
