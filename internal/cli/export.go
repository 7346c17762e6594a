package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lawbridge/lawbridge/internal/config"
	"github.com/lawbridge/lawbridge/internal/export"
	"github.com/lawbridge/lawbridge/pkg/api"
)

func newExportCmd() *cobra.Command {
	var (
		file     string
		outDir   string
		title    string
		subtitle string
		prefix   string
	)
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export a conversation as a paginated PDF",
		Long: "Export writes <prefix>_<epoch-millis>.pdf into --out (default export.dir).\n" +
			"The conversation is read from the store by id, or from a YAML/JSON file with --file.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeConversationIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (file == "") {
				return errors.New("give either a conversation id or --file")
			}
			app := getApp(cmd)

			var conv api.Conversation
			if file != "" {
				data, err := readInput(cmd, file)
				if err != nil {
					return err
				}
				convs, err := decodeConversations(data)
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				if len(convs) != 1 {
					return fmt.Errorf("%s: expected one conversation, found %d", file, len(convs))
				}
				conv = convs[0]
				if err := checkTurns(conv.Turns); err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
			} else {
				var err error
				if conv, err = app.Store.Conversations.GetConversation(cmd.Context(), args[0]); err != nil {
					return err
				}
			}

			dir := outDir
			if strings.TrimSpace(dir) == "" {
				dir = config.ResolveExportDir(app.Cfg)
			}
			req := export.Request{Title: title, Subtitle: subtitle, Prefix: prefix}
			path, ok, err := app.Exporter.ExportToFile(cmd.Context(), conv, req, dir)
			if err != nil {
				if errors.Is(err, export.ErrExportFailed) {
					return errors.New("Export failed, please try again")
				}
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), export.NothingToExport)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "export a conversation file instead of a stored one (- for stdin)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default export.dir)")
	cmd.Flags().StringVar(&title, "title", "", "document title (default: \"<bot> Conversation\", then the conversation title)")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "line under the title (default: export date)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "filename prefix (default: bot name, then export.prefix)")
	return cmd
}

// checkTurns applies the store's rules to a conversation read from a file.
func checkTurns(turns []api.Turn) error {
	for i, t := range turns {
		if _, ok := api.ParseRole(string(t.Role)); !ok {
			return fmt.Errorf("turn %d: unknown role %q", i, t.Role)
		}
		if !api.ValidConfidence(t.Confidence) {
			return fmt.Errorf("turn %d: confidence %v outside [0, 1]", i, *t.Confidence)
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
