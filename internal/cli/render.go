package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lawbridge/lawbridge/internal/adapter"
	"github.com/lawbridge/lawbridge/pkg/api"
)

var messageModes = []string{"auto", "plain", "pretty", "html", "json", "tui"}

func newRenderCmd() *cobra.Command {
	var out outputFlags
	var confidence float64
	var raw bool
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render one assistant answer to the terminal, HTML or JSON",
		Long: "Render segments an answer into headings, paragraphs and lists and prints it.\n" +
			"With --raw the input is an upstream AI payload (JSON object, array or text)\n" +
			"and the answer and confidence are extracted from it.",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{standalone: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			turn := api.Turn{Role: api.RoleAssistant, Content: string(data)}
			if raw {
				if turn, err = adapter.Normalize(data); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("confidence") {
				if confidence > 1 {
					confidence /= 100
				}
				if confidence < 0 || confidence > 1 {
					return fmt.Errorf("--confidence must be within [0, 1] or a percentage")
				}
				turn.Confidence = api.Confidence(confidence)
			}

			opts, err := out.options(getConfig(cmd), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return renderMessage(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), turn, opts)
		},
	}
	addOutputFlags(cmd, &out, messageModes)
	cmd.Flags().Float64VarP(&confidence, "confidence", "c", 0, "confidence score in [0,1] or percent, shown as a badge")
	cmd.Flags().BoolVar(&raw, "raw", false, "input is an upstream AI payload")
	return cmd
}

// readInput reads path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
