package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lawbridge/lawbridge/pkg/api"
)

func newChatImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import conversations from YAML or JSON",
		Long: "Import reads one conversation, a list of conversations, or a multi-document\n" +
			"YAML stream. A conversation with an existing ID replaces the stored one.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			convs, err := decodeConversations(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			for _, c := range convs {
				out, err := app.Store.Conversations.ImportConversation(cmd.Context(), c)
				if err != nil {
					return err
				}
				app.Log.Debug("imported", zap.String("conversation", out.ID), zap.Int("turns", len(out.Turns)))
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", out.ID, out.Title)
			}
			return nil
		},
	}
	return cmd
}

// decodeConversations accepts JSON (object or array) or YAML (mapping,
// sequence, or several documents).
func decodeConversations(data []byte) ([]api.Conversation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty input")
	}
	switch trimmed[0] {
	case '[':
		var out []api.Conversation
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	case '{':
		var c api.Conversation
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return nil, err
		}
		return []api.Conversation{c}, nil
	}

	var out []api.Conversation
	dec := yaml.NewDecoder(bytes.NewReader(trimmed))
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		doc := &node
		if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
			doc = doc.Content[0]
		}
		switch doc.Kind {
		case yaml.SequenceNode:
			var cs []api.Conversation
			if err := doc.Decode(&cs); err != nil {
				return nil, err
			}
			out = append(out, cs...)
		case yaml.MappingNode:
			var c api.Conversation
			if err := doc.Decode(&c); err != nil {
				return nil, err
			}
			out = append(out, c)
		default:
			return nil, fmt.Errorf("line %d: expected a conversation or a list of conversations", doc.Line)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no conversations found")
	}
	for i := range out {
		out[i].Bot = strings.TrimSpace(out[i].Bot)
	}
	return out, nil
}
