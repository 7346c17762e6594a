package editor

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lawbridge/lawbridge/pkg/api"
)

const (
	RolePrefix       = "Role: "
	ConfidencePrefix = "Confidence: "
)

// ComposeTurn creates the text presented to the editor for a new turn.
func ComposeTurn(conversation string, role api.Role, confidence *float64, body string) string {
	var b bytes.Buffer
	b.WriteString("# LawBridge turn for " + conversation + "\n")
	b.WriteString("# Lines starting with '#' are ignored.\n")
	b.WriteString("# Role is user or assistant. Confidence (0-1 or percent) is optional.\n")
	b.WriteString("# After '---', write the message; **Heading:** lines and • bullets are kept.\n")
	b.WriteString(RolePrefix)
	b.WriteString(string(role))
	b.WriteString("\n")
	b.WriteString(ConfidencePrefix)
	if confidence != nil {
		b.WriteString(strconv.FormatFloat(*confidence, 'g', -1, 64))
	}
	b.WriteString("\n---\n")
	if body != "" {
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		b.WriteString(body)
	}
	return b.String()
}

// PreferredEditor resolves the editor command: $VISUAL, then $EDITOR, then the
// first of a few common editors found on PATH.
func PreferredEditor() (string, error) {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}
	for _, name := range fallbackEditors {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

var fallbackEditors = []string{"nvim", "vim", "vi", "nano"}

// PathForID returns the scratch file used to edit a turn of conversation id.
func PathForID(id string) (string, error) {
	name := sanitize(id) + ".lawbridge.md"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "lawbridge", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "lawbridge", "edit", name), nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func writeScratch(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// editorCommand builds the process that edits path. Commands taken from the
// environment may carry flags ("code -w"), so they run through sh.
func editorCommand(path string) (*exec.Cmd, error) {
	ed, err := PreferredEditor()
	if err != nil {
		return nil, err
	}
	if filepath.IsAbs(ed) && !strings.ContainsAny(ed, " \t") {
		return exec.Command(ed, path), nil
	}
	return exec.Command("sh", "-c", ed+` "$1"`, "sh", path), nil
}

// OpenAt seeds path with initial, lets the user edit it and returns the saved
// bytes and whether they differ from initial.
func OpenAt(path string, initial []byte) ([]byte, bool, error) {
	if err := writeScratch(path, initial); err != nil {
		return nil, false, err
	}
	cmd, err := editorCommand(path)
	if err != nil {
		return nil, false, err
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, fmt.Errorf("editor: %w", err)
	}
	edited, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return edited, !bytes.Equal(edited, initial), nil
}

// ParseEditedTurn reads the role, confidence and body back from editor output.
// A missing role defaults to user; a confidence above 1 is read as a percentage.
func ParseEditedTurn(s string) (api.Turn, error) {
	turn := api.Turn{Role: api.RoleUser}
	inBody := false
	var body []string
	for _, line := range strings.Split(s, "\n") {
		if inBody {
			body = append(body, line)
			continue
		}
		trim := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trim, "#"):
		case trim == "---":
			inBody = true
		case strings.HasPrefix(trim, strings.TrimSpace(RolePrefix)):
			raw := strings.TrimSpace(strings.TrimPrefix(trim, strings.TrimSpace(RolePrefix)))
			if raw == "" {
				continue
			}
			role, ok := api.ParseRole(raw)
			if !ok {
				return api.Turn{}, fmt.Errorf("unknown role %q", raw)
			}
			turn.Role = role
		case strings.HasPrefix(trim, strings.TrimSpace(ConfidencePrefix)):
			raw := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(trim, strings.TrimSpace(ConfidencePrefix))), "%")
			if raw == "" {
				continue
			}
			c, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return api.Turn{}, fmt.Errorf("confidence %q: %w", raw, err)
			}
			if c > 1 {
				c /= 100
			}
			turn.Confidence = api.Confidence(c)
		}
	}
	turn.Content = strings.TrimSpace(strings.Join(body, "\n"))
	return turn, nil
}
