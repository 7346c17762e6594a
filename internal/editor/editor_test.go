package editor

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawbridge/lawbridge/pkg/api"
)

func TestParseEditedTurn(t *testing.T) {
	input := `# comment line
Role: bot
Confidence: 87%
---
**Answer:** yes
• keep receipts
`
	turn, err := ParseEditedTurn(input)
	require.NoError(t, err)
	assert.Equal(t, api.RoleAssistant, turn.Role)
	require.NotNil(t, turn.Confidence)
	assert.InDelta(t, 0.87, *turn.Confidence, 1e-9)
	assert.Equal(t, "**Answer:** yes\n• keep receipts", turn.Content)
}

func TestParseEditedTurnDefaults(t *testing.T) {
	turn, err := ParseEditedTurn("Role: \nConfidence: \n---\nquestion")
	require.NoError(t, err)
	assert.Equal(t, api.RoleUser, turn.Role)
	assert.Nil(t, turn.Confidence)
	assert.Equal(t, "question", turn.Content)

	_, err = ParseEditedTurn("Role: judge\n---\nx")
	assert.Error(t, err)
	_, err = ParseEditedTurn("Confidence: high\n---\nx")
	assert.Error(t, err)
}

func TestComposeTurnRoundTrips(t *testing.T) {
	content := ComposeTurn("c1", api.RoleAssistant, api.Confidence(0.5), "body")
	assert.Contains(t, content, "Role: assistant")
	assert.Contains(t, content, "Confidence: 0.5")
	assert.Contains(t, content, "---\nbody\n")

	turn, err := ParseEditedTurn(content)
	require.NoError(t, err)
	assert.Equal(t, api.RoleAssistant, turn.Role)
	assert.Equal(t, "body", turn.Content)
	assert.InDelta(t, 0.5, *turn.Confidence, 1e-9)
}

func TestPathForID(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/tmp/run")
	p, err := PathForID("a/b c")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/run", "lawbridge", "a-b-c.lawbridge.md"), p)
	assert.True(t, strings.HasSuffix(p, ".lawbridge.md"))
}

func TestOpenAtWithShellEditor(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", `sed -i -e "s/^Role: user/Role: assistant/"`)
	path := filepath.Join(t.TempDir(), "turn.lawbridge.md")
	initial := []byte(ComposeTurn("c-1", api.RoleUser, nil, "hello"))

	out, changed, err := OpenAt(path, initial)
	require.NoError(t, err)
	assert.True(t, changed)
	turn, err := ParseEditedTurn(string(out))
	require.NoError(t, err)
	assert.Equal(t, api.RoleAssistant, turn.Role)
	assert.Equal(t, "hello", turn.Content)
}

func TestOpenAtUnchanged(t *testing.T) {
	t.Setenv("VISUAL", "true")
	path := filepath.Join(t.TempDir(), "nested", "turn.md")
	_, changed, err := OpenAt(path, []byte("same\n"))
	require.NoError(t, err)
	assert.False(t, changed)
}
