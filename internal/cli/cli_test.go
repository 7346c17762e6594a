package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawbridge/lawbridge/pkg/api"
)

type testEnv struct {
	cfgPath   string
	exportDir string
}

// newTestEnv isolates config, data and export directories under a temp dir.
func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(tmp, "run"))
	exportDir := filepath.Join(tmp, "exports")
	cfg := filepath.Join(tmp, "config.toml")
	content := `data_dir = "` + filepath.ToSlash(filepath.Join(tmp, "data")) + `"

[log]
level = "error"

[export]
dir = "` + filepath.ToSlash(exportDir) + `"
`
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))
	return testEnv{cfgPath: cfg, exportDir: exportDir}
}

func (e testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e testEnv) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := e.run(t, stdin, args...)
	require.NoError(t, err, out)
	return out
}

func firstField(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.Split(lines[len(lines)-1], "\t")[0]
}

func TestRenderFromStdin(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "**Short answer:** yes\n• Keep the receipt • Write to the seller",
		"render", "--output", "plain", "--confidence", "0.91")
	assert.Contains(t, out, "Short answer: yes")
	assert.Contains(t, out, "• Keep the receipt")
	assert.Contains(t, out, "• Write to the seller")
	assert.Contains(t, out, "Confidence: 91% (good)")
}

func TestRenderRawPayload(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, `[{"output":"1. File form N1","confidence":55}]`, "render", "--raw", "--output", "json")
	var v struct {
		Role       api.Role `json:"role"`
		Confidence *float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	assert.Equal(t, api.RoleAssistant, v.Role)
	require.NotNil(t, v.Confidence)
	assert.InDelta(t, 0.55, *v.Confidence, 1e-9)

	_, err := env.run(t, "", "render", "--output", "nope")
	assert.Error(t, err)
}

func TestChatLifecycle(t *testing.T) {
	env := newTestEnv(t)

	id := firstField(env.mustRun(t, "", "chat", "new", "--bot", "Legal Assistant", "Deposit dispute"))
	require.NotEmpty(t, id)

	env.mustRun(t, "", "chat", "add", id, "Can my landlord keep the deposit?")
	out := env.mustRun(t, `{"data":{"answer":"**Short answer:** Only for damage.","confidence":0.82}}`, "chat", "add", id, "--raw", "-")
	assert.Contains(t, out, "2 turns")

	out = env.mustRun(t, "", "chat", "show", id, "--output", "json")
	var shown struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Messages []struct {
			Role       api.Role `json:"role"`
			Confidence *float64 `json:"confidence"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown), out)
	assert.Equal(t, id, shown.ID)
	assert.Equal(t, "Deposit dispute", shown.Title)
	require.Len(t, shown.Messages, 2)
	assert.Equal(t, api.RoleUser, shown.Messages[0].Role)
	require.NotNil(t, shown.Messages[1].Confidence)

	out = env.mustRun(t, "", "chat", "show", id, "--output", "plain")
	assert.Contains(t, out, "YOUR QUESTION:")
	assert.Contains(t, out, "LEGAL ADVICE:")
	assert.Contains(t, out, "Confidence: 82% (good)")

	out = env.mustRun(t, "", "chat", "list", "--output", "json", "--match", "deposit")
	var listed []api.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &listed), out)
	require.Len(t, listed, 1)
	assert.Equal(t, 2, listed[0].Turns)

	out = env.mustRun(t, "", "export", id)
	path := strings.TrimSpace(out)
	assert.Equal(t, env.exportDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Legal_Assistant_"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = env.run(t, "", "chat", "delete", id)
	assert.ErrorContains(t, err, "--yes")
	env.mustRun(t, "", "chat", "delete", "--yes", id)
	_, err = env.run(t, "", "chat", "show", id)
	assert.Error(t, err)
}

func TestChatAddRejects(t *testing.T) {
	env := newTestEnv(t)
	id := firstField(env.mustRun(t, "", "chat", "new", "Empty"))

	_, err := env.run(t, "", "chat", "add", id, "--role", "judge", "hi")
	assert.Error(t, err)
	_, err = env.run(t, "", "chat", "add", id, "--role", "assistant", "--confidence", "150", "hi")
	assert.Error(t, err)
	_, err = env.run(t, "  ", "chat", "add", id)
	assert.Error(t, err)
	_, err = env.run(t, "", "chat", "add", "missing", "hi")
	assert.Error(t, err)
}

func TestImportYAMLAndList(t *testing.T) {
	env := newTestEnv(t)
	file := filepath.Join(t.TempDir(), "chats.yaml")
	input := `id: c-1
title: Tenancy
bot: Legal Assistant
turns:
  - role: user
    content: Is a verbal lease valid?
  - role: assistant
    content: "**Short answer:** Usually."
    confidence: 0.7
---
id: c-2
title: Employment
turns:
  - role: you
    content: Can I be fired without notice?
`
	require.NoError(t, os.WriteFile(file, []byte(input), 0o600))

	out := env.mustRun(t, "", "chat", "import", file)
	assert.Contains(t, out, "c-1\tTenancy")
	assert.Contains(t, out, "c-2\tEmployment")

	out = env.mustRun(t, "", "chat", "list", "--output", "ndjson", "--all", "--limit", "1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)

	out = env.mustRun(t, "", "chat", "list", "--output", "plain", "--bot", "Legal Assistant")
	assert.Contains(t, out, "Tenancy")
	assert.NotContains(t, out, "Employment")
}

func TestExportFromFile(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"title":"Nothing","turns":[]}`), 0o600))
	out := env.mustRun(t, "", "export", "--file", empty)
	assert.Equal(t, "No conversation to export", strings.TrimSpace(out))

	full := filepath.Join(dir, "full.json")
	require.NoError(t, os.WriteFile(full, []byte(`{"title":"Refund","turns":[
		{"role":"user","content":"Can I get a refund?"},
		{"role":"assistant","content":"Yes, within 30 days.","confidence":0.6}]}`), 0o600))
	outDir := filepath.Join(dir, "pdf")
	out = env.mustRun(t, "", "export", "--file", full, "--out", outDir, "--prefix", "Case_7")
	path := strings.TrimSpace(out)
	assert.Equal(t, outDir, filepath.Dir(path))
	assert.Regexp(t, `^Case_7_\d+\.pdf$`, filepath.Base(path))

	_, err := env.run(t, "", "export")
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"turns":[{"role":"assistant","content":"x","confidence":7}]}`), 0o600))
	_, err = env.run(t, "", "export", "--file", bad)
	assert.ErrorContains(t, err, "outside [0, 1]")
}

func TestImportRejectsOutOfRangeConfidence(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, `{"id":"c-9","turns":[{"role":"assistant","content":"x","confidence":-3}]}`, "chat", "import", "-")
	assert.Error(t, err)
	_, err = env.run(t, "", "chat", "show", "c-9")
	assert.Error(t, err)
}

func TestConfigGenerateAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "lawbridge", "config.toml")

	out := env.mustRun(t, "", "config", "generate", "-o", path)
	assert.Contains(t, out, "Wrote "+path)
	_, err := env.run(t, "", "config", "generate", "-o", path)
	assert.Error(t, err, "refuses to clobber an existing config")

	out = env.mustRun(t, "", "config", "update", "-o", path)
	assert.Contains(t, out, "Config already up to date")

	out = env.mustRun(t, "", "config", "generate", "--overwrite", "-o", path)
	assert.Contains(t, out, "Backup: "+path+".bak")
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)

	out = env.mustRun(t, "", "config", "show")
	assert.Contains(t, out, "export.prefix = Legal_Chat")
	assert.Contains(t, out, "# config file: "+env.cfgPath)
}

func TestCompletionScripts(t *testing.T) {
	env := newTestEnv(t)
	for _, shell := range []string{"bash", "zsh", "fish"} {
		out := env.mustRun(t, "", "completion", shell)
		assert.Contains(t, out, "lawbridge-cli", shell)
	}
	_, err := env.run(t, "", "completion", "powershell")
	assert.Error(t, err)
}
