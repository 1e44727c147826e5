package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	internal "github.com/ZanzyTHEbar/hybridchat/hchat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfigFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cfg := `
database:
  dsn: "file:` + filepath.ToSlash(filepath.Join(dir, "chat.db")) + `"
classifier:
  backend: none
fallback:
  enabled: false
canned:
  responses: ["tell me more"]
log:
  level: error
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, internal.Version, strings.TrimSpace(stdout))
}

func TestAskPrintsReply(t *testing.T) {
	cfgPath := writeConfigFixture(t)

	stdout, _, err := executeCLI(t, "--config", cfgPath, "ask", "--session", "s1", "Hello", "there")
	require.NoError(t, err)

	var reply map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &reply))
	assert.Equal(t, "tell me more", reply["response"])
	assert.Equal(t, "s1", reply["session_id"])
	assert.Len(t, reply["history"], 1)
}

func TestAskEscalates(t *testing.T) {
	stdout, _, err := executeCLI(t, "--config", writeConfigFixture(t), "ask", "I need a human support")
	require.NoError(t, err)
	assert.Contains(t, stdout, "My manager will help you shortly.")
}

func TestTeachThenAsk(t *testing.T) {
	cfgPath := writeConfigFixture(t)

	stdout, _, err := executeCLI(t, "--config", cfgPath, "ask", "--teach", "I am Bot", "What is your name")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Got it! I learned: I am Bot")

	stdout, _, err = executeCLI(t, "--config", cfgPath, "ask", "what is your name?")
	require.NoError(t, err)

	var reply map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &reply))
	assert.Equal(t, "I am Bot", reply["response"])
}

func TestHistoryUnknownSession(t *testing.T) {
	stdout, _, err := executeCLI(t, "--config", writeConfigFixture(t), "history", "nobody")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"session_id": "nobody"`)
}

func TestAskRequiresMessage(t *testing.T) {
	_, _, err := executeCLI(t, "--config", writeConfigFixture(t), "ask")
	assert.Error(t, err)
}

func TestBadConfigFails(t *testing.T) {
	_, _, err := executeCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "ask", "hi")
	assert.Error(t, err)
}
