package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestNewCommandRunnerRequiresCommand(t *testing.T) {
	_, err := NewCommandRunner("", Config{}, nil)
	require.Error(t, err)
}

func TestNewCommandRunnerEnvOverride(t *testing.T) {
	script := writeScript(t, "engine", "exit 0")
	t.Setenv(EnvTranscribePath, script)

	runner, err := NewCommandRunner("ignored-because-of-override", Config{}, nil)
	require.NoError(t, err)
	require.Equal(t, script, runner.Executable)
}

func TestTranscribePassesConfigThrough(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	script := filepath.Join(dir, "engine")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > "+argsFile+"\n"), 0o755))

	runner, err := NewCommandRunner(script, Config{
		Model:    "medium",
		Language: "de",
		Args:     []string{"--word-timestamps"},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, runner.Transcribe(context.Background(), "lecture.wav"))

	got, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	line := strings.TrimSpace(string(got))
	require.Equal(t, "lecture.wav --model medium --language de --word-timestamps", line)
}

func TestTranscribeOmitsAutoLanguage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	script := filepath.Join(dir, "engine")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > "+argsFile+"\n"), 0o755))

	runner, err := NewCommandRunner(script, Config{Language: "auto"}, nil)
	require.NoError(t, err)
	require.NoError(t, runner.Transcribe(context.Background(), "a.wav"))

	got, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, "a.wav", strings.TrimSpace(string(got)))
}

func TestTranscribeSurfacesStderr(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "engine", "echo 'model file missing' >&2\nexit 3")

	runner, err := NewCommandRunner(script, Config{}, nil)
	require.NoError(t, err)

	err = runner.Transcribe(context.Background(), "a.wav")
	require.Error(t, err)
	require.Contains(t, err.Error(), "model file missing")
}
