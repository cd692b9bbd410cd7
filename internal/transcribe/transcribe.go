// Package transcribe hands trimmed files to an external speech-to-text
// command. The decoding behavior lives entirely in that command; Config is
// an opaque bag of knobs passed through verbatim.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mfriedel/voxtrim/internal/platform"
	"go.uber.org/zap"
)

// EnvTranscribePath overrides where the transcription command is found.
const EnvTranscribePath = "VOXTRIM_TRANSCRIBE_PATH"

// Config carries the external engine's decoding knobs. Nothing here is
// interpreted; it is forwarded as command-line arguments.
type Config struct {
	Model    string
	Language string
	Args     []string
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) error
}

// CommandRunner invokes an external transcription binary per file.
type CommandRunner struct {
	Executable string
	Config     Config
	Logger     *zap.Logger
}

func NewCommandRunner(command string, cfg Config, logger *zap.Logger) (*CommandRunner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv(EnvTranscribePath)); override != "" {
		command = override
	}
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("transcription command is required")
	}

	executable, err := platform.FindTool(command, command)
	if err != nil {
		return nil, err
	}

	return &CommandRunner{Executable: executable, Config: cfg, Logger: logger}, nil
}

func (r *CommandRunner) Transcribe(ctx context.Context, audioPath string) error {
	args := []string{audioPath}
	if r.Config.Model != "" {
		args = append(args, "--model", r.Config.Model)
	}
	if r.Config.Language != "" && r.Config.Language != "auto" {
		args = append(args, "--language", r.Config.Language)
	}
	args = append(args, r.Config.Args...)

	cmd := exec.CommandContext(ctx, r.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = os.Stderr
	cmd.Stderr = &stderr

	r.Logger.Debug("running transcription command", zap.String("command", r.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		trimmed := strings.TrimSpace(stderr.String())
		if trimmed != "" {
			return fmt.Errorf("transcribe %s: %w (%s)", audioPath, err, trimmed)
		}
		return fmt.Errorf("transcribe %s: %w", audioPath, err)
	}

	return nil
}
