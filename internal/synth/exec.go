package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/config"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
	"github.com/mattn/go-shellwords"
)

type execSynth struct {
	cmd   []string
	voice string
	mu    sync.Mutex
}

// NewExecSynth shells out to an external speaker command per utterance.
// The command receives {"text":..., "language":..., "voice":...} on stdin
// and is responsible for playback.
func NewExecSynth(cfg config.SynthConfig) (Synthesizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse synth command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("synth command is empty")
	}
	return &execSynth{cmd: args, voice: cfg.Voice}, nil
}

func (s *execSynth) Speak(ctx context.Context, text string, lang locale.Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	input, err := json.Marshal(map[string]string{
		"text":     text,
		"language": string(lang),
		"voice":    s.voice,
	})
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, s.cmd[0], s.cmd[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("synth command: %w", err)
	}
	return nil
}
