package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
	"github.com/mattn/go-shellwords"
)

type execClassifier struct {
	cmd []string
	mu  sync.Mutex
}

// NewExecClassifier runs an external command per classification. The
// command receives {"text":..., "language":...} on stdin and must print
// the classifier wire JSON on stdout.
func NewExecClassifier(command string) (Classifier, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse classifier command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("classifier command empty")
	}
	return &execClassifier{cmd: args}, nil
}

func (e *execClassifier) Classify(ctx context.Context, text string, lang locale.Language) (ParsedIntent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	input, err := json.Marshal(map[string]string{
		"text":     text,
		"language": string(lang),
	})
	if err != nil {
		return ParsedIntent{}, err
	}

	cmd := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ParsedIntent{}, fmt.Errorf("classifier command: %w", err)
	}

	parsed, err := Decode(stdout.Bytes())
	if err != nil {
		return ParsedIntent{}, err
	}
	if parsed.RawText == "" {
		parsed.RawText = text
	}
	return parsed, nil
}
