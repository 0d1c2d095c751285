package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/config"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
	"github.com/mattn/go-shellwords"
)

// execEngine shells out to two external commands: a recorder that emits a
// WAV stream on stdout, and a transcriber that receives a WAV file path
// and prints {"text":..., "confidence":...} JSON.
type execEngine struct {
	recordCmd []string
	transCmd  []string
	cfg       config.CaptureConfig

	mu       sync.Mutex
	busy     bool
	cancelFn context.CancelFunc
}

type execTranscript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func NewExecEngine(cfg config.CaptureConfig) (Engine, error) {
	parser := shellwords.NewParser()
	recordCmd, err := parser.Parse(cfg.RecordCommand)
	if err != nil {
		return nil, fmt.Errorf("parse record command: %w", err)
	}
	if len(recordCmd) == 0 {
		return nil, fmt.Errorf("record command is empty")
	}
	transCmd, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse transcriber command: %w", err)
	}
	if len(transCmd) == 0 {
		return nil, fmt.Errorf("transcriber command is empty")
	}
	return &execEngine{recordCmd: recordCmd, transCmd: transCmd, cfg: cfg}, nil
}

func (e *execEngine) Start(ctx context.Context, lang locale.Language) (*Capture, error) {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return nil, ErrAlreadyCapturing
	}
	e.busy = true
	cctx, cancel := context.WithCancel(ctx)
	e.cancelFn = cancel
	e.mu.Unlock()

	cap := newCapture()
	go func() {
		defer e.release()
		result, err := e.run(cctx, lang)
		if err != nil {
			cap.fail(err)
			return
		}
		cap.deliver(result)
	}()
	return cap, nil
}

func (e *execEngine) Stop() {
	e.mu.Lock()
	cancel := e.cancelFn
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (e *execEngine) release() {
	e.mu.Lock()
	e.busy = false
	e.cancelFn = nil
	e.mu.Unlock()
}

func (e *execEngine) run(ctx context.Context, lang locale.Language) (Result, error) {
	recordCtx := ctx
	if e.cfg.MaxUtteranceSec > 0 {
		var cancel context.CancelFunc
		recordCtx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.MaxUtteranceSec)*time.Second)
		defer cancel()
	}

	record := exec.CommandContext(recordCtx, e.recordCmd[0], e.recordCmd[1:]...)
	var wavOut bytes.Buffer
	record.Stdout = &wavOut
	if err := record.Run(); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if recordCtx.Err() == nil {
			return Result{}, fmt.Errorf("record command: %w", err)
		}
		// recorder killed at the max utterance deadline, keep what it wrote
	}
	if wavOut.Len() == 0 {
		return Result{}, fmt.Errorf("recorder produced no audio")
	}

	pcm, err := decodeWav(wavOut.Bytes())
	if err != nil {
		return Result{}, err
	}

	file, err := os.CreateTemp(os.TempDir(), "krishi_capture_*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	if err := writePCMToWav(file, pcm, e.cfg.SampleRate, e.cfg.Channels); err != nil {
		return Result{}, err
	}

	args := append([]string{}, e.transCmd[1:]...)
	args = append(args, "--language", string(lang), file.Name())
	trans := exec.CommandContext(ctx, e.transCmd[0], args...)
	var stdout bytes.Buffer
	trans.Stdout = &stdout
	if err := trans.Run(); err != nil {
		return Result{}, fmt.Errorf("transcriber command: %w", err)
	}

	var decoded execTranscript
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &decoded); err != nil {
		return Result{}, fmt.Errorf("decode transcriber output: %w", err)
	}
	return Result{Text: decoded.Text, Confidence: decoded.Confidence}, nil
}

func decodeWav(data []byte) ([]int, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return buf.Data, nil
}

func writePCMToWav(file *os.File, samples []int, sampleRate, channels int) error {
	encoder := wav.NewEncoder(file, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return encoder.Close()
}
