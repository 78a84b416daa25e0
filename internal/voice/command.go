package voice

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxTranscriptSize caps how much recognizer output is kept
const DefaultMaxTranscriptSize = 64 * 1024

// exitNoPermission is the sysexits EX_NOPERM status; STT commands use it to
// signal that the microphone is not accessible.
const exitNoPermission = 77

const waitDelay = time.Second

const maxStderrSize = 4 * 1024

// cappedBuffer keeps the first max bytes written and discards the rest.
// Writes always succeed so the command is not killed by a short write.
type cappedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) Bytes() []byte  { return b.buf.Bytes() }
func (b *cappedBuffer) String() string { return b.buf.String() }

// CommandRecognizer runs an external speech-to-text command via sh -c.
// The command records one utterance and prints the transcript on stdout.
// The language is passed in CHATWEB_VOICE_LANG.
type CommandRecognizer struct {
	command string
	shell   string
	lang    string
	maxSize int
	logger  *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// CommandOption configures a CommandRecognizer
type CommandOption func(*CommandRecognizer)

// WithShell overrides the shell binary
func WithShell(shell string) CommandOption {
	return func(r *CommandRecognizer) {
		r.shell = shell
	}
}

// WithLang sets the recognition language
func WithLang(lang string) CommandOption {
	return func(r *CommandRecognizer) {
		r.lang = lang
	}
}

// WithMaxTranscriptSize caps how many bytes of output are kept
func WithMaxTranscriptSize(n int) CommandOption {
	return func(r *CommandRecognizer) {
		if n > 0 {
			r.maxSize = n
		}
	}
}

// WithCommandLogger sets the logger
func WithCommandLogger(logger *zap.Logger) CommandOption {
	return func(r *CommandRecognizer) {
		r.logger = logger
	}
}

// NewCommandRecognizer creates a recognizer for command. An empty command
// yields an unsupported recognizer.
func NewCommandRecognizer(command string, opts ...CommandOption) *CommandRecognizer {
	r := &CommandRecognizer{
		command: strings.TrimSpace(command),
		shell:   "sh",
		lang:    "en-US",
		maxSize: DefaultMaxTranscriptSize,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Supported reports whether a command is configured and the shell exists
func (r *CommandRecognizer) Supported() bool {
	if r.command == "" {
		return false
	}
	_, err := exec.LookPath(r.shell)
	return err == nil
}

// Start launches the command. The parent context bounds the whole capture.
func (r *CommandRecognizer) Start(ctx context.Context) (<-chan Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return nil, ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, r.shell, "-c", r.command)
	cmd.Env = append(os.Environ(), "CHATWEB_VOICE_LANG="+r.lang)
	// Children of the shell may keep stdout open after a stop
	cmd.WaitDelay = waitDelay

	stdout := &cappedBuffer{max: r.maxSize}
	stderr := &cappedBuffer{max: maxStderrSize}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, err
	}

	r.cancel = cancel
	r.stopped = false

	events := make(chan Event, 2)
	go func() {
		defer close(events)
		err := cmd.Wait()

		r.mu.Lock()
		stopped := r.stopped
		r.cancel = nil
		r.mu.Unlock()
		cancel()

		if ev, ok := r.classify(err, stopped, stdout.Bytes(), stderr.String()); ok {
			events <- ev
		}
		events <- Event{Kind: EventEnd}
	}()

	return events, nil
}

// Stop interrupts a running capture. It is a no-op when idle.
func (r *CommandRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.stopped = true
	r.cancel()
}

func (r *CommandRecognizer) classify(err error, stopped bool, out []byte, errOut string) (Event, bool) {
	if stopped {
		return Event{Kind: EventError, Code: CodeAborted}, true
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == exitNoPermission {
			return Event{Kind: EventError, Code: CodeNotAllowed}, true
		}
		r.logger.Warn("speech command failed",
			zap.Error(err),
			zap.String("stderr", strings.TrimSpace(errOut)))
		return Event{Kind: EventError, Code: CodeAudioCapture}, true
	}

	transcript := strings.TrimSpace(string(out))
	if transcript == "" {
		return Event{Kind: EventError, Code: CodeNoSpeech}, true
	}
	return Event{Kind: EventResult, Transcript: transcript}, true
}
