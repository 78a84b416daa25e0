package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// BusyChecker reports whether a chat submission is in flight
type BusyChecker interface {
	Busy() bool
}

// Outcome is what the UI should do with a recognizer event
type Outcome struct {
	// Submit is a transcript to route through the normal submit path
	Submit string
	// Message is an error to display
	Message string
}

// Adapter owns the listening state between the UI and a Recognizer
type Adapter struct {
	rec    Recognizer
	mic    Microphone
	busy   BusyChecker
	logger *zap.Logger

	mu        sync.Mutex
	listening bool
}

// NewAdapter creates an Adapter. rec may be nil when no recognizer is configured.
func NewAdapter(rec Recognizer, mic Microphone, busy BusyChecker, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{rec: rec, mic: mic, busy: busy, logger: logger}
}

// Supported reports whether voice input can be used at all
func (a *Adapter) Supported() bool {
	return a.rec != nil && a.rec.Supported()
}

// Listening reports whether the recognizer is capturing
func (a *Adapter) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// Toggle stops listening if active, otherwise starts. A nil channel with a
// nil error means listening was stopped.
func (a *Adapter) Toggle(ctx context.Context) (<-chan Event, error) {
	if a.Listening() {
		a.Stop()
		return nil, nil
	}
	return a.Start(ctx)
}

// Start begins capturing one utterance
func (a *Adapter) Start(ctx context.Context) (<-chan Event, error) {
	if !a.Supported() {
		return nil, ErrUnsupported
	}
	if a.busy != nil && a.busy.Busy() {
		return nil, ErrBusy
	}

	// Permission is asked for once; the held device is reused afterwards
	if a.mic != nil && !a.mic.Held() {
		if err := a.mic.Acquire(ctx); err != nil {
			a.logger.Warn("microphone unavailable", zap.Error(err))
			return nil, ErrPermissionDenied
		}
	}

	events, err := a.rec.Start(ctx)
	if err != nil {
		if errors.Is(err, ErrAlreadyStarted) {
			a.setListening(true)
			return nil, nil
		}
		a.logger.Error("failed to start recognizer", zap.Error(err))
		return nil, ErrStartFailed
	}

	a.setListening(true)
	return events, nil
}

// Stop ends capture. Calling it when idle does nothing.
func (a *Adapter) Stop() {
	a.mu.Lock()
	wasListening := a.listening
	a.listening = false
	a.mu.Unlock()

	if wasListening && a.rec != nil {
		a.rec.Stop()
	}
}

// Release stops capture and gives the microphone back
func (a *Adapter) Release() {
	a.Stop()
	if a.mic != nil {
		a.mic.Release()
	}
}

// Handle turns a recognizer event into an Outcome. Any event ends listening
// because each Start captures a single utterance.
func (a *Adapter) Handle(ev Event) Outcome {
	a.setListening(false)

	switch ev.Kind {
	case EventResult:
		return Outcome{Submit: ev.Transcript}
	case EventError:
		return Outcome{Message: ErrorMessage(ev.Code)}
	default:
		return Outcome{}
	}
}

func (a *Adapter) setListening(v bool) {
	a.mu.Lock()
	a.listening = v
	a.mu.Unlock()
}

// ErrorMessage returns the text to show for a recognizer error, or "" for
// codes that are not worth reporting.
func ErrorMessage(code ErrorCode) string {
	switch code {
	case CodeNoSpeech, CodeAborted:
		return ""
	case CodeNotAllowed:
		return "Microphone permission denied. Please enable it in settings."
	default:
		return fmt.Sprintf("Speech recognition error: %s", code)
	}
}
