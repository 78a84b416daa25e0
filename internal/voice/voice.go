// Package voice adapts a speech-to-text recognizer into chat input.
package voice

import "context"

// ErrorCode names a recognizer failure. Values follow the Web Speech API.
type ErrorCode string

const (
	CodeNotAllowed   ErrorCode = "not-allowed"
	CodeNoSpeech     ErrorCode = "no-speech"
	CodeAborted      ErrorCode = "aborted"
	CodeAudioCapture ErrorCode = "audio-capture"
	CodeNetwork      ErrorCode = "network"
)

// EventKind is the type of a recognizer event
type EventKind int

const (
	EventResult EventKind = iota
	EventError
	EventEnd
)

// Event is emitted by a Recognizer while it listens
type Event struct {
	Kind       EventKind
	Transcript string
	Code       ErrorCode
}

// Recognizer captures one utterance per Start. The returned channel carries
// at most one result or error followed by EventEnd, then closes.
type Recognizer interface {
	Supported() bool
	Start(ctx context.Context) (<-chan Event, error)
	Stop()
}

// Microphone is the capture device permission. Once acquired it stays held
// until Release.
type Microphone interface {
	Acquire(ctx context.Context) error
	Release()
	Held() bool
}

// Error is a voice failure with a message fit for display
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrUnsupported      = &Error{Message: "Speech Recognition is not supported in your environment"}
	ErrBusy             = &Error{Message: "Please wait for the current request to complete"}
	ErrPermissionDenied = &Error{Message: "Microphone permission denied. Please allow microphone access in settings."}
	ErrStartFailed      = &Error{Message: "Could not start speech recognition. Please try again."}
	ErrAlreadyStarted   = &Error{Message: "speech recognition already started"}
)
