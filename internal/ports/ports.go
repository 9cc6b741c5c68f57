package ports

import (
	"context"
	"time"

	"talkbox/internal/domain"
)

// CaptureConfig describes how the microphone should be captured.
type CaptureConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	ChunkInterval   time.Duration
}

// CaptureSession is a live microphone capture. Chunks delivers encoded
// audio periodically and is closed once the device has been released.
type CaptureSession interface {
	Chunks() <-chan []byte
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg CaptureConfig) (CaptureSession, error)
}

// AssistantClient talks to the remote assistant service.
type AssistantClient interface {
	Health(ctx context.Context) error
	Chat(ctx context.Context, text string) (domain.Reply, error)
	Transcribe(ctx context.Context, audio []byte) (domain.Transcription, error)
}

// EventSink delivers backend state and transcript changes to the widget.
type EventSink interface {
	StateChanged(snapshot domain.Snapshot)
	MessageAppended(message domain.Message)
	MessageUpdated(message domain.Message)
	PlaybackRequested(messageID int64, mediaURI string)
	PlaybackStopped(messageID int64)
	SessionError(code domain.ErrorCode, detail string)
}
