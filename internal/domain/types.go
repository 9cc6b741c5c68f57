package domain

import "time"

// RecordState models the microphone capture lifecycle.
type RecordState string

const (
	RecordStateIdle       RecordState = "idle"
	RecordStateCapturing  RecordState = "capturing"
	RecordStateFinalizing RecordState = "finalizing"
)

// ErrorCode identifies non-fatal backend errors surfaced to the widget.
type ErrorCode string

const (
	ErrorCodeStartup      ErrorCode = "startup"
	ErrorCodeConnectivity ErrorCode = "connectivity"
	ErrorCodeChat         ErrorCode = "chat"
	ErrorCodeTranscribe   ErrorCode = "transcribe"
	ErrorCodeMicrophone   ErrorCode = "microphone"
	ErrorCodePlayback     ErrorCode = "playback"
)

// Message is one transcript entry. Audio, when present, holds the
// base64-encoded mp3 payload returned by the assistant service.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
	Audio     string    `json:"audio,omitempty"`
}

// Snapshot is the session-flag value observed by the widget. Every
// transition replaces the whole value. PlayingID is zero when nothing is
// playing and Error is empty when no banner should show.
type Snapshot struct {
	Recording  bool   `json:"recording"`
	Processing bool   `json:"processing"`
	PlayingID  int64  `json:"playingId"`
	Error      string `json:"error,omitempty"`
}

// Reply is the assistant service's answer to a text round trip.
type Reply struct {
	Response string `json:"response"`
	Audio    string `json:"audio,omitempty"`
}

// Transcription is the assistant service's answer to a voice round trip.
type Transcription struct {
	Text     string `json:"text,omitempty"`
	Response string `json:"response"`
	Audio    string `json:"audio,omitempty"`
}

// Status summarizes the current runtime status for the widget.
type Status struct {
	State   RecordState `json:"state"`
	Session Snapshot    `json:"session"`
	Message string      `json:"message,omitempty"`
}
