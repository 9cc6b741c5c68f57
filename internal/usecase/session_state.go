package usecase

import (
	"sync"

	"talkbox/internal/domain"
	"talkbox/internal/ports"
)

// SessionState holds the widget's session flags as one value that is
// replaced atomically on every transition and published to the single
// observing view.
type SessionState struct {
	mu   sync.Mutex
	snap domain.Snapshot
	sink ports.EventSink
}

func NewSessionState(sink ports.EventSink) *SessionState {
	return &SessionState{sink: sink}
}

// Snapshot returns the current session-flag value.
func (s *SessionState) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *SessionState) SetRecording(recording bool) {
	s.update(func(snap *domain.Snapshot) { snap.Recording = recording })
}

func (s *SessionState) SetProcessing(processing bool) {
	s.update(func(snap *domain.Snapshot) { snap.Processing = processing })
}

// SetPlaying marks the message whose audio is currently playing. At most
// one message ID is playing at any instant.
func (s *SessionState) SetPlaying(messageID int64) {
	s.update(func(snap *domain.Snapshot) { snap.PlayingID = messageID })
}

// ClearPlaying resets the playing ID only if it still names messageID,
// guarding against stale end-of-playback notifications.
func (s *SessionState) ClearPlaying(messageID int64) {
	s.update(func(snap *domain.Snapshot) {
		if snap.PlayingID == messageID {
			snap.PlayingID = 0
		}
	})
}

func (s *SessionState) SetError(message string) {
	s.update(func(snap *domain.Snapshot) { snap.Error = message })
}

func (s *SessionState) ClearError() {
	s.update(func(snap *domain.Snapshot) { snap.Error = "" })
}

func (s *SessionState) update(mutate func(*domain.Snapshot)) {
	s.mu.Lock()
	next := s.snap
	mutate(&next)
	changed := next != s.snap
	s.snap = next
	s.mu.Unlock()

	if changed && s.sink != nil {
		s.sink.StateChanged(next)
	}
}
