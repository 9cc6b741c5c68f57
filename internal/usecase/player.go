package usecase

import (
	"encoding/base64"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"talkbox/internal/domain"
	"talkbox/internal/ports"
)

const playbackBannerText = "Audio playback failed."

// Player owns the single active audio playback. Starting playback for a
// new message always stops the prior one first; re-playing the active
// message restarts it from zero.
type Player struct {
	session *SessionState
	sink    ports.EventSink
	logger  *zap.Logger

	mu       sync.Mutex
	activeID int64
}

func NewPlayer(session *SessionState, sink ports.EventSink, logger *zap.Logger) *Player {
	return &Player{session: session, sink: sink, logger: logger}
}

// Play validates the base64 audio payload and hands a playable data URI
// to the widget's media element. Payload errors are non-fatal: they are
// surfaced as a banner and never touch the transcript or processing flag.
func (p *Player) Play(messageID int64, audio string) error {
	if _, err := base64.StdEncoding.DecodeString(audio); err != nil {
		p.logger.Warn("rejecting unplayable audio payload",
			zap.Int64("messageId", messageID), zap.Error(err))
		p.session.SetError(playbackBannerText)
		p.sink.SessionError(domain.ErrorCodePlayback, err.Error())
		return fmt.Errorf("invalid audio payload: %w", err)
	}

	p.mu.Lock()
	previous := p.activeID
	p.activeID = messageID
	p.mu.Unlock()

	if previous != 0 {
		p.sink.PlaybackStopped(previous)
	}

	p.session.SetPlaying(messageID)
	p.sink.PlaybackRequested(messageID, mediaURI(audio))
	return nil
}

// Ended handles the media element's end-of-playback notification. A
// notification for anything but the active message is stale and ignored.
func (p *Player) Ended(messageID int64) {
	if !p.release(messageID) {
		return
	}
	p.session.ClearPlaying(messageID)
}

// Failed handles a playback start failure reported by the media element.
func (p *Player) Failed(messageID int64, detail string) {
	if !p.release(messageID) {
		return
	}
	p.logger.Warn("media element playback failed",
		zap.Int64("messageId", messageID), zap.String("detail", detail))
	p.session.ClearPlaying(messageID)
	p.session.SetError(playbackBannerText)
	p.sink.SessionError(domain.ErrorCodePlayback, detail)
}

// Stop halts the active playback, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.activeID
	p.activeID = 0
	p.mu.Unlock()

	if active == 0 {
		return
	}
	p.sink.PlaybackStopped(active)
	p.session.ClearPlaying(active)
}

func (p *Player) release(messageID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.activeID != messageID {
		return false
	}
	p.activeID = 0
	return true
}

func mediaURI(audio string) string {
	return "data:audio/mp3;base64," + audio
}
