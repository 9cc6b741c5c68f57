package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"talkbox/internal/domain"
	"talkbox/internal/ports"
	"talkbox/internal/transcript"
)

const (
	apologyText          = "Sorry, I ran into a problem answering that. Please try again."
	voicePlaceholderText = "(transcribing voice message...)"
	voiceFallbackText    = "(voice message)"

	chatBannerText       = "Could not reach the assistant. Please try again."
	transcribeBannerText = "Could not transcribe your voice message."
)

// CoordinatorConfig bounds remote round trips.
type CoordinatorConfig struct {
	RequestTimeout time.Duration
}

// Coordinator runs one request/response cycle against the assistant
// service, text or voice, and maps the outcome into transcript entries,
// session flags, and playback.
type Coordinator struct {
	client  ports.AssistantClient
	store   *transcript.Store
	player  *Player
	session *SessionState
	sink    ports.EventSink
	logger  *zap.Logger
	cfg     CoordinatorConfig
}

func NewCoordinator(
	client ports.AssistantClient,
	store *transcript.Store,
	player *Player,
	session *SessionState,
	sink ports.EventSink,
	logger *zap.Logger,
	cfg CoordinatorConfig,
) *Coordinator {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Coordinator{
		client:  client,
		store:   store,
		player:  player,
		session: session,
		sink:    sink,
		logger:  logger,
		cfg:     cfg,
	}
}

// SendText runs a text round trip. Input that trims to empty is ignored
// without touching the transcript or any session flag.
func (c *Coordinator) SendText(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.session.ClearError()
	c.appendMessage(text, true, "")

	c.session.SetProcessing(true)
	defer c.session.SetProcessing(false)

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	reply, err := c.client.Chat(reqCtx, text)
	if err != nil {
		c.failRoundTrip(domain.ErrorCodeChat, chatBannerText, err)
		return
	}

	assistant := c.appendMessage(reply.Response, false, reply.Audio)
	if reply.Audio != "" {
		_ = c.player.Play(assistant.ID, reply.Audio)
	}
}

// SendVoice uploads a finalized recording. A placeholder user message is
// inserted first and later amended in place once transcription resolves;
// correlation is strictly by message ID, never by transcript position.
func (c *Coordinator) SendVoice(ctx context.Context, audio []byte) {
	c.session.ClearError()
	placeholder := c.appendMessage(voicePlaceholderText, true, "")

	c.session.SetProcessing(true)
	defer c.session.SetProcessing(false)

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	result, err := c.client.Transcribe(reqCtx, audio)
	if err != nil {
		c.updatePlaceholder(placeholder.ID, voiceFallbackText)
		c.failRoundTrip(domain.ErrorCodeTranscribe, transcribeBannerText, err)
		return
	}

	transcriptText := strings.TrimSpace(result.Text)
	if transcriptText == "" {
		transcriptText = voiceFallbackText
	}
	c.updatePlaceholder(placeholder.ID, transcriptText)

	assistant := c.appendMessage(result.Response, false, result.Audio)
	if result.Audio != "" {
		_ = c.player.Play(assistant.ID, result.Audio)
	}
}

func (c *Coordinator) appendMessage(text string, isUser bool, audio string) domain.Message {
	message := domain.Message{
		ID:        c.store.NextID(),
		Text:      text,
		IsUser:    isUser,
		Timestamp: time.Now(),
		Audio:     audio,
	}
	c.store.Append(message)
	c.sink.MessageAppended(message)
	return message
}

func (c *Coordinator) updatePlaceholder(id int64, text string) {
	updated, ok := c.store.UpdateByID(id, func(m *domain.Message) {
		m.Text = text
	})
	if ok {
		c.sink.MessageUpdated(updated)
	}
}

// failRoundTrip converts a failed round trip into a banner plus a fixed
// apology entry. The conversation never halts on failure.
func (c *Coordinator) failRoundTrip(code domain.ErrorCode, banner string, err error) {
	c.logger.Warn("round trip failed",
		zap.String("code", string(code)), zap.Error(err))
	c.session.SetError(banner)
	c.sink.SessionError(code, err.Error())
	c.appendMessage(apologyText, false, "")
}
