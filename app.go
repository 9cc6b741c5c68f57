package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"talkbox/internal/bootstrap"
	"talkbox/internal/config"
	"talkbox/internal/domain"
	"talkbox/internal/transcript"
	"talkbox/internal/usecase"
)

const (
	eventState    = "talkbox:state"
	eventMessage  = "talkbox:message"
	eventPlayback = "talkbox:playback"
	eventError    = "talkbox:error"
)

// App is the Wails application root. It exposes the chat widget's bound
// methods and implements ports.EventSink by forwarding backend events to
// the frontend.
type App struct {
	ctx context.Context

	coordinator *usecase.Coordinator
	recorder    *usecase.Recorder
	player      *usecase.Player
	session     *usecase.SessionState
	transcript  *transcript.Store
	cfg         config.Config
	logger      *zap.Logger
	bootErr     error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.coordinator = services.Coordinator
	a.recorder = services.Recorder
	a.player = services.Player
	a.session = services.Session
	a.transcript = services.Transcript
	a.cfg = services.Config
	a.logger = services.Logger

	// One-shot reachability check, before any user interaction.
	go services.Probe.Run(ctx)

	a.StateChanged(a.session.Snapshot())
}

// SendText runs a text round trip. Empty or whitespace-only input is
// ignored.
func (a *App) SendText(text string) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	a.coordinator.SendText(a.ctx, text)
	return a.status(), nil
}

// StartRecording begins a capped voice capture.
func (a *App) StartRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.recorder.Start(a.ctx); err != nil {
		return a.status(), err
	}
	return a.status(), nil
}

// StopRecording ends the capture early and uploads the recording. A stop
// that raced with the auto-stop deadline is a no-op.
func (a *App) StopRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.recorder.Stop(); err != nil {
		if errors.Is(err, usecase.ErrNoActiveCapture) {
			return nil
		}
		return err
	}
	return nil
}

// AbortRecording discards an in-progress capture without uploading.
func (a *App) AbortRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.recorder.Abort(); err != nil {
		if errors.Is(err, usecase.ErrNoActiveCapture) {
			return nil
		}
		return err
	}
	return nil
}

// PlayMessage replays the audio attached to a transcript entry.
func (a *App) PlayMessage(messageID int64) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	for _, message := range a.transcript.Messages() {
		if message.ID == messageID {
			if message.Audio == "" {
				return fmt.Errorf("message %d has no audio", messageID)
			}
			return a.player.Play(message.ID, message.Audio)
		}
	}
	return fmt.Errorf("unknown message %d", messageID)
}

// PlaybackEnded is called by the frontend media element when playback
// finishes naturally.
func (a *App) PlaybackEnded(messageID int64) {
	if a.player == nil {
		return
	}
	a.player.Ended(messageID)
}

// PlaybackFailed is called by the frontend media element when playback
// could not start.
func (a *App) PlaybackFailed(messageID int64, detail string) {
	if a.player == nil {
		return
	}
	a.player.Failed(messageID, detail)
}

// GetTranscript returns the full transcript in insertion order.
func (a *App) GetTranscript() []domain.Message {
	if a.transcript == nil {
		return nil
	}
	return a.transcript.Messages()
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.recorder == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.RecordStateIdle, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.RecordStateIdle}
	}
	return a.status()
}

// GetRuntimeInfo returns non-sensitive config for the widget.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"serverUrl":        a.cfg.Server.BaseURL,
		"requestTimeout":   a.cfg.Server.RequestTimeout.String(),
		"recordLimit":      a.cfg.Session.RecordLimit.String(),
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
	}
}

func (a *App) status() domain.Status {
	return domain.Status{
		State:   a.recorder.State(),
		Session: a.session.Snapshot(),
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.coordinator == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// StateChanged emits the replaced session-flag value to the frontend.
func (a *App) StateChanged(snapshot domain.Snapshot) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventState, snapshot)
}

// MessageAppended emits a new transcript entry.
func (a *App) MessageAppended(message domain.Message) {
	a.emitMessage("appended", message)
}

// MessageUpdated emits an in-place transcript amendment.
func (a *App) MessageUpdated(message domain.Message) {
	a.emitMessage("updated", message)
}

func (a *App) emitMessage(kind string, message domain.Message) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventMessage, map[string]any{
		"kind":    kind,
		"message": message,
	})
}

// PlaybackRequested asks the frontend media element to play a data URI.
func (a *App) PlaybackRequested(messageID int64, mediaURI string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPlayback, map[string]any{
		"action":    "play",
		"messageId": messageID,
		"src":       mediaURI,
	})
}

// PlaybackStopped asks the frontend media element to stop and reset.
func (a *App) PlaybackStopped(messageID int64) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPlayback, map[string]any{
		"action":    "stop",
		"messageId": messageID,
	})
}

// SessionError emits backend errors to the widget.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
		"at":      time.Now().Format(time.RFC3339),
	})
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeConnectivity:
		return "Assistant service unreachable"
	case domain.ErrorCodeChat:
		return "Message could not be sent"
	case domain.ErrorCodeTranscribe:
		return "Voice message could not be transcribed"
	case domain.ErrorCodeMicrophone:
		return "Microphone unavailable"
	case domain.ErrorCodePlayback:
		return "Audio playback failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
