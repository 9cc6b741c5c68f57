package bootstrap

import (
	"go.uber.org/zap"

	"talkbox/internal/audio"
	"talkbox/internal/config"
	"talkbox/internal/ports"
	"talkbox/internal/providers/assistant"
	"talkbox/internal/transcript"
	"talkbox/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Coordinator *usecase.Coordinator
	Recorder    *usecase.Recorder
	Player      *usecase.Player
	Probe       *usecase.Probe
	Session     *usecase.SessionState
	Transcript  *transcript.Store
	Config      config.Config
	Logger      *zap.Logger
}

// Build wires all backend dependencies for the current runtime.
func Build(sink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return Services{}, err
	}

	client := assistant.NewClient(assistant.Config{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.Server.RequestTimeout,
	}, logger)

	store := transcript.NewStore()
	session := usecase.NewSessionState(sink)
	player := usecase.NewPlayer(session, sink, logger)

	coordinator := usecase.NewCoordinator(client, store, player, session, sink, logger, usecase.CoordinatorConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	recorder := usecase.NewRecorder(
		audio.NewWebmCapture(cfg.Audio.RecorderCommand),
		coordinator,
		session,
		sink,
		logger,
		usecase.RecorderConfig{
			Capture: ports.CaptureConfig{
				RecorderCommand: cfg.Audio.RecorderCommand,
				InputFormat:     cfg.Audio.InputFormat,
				InputDevice:     cfg.Audio.InputDevice,
				ChunkInterval:   cfg.Audio.ChunkInterval,
			},
			RecordLimit: cfg.Session.RecordLimit,
		},
	)

	probe := usecase.NewProbe(client, session, sink, logger, cfg.Server.ProbeTimeout)

	return Services{
		Coordinator: coordinator,
		Recorder:    recorder,
		Player:      player,
		Probe:       probe,
		Session:     session,
		Transcript:  store,
		Config:      cfg,
		Logger:      logger,
	}, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
