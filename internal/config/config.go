package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the widget backend.
type Config struct {
	Server  ServerConfig
	Audio   AudioConfig
	Session SessionConfig
	Debug   bool
}

type ServerConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	ProbeTimeout   time.Duration
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	ChunkInterval   time.Duration
}

type SessionConfig struct {
	RecordLimit time.Duration
}

// Load resolves configuration from a local .env file, environment
// variables, and sensible defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			BaseURL:        envOrDefault("TALKBOX_SERVER_URL", "http://localhost:8000"),
			RequestTimeout: envDurationMS("TALKBOX_REQUEST_TIMEOUT_MS", 30000),
			ProbeTimeout:   envDurationMS("TALKBOX_PROBE_TIMEOUT_MS", 5000),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("TALKBOX_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("TALKBOX_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("TALKBOX_AUDIO_INPUT_DEVICE", "default"),
			ChunkInterval:   envDurationMS("TALKBOX_CHUNK_INTERVAL_MS", 200),
		},
		Session: SessionConfig{
			RecordLimit: envDurationMS("TALKBOX_RECORD_LIMIT_MS", 5000),
		},
		Debug: envOrDefaultBool("TALKBOX_DEBUG", false),
	}

	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Server.ProbeTimeout <= 0 {
		cfg.Server.ProbeTimeout = 5 * time.Second
	}
	if cfg.Audio.ChunkInterval <= 0 {
		cfg.Audio.ChunkInterval = 200 * time.Millisecond
	}
	if cfg.Session.RecordLimit <= 0 {
		cfg.Session.RecordLimit = 5 * time.Second
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envDurationMS(key string, fallbackMS int) time.Duration {
	ms := envOrDefaultInt(key, fallbackMS)
	if ms < 0 {
		ms = fallbackMS
	}
	return time.Duration(ms) * time.Millisecond
}
