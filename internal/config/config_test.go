package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TALKBOX_SERVER_URL", "")
	t.Setenv("TALKBOX_REQUEST_TIMEOUT_MS", "")
	t.Setenv("TALKBOX_RECORD_LIMIT_MS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected server url: %q", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected request timeout: %s", cfg.Server.RequestTimeout)
	}
	if cfg.Server.ProbeTimeout != 5*time.Second {
		t.Fatalf("unexpected probe timeout: %s", cfg.Server.ProbeTimeout)
	}
	if cfg.Session.RecordLimit != 5*time.Second {
		t.Fatalf("unexpected record limit: %s", cfg.Session.RecordLimit)
	}
	if cfg.Audio.ChunkInterval != 200*time.Millisecond {
		t.Fatalf("unexpected chunk interval: %s", cfg.Audio.ChunkInterval)
	}
	if cfg.Audio.RecorderCommand != "ffmpeg" || cfg.Audio.InputFormat != "pulse" || cfg.Audio.InputDevice != "default" {
		t.Fatalf("unexpected audio config: %+v", cfg.Audio)
	}
	if cfg.Debug {
		t.Fatalf("expected debug off by default")
	}
}

func TestLoadRespectsOverrides(t *testing.T) {
	t.Setenv("TALKBOX_SERVER_URL", "https://assistant.example.com")
	t.Setenv("TALKBOX_REQUEST_TIMEOUT_MS", "12000")
	t.Setenv("TALKBOX_PROBE_TIMEOUT_MS", "1500")
	t.Setenv("TALKBOX_FFMPEG_COMMAND", "my-ffmpeg")
	t.Setenv("TALKBOX_AUDIO_INPUT_FORMAT", "alsa")
	t.Setenv("TALKBOX_AUDIO_INPUT_DEVICE", "mic0")
	t.Setenv("TALKBOX_CHUNK_INTERVAL_MS", "100")
	t.Setenv("TALKBOX_RECORD_LIMIT_MS", "8000")
	t.Setenv("TALKBOX_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.BaseURL != "https://assistant.example.com" {
		t.Fatalf("unexpected server url: %q", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestTimeout != 12*time.Second || cfg.Server.ProbeTimeout != 1500*time.Millisecond {
		t.Fatalf("unexpected timeouts: %+v", cfg.Server)
	}
	if cfg.Audio.RecorderCommand != "my-ffmpeg" || cfg.Audio.InputFormat != "alsa" || cfg.Audio.InputDevice != "mic0" {
		t.Fatalf("unexpected audio config: %+v", cfg.Audio)
	}
	if cfg.Audio.ChunkInterval != 100*time.Millisecond {
		t.Fatalf("unexpected chunk interval: %s", cfg.Audio.ChunkInterval)
	}
	if cfg.Session.RecordLimit != 8*time.Second {
		t.Fatalf("unexpected record limit: %s", cfg.Session.RecordLimit)
	}
	if !cfg.Debug {
		t.Fatalf("expected debug enabled")
	}
}

func TestLoadInvalidNumericValuesFallback(t *testing.T) {
	t.Setenv("TALKBOX_REQUEST_TIMEOUT_MS", "bad")
	t.Setenv("TALKBOX_RECORD_LIMIT_MS", "-5")
	t.Setenv("TALKBOX_CHUNK_INTERVAL_MS", "0")
	t.Setenv("TALKBOX_DEBUG", "not-bool")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Fatalf("expected default request timeout, got %s", cfg.Server.RequestTimeout)
	}
	if cfg.Session.RecordLimit != 5*time.Second {
		t.Fatalf("expected default record limit, got %s", cfg.Session.RecordLimit)
	}
	if cfg.Audio.ChunkInterval != 200*time.Millisecond {
		t.Fatalf("expected default chunk interval, got %s", cfg.Audio.ChunkInterval)
	}
	if cfg.Debug {
		t.Fatalf("expected debug fallback false")
	}
}
