package audio

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"talkbox/internal/ports"
)

func TestWebmCaptureStartChunksAndStop(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "capture.sh", "#!/usr/bin/env bash\nprintf 'hello'\nsleep 2\n")
	capture := NewWebmCapture(script)

	session, err := capture.Start(context.Background(), ports.CaptureConfig{ChunkInterval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	var got []byte
	select {
	case chunk := <-session.Chunks():
		got = chunk
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for first chunk")
	}
	if !strings.Contains(string(got), "hello") {
		t.Fatalf("unexpected chunk bytes: %q", string(got))
	}

	if err := session.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	// The chunk channel must close once the device is released.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-session.Chunks():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("chunk channel not closed after stop")
		}
	}
}

func TestWebmCaptureStartEarlyExit(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "fail.sh", "#!/usr/bin/env bash\necho 'device busy' 1>&2\nexit 1\n")
	capture := NewWebmCapture(script)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := capture.Start(ctx, ports.CaptureConfig{})
	if err == nil {
		t.Fatalf("expected early exit error")
	}
	if !strings.Contains(err.Error(), "exited before capture started") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "device busy") {
		t.Fatalf("expected stderr detail in error: %v", err)
	}
}

func TestWebmCaptureStopIsIdempotent(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "capture.sh", "#!/usr/bin/env bash\nprintf 'x'\nsleep 2\n")
	capture := NewWebmCapture(script)

	session, err := capture.Start(context.Background(), ports.CaptureConfig{})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	first := session.Stop()
	second := session.Stop()
	if first != second {
		t.Fatalf("expected identical stop results, got %v then %v", first, second)
	}
}

func TestNormalizeStopErrExitErrorIsIgnored(t *testing.T) {
	t.Parallel()

	err := exec.Command("bash", "-lc", "exit 1").Run()
	if err == nil {
		t.Fatalf("expected command to fail")
	}
	if got := normalizeStopErr(err); got != nil {
		t.Fatalf("expected nil for exit error, got %v", got)
	}
}

func writeScript(t *testing.T, name string, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o700); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}
