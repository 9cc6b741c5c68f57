package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"talkbox/internal/ports"
)

// WebmCapture records microphone audio as a webm/opus stream using
// ffmpeg, delivered in periodic chunks.
type WebmCapture struct {
	command string
}

func NewWebmCapture(command string) *WebmCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &WebmCapture{command: command}
}

func (c *WebmCapture) Start(ctx context.Context, cfg ports.CaptureConfig) (ports.CaptureSession, error) {
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = 200 * time.Millisecond
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-c:a", "libopus",
		"-b:a", "32k",
		"-f", "webm",
		"-",
	}

	cmd := exec.CommandContext(ctx, c.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create recorder stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start recorder: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// A device or permission problem makes ffmpeg exit immediately; treat
	// that as an acquisition failure rather than an empty recording.
	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("recorder exited before capture started: %w: %s", err, trimmed(stderr.String()))
		}
		return nil, errors.New("recorder exited before capture started")
	case <-time.After(250 * time.Millisecond):
	}

	session := &webmSession{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
		chunks:  make(chan []byte, 32),
	}
	go session.readChunks(cfg.ChunkInterval)

	return session, nil
}

type webmSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	chunks chan []byte

	stopOnce sync.Once
	stopErr  error
}

func (s *webmSession) Chunks() <-chan []byte {
	return s.chunks
}

// readChunks slices the recorder's stdout into chunks flushed at least
// once per interval, closing the channel when the stream ends.
func (s *webmSession) readChunks(interval time.Duration) {
	defer close(s.chunks)

	buf := make([]byte, 4096)
	var pending []byte
	lastFlush := time.Now()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		chunk := make([]byte, len(pending))
		copy(chunk, pending)
		s.chunks <- chunk
		pending = pending[:0]
		lastFlush = time.Now()
	}

	for {
		n, err := s.stdout.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			if time.Since(lastFlush) >= interval {
				flush()
			}
		}
		if err != nil {
			flush()
			return
		}
	}
}

func (s *webmSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if s.stopErr == nil {
				s.stopErr = closeErr
			}
		}

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, trimmed(s.stderr.String()))
		}
	})

	return s.stopErr
}

// Recorders report a non-zero exit after an interrupt; that is a normal
// stop, not a failure.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimmed(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
