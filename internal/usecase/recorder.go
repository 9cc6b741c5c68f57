package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talkbox/internal/domain"
	"talkbox/internal/ports"
)

var ErrCaptureActive = errors.New("a recording is already in progress")

var ErrNoActiveCapture = errors.New("no active recording")

const microphoneBannerText = "Microphone unavailable. Check permissions and input device."

// VoiceSender receives the finalized recording blob.
type VoiceSender interface {
	SendVoice(ctx context.Context, audio []byte)
}

// RecorderConfig controls capture behavior.
type RecorderConfig struct {
	Capture     ports.CaptureConfig
	RecordLimit time.Duration
}

// Recorder drives one microphone capture at a time: acquisition, chunk
// buffering, the fixed auto-stop deadline, and finalization into a single
// webm blob handed to the voice round trip.
type Recorder struct {
	capture ports.AudioCapture
	sender  VoiceSender
	session *SessionState
	sink    ports.EventSink
	logger  *zap.Logger
	cfg     RecorderConfig

	mu      sync.Mutex
	current *captureRun
	state   domain.RecordState
}

type captureRun struct {
	id      string
	ctx     context.Context
	capture ports.CaptureSession
	timer   *time.Timer

	chunkMu sync.Mutex
	chunks  [][]byte

	done chan struct{}
}

func NewRecorder(
	capture ports.AudioCapture,
	sender VoiceSender,
	session *SessionState,
	sink ports.EventSink,
	logger *zap.Logger,
	cfg RecorderConfig,
) *Recorder {
	if cfg.RecordLimit <= 0 {
		cfg.RecordLimit = 5 * time.Second
	}
	return &Recorder{
		capture: capture,
		sender:  sender,
		session: session,
		sink:    sink,
		logger:  logger,
		cfg:     cfg,
		state:   domain.RecordStateIdle,
	}
}

// Start acquires the microphone and begins buffering chunks. The capture
// auto-stops once the record limit elapses, unless stopped earlier.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		return ErrCaptureActive
	}
	r.mu.Unlock()

	capture, err := r.capture.Start(ctx, r.cfg.Capture)
	if err != nil {
		r.logger.Warn("microphone acquisition failed", zap.Error(err))
		r.session.SetError(microphoneBannerText)
		r.sink.SessionError(domain.ErrorCodeMicrophone, err.Error())
		return err
	}

	run := &captureRun{
		id:      uuid.NewString(),
		ctx:     ctx,
		capture: capture,
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		_ = capture.Stop()
		return ErrCaptureActive
	}
	r.current = run
	r.state = domain.RecordStateCapturing
	r.mu.Unlock()

	r.session.ClearError()
	r.session.SetRecording(true)

	go collectChunks(run)
	timer := time.AfterFunc(r.cfg.RecordLimit, func() {
		// Loses silently when a manual stop already claimed the run.
		r.finalize(run, true)
	})
	r.mu.Lock()
	run.timer = timer
	r.mu.Unlock()

	r.logger.Info("recording started",
		zap.String("capture", run.id),
		zap.Duration("limit", r.cfg.RecordLimit))
	return nil
}

// Stop ends the active capture early, pre-empting the auto-stop deadline,
// and dispatches the recording. Returns ErrNoActiveCapture when nothing
// is recording.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	run := r.current
	r.mu.Unlock()
	if run == nil {
		return ErrNoActiveCapture
	}
	r.finalize(run, false)
	return nil
}

// Abort discards the active capture without uploading anything.
func (r *Recorder) Abort() error {
	run := r.claim(nil)
	if run == nil {
		return ErrNoActiveCapture
	}

	_ = run.capture.Stop()
	<-run.done

	r.setState(domain.RecordStateIdle)
	r.session.SetRecording(false)
	r.logger.Info("recording discarded", zap.String("capture", run.id))
	return nil
}

// State reports the capture lifecycle phase.
func (r *Recorder) State() domain.RecordState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// finalize is the single authoritative stop path. The deadline timer and
// a manual stop race to claim the run; the loser finds it already claimed
// and does nothing, so the capture is never finalized twice.
func (r *Recorder) finalize(run *captureRun, fromTimer bool) {
	if r.claim(run) == nil {
		return
	}

	if err := run.capture.Stop(); err != nil {
		r.logger.Warn("capture did not stop cleanly",
			zap.String("capture", run.id), zap.Error(err))
	}
	<-run.done

	r.setState(domain.RecordStateFinalizing)
	r.session.SetRecording(false)

	blob := run.assemble()
	r.logger.Info("recording finalized",
		zap.String("capture", run.id),
		zap.Int("bytes", len(blob)),
		zap.Bool("autoStop", fromTimer))

	if len(blob) == 0 {
		r.setState(domain.RecordStateIdle)
		r.session.SetError(microphoneBannerText)
		r.sink.SessionError(domain.ErrorCodeMicrophone, "no audio captured")
		return
	}

	r.setState(domain.RecordStateIdle)
	r.sender.SendVoice(run.ctx, blob)
}

// claim atomically takes ownership of the current run and disarms its
// deadline timer. Passing nil claims whatever run is active; passing a
// specific run claims it only if it is still the current one.
func (r *Recorder) claim(run *captureRun) *captureRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || (run != nil && r.current != run) {
		return nil
	}
	claimed := r.current
	r.current = nil
	if claimed.timer != nil {
		claimed.timer.Stop()
	}
	return claimed
}

func (r *Recorder) setState(state domain.RecordState) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

func collectChunks(run *captureRun) {
	defer close(run.done)
	for chunk := range run.capture.Chunks() {
		run.chunkMu.Lock()
		run.chunks = append(run.chunks, chunk)
		run.chunkMu.Unlock()
	}
}

// assemble concatenates the buffered chunks into one webm blob.
func (run *captureRun) assemble() []byte {
	run.chunkMu.Lock()
	defer run.chunkMu.Unlock()

	total := 0
	for _, chunk := range run.chunks {
		total += len(chunk)
	}
	blob := make([]byte, 0, total)
	for _, chunk := range run.chunks {
		blob = append(blob, chunk...)
	}
	return blob
}
