package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"talkbox/internal/domain"
	"talkbox/internal/ports"
)

const connectivityBannerText = "Assistant service is unreachable. Check your connection."

// Probe performs the one-shot startup reachability check against the
// assistant service. No retry, no backoff.
type Probe struct {
	client  ports.AssistantClient
	session *SessionState
	sink    ports.EventSink
	logger  *zap.Logger
	timeout time.Duration
}

func NewProbe(client ports.AssistantClient, session *SessionState, sink ports.EventSink, logger *zap.Logger, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Probe{client: client, session: session, sink: sink, logger: logger, timeout: timeout}
}

// Run checks reachability once. Failure sets the connectivity banner; a
// success leaves any pre-existing error untouched.
func (p *Probe) Run(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.client.Health(probeCtx); err != nil {
		p.logger.Warn("assistant service unreachable", zap.Error(err))
		p.session.SetError(connectivityBannerText)
		p.sink.SessionError(domain.ErrorCodeConnectivity, err.Error())
		return
	}
	p.logger.Info("assistant service reachable")
}
