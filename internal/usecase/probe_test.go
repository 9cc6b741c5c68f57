package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"talkbox/internal/domain"
)

func TestProbeFailureSetsConnectivityError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{healthErr: errors.New("connection refused")}
	sink := &fakeEventSink{}
	session := NewSessionState(sink)
	probe := NewProbe(client, session, sink, zap.NewNop(), time.Second)

	probe.Run(context.Background())

	if session.Snapshot().Error == "" {
		t.Fatalf("expected connectivity error flag")
	}
	errs := sink.snapshotErrors()
	if len(errs) != 1 || errs[0].code != domain.ErrorCodeConnectivity {
		t.Fatalf("expected connectivity error event, got %+v", errs)
	}
}

func TestProbeSuccessLeavesExistingErrorUntouched(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	sink := &fakeEventSink{}
	session := NewSessionState(sink)
	session.SetError("unrelated banner")

	probe := NewProbe(client, session, sink, zap.NewNop(), time.Second)
	probe.Run(context.Background())

	if got := session.Snapshot().Error; got != "unrelated banner" {
		t.Fatalf("probe success must not clear unrelated errors, got %q", got)
	}
}
