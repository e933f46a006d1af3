package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// blockingServer mimics grpc.Server: GracefulStop returns once Stop is called.
type blockingServer struct {
	release  chan struct{}
	stopped  atomic.Bool
	graceful bool
}

func (s *blockingServer) GracefulStop() {
	if s.graceful {
		return
	}
	<-s.release
}

func (s *blockingServer) Stop() {
	s.stopped.Store(true)
	close(s.release)
}

func TestStopGRPCGraceful(t *testing.T) {
	srv := &blockingServer{release: make(chan struct{}), graceful: true}
	stopGRPC(context.Background(), srv)
	if srv.stopped.Load() {
		t.Error("expected no forced stop when graceful stop returns")
	}
}

func TestStopGRPCForcesAfterTimeout(t *testing.T) {
	srv := &blockingServer{release: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		stopGRPC(ctx, srv)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stopGRPC did not return after the deadline")
	}
	if !srv.stopped.Load() {
		t.Error("expected a forced stop once the deadline passed")
	}
}
