package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownOnSignal_DrainsInflightRequests(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			close(started)
			<-release
			w.WriteHeader(http.StatusOK)
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	drained := make(chan struct{})
	go func() {
		shutdownOnSignal(ctx, srv)
		close(drained)
	}()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	type result struct {
		status int
		err    error
	}
	got := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			got <- result{err: err}
			return
		}
		resp.Body.Close() //nolint:errcheck
		got <- result{status: resp.StatusCode}
	}()

	// Cancel while the request is in flight, then let the handler finish.
	<-started
	cancel()
	time.Sleep(50 * time.Millisecond)
	close(release)

	r := <-got
	require.NoError(t, r.err)
	assert.Equal(t, http.StatusOK, r.status)
	assert.ErrorIs(t, <-serveErr, http.ErrServerClosed)

	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}
