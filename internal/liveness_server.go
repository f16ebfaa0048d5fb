package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// StatusProvider reports whether the platform session is currently usable.
type StatusProvider func() bool

// LivenessServer answers every request, whatever its method or path, with a fixed plain-text status.
type LivenessServer struct {
	log      *slog.Logger
	server   *http.Server
	online   StatusProvider
	channels int
}

func NewLivenessServer(log *slog.Logger, port int, online StatusProvider, monitoredChannels int) *LivenessServer {
	s := &LivenessServer{log: log, online: online, channels: monitoredChannels}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *LivenessServer) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, s.Status())
}

func (s *LivenessServer) Status() string {
	state := "offline"
	if s.online != nil && s.online() {
		state = "online"
	}
	return fmt.Sprintf("Camera guard is %s. Monitoring %d voice channel(s).\n", state, s.channels)
}

// Serve accepts connections on the listener until Shutdown is called.
func (s *LivenessServer) Serve(listener net.Listener) error {
	s.log.Info("Starting liveness server", "address", listener.Addr().String())
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("liveness server error: %w", err)
	}
	return nil
}

func (s *LivenessServer) Addr() string {
	return s.server.Addr
}

func (s *LivenessServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
