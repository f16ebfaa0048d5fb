package main

import (
	"cam-guard/domain"
	"cam-guard/errors"
	"cam-guard/grace"
	"cam-guard/infrastructure/discord"
	"cam-guard/internal"
	"cam-guard/moderation"
	"cam-guard/observability"
	"cam-guard/runtime/workers"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK = iota
	exitRuntime
	exitConfig
	exitAuth
)

const (
	openTimeout     = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Deferred cleanups always execute before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	discord.RedirectLogs(log)

	notification, err := moderation.ParseNotification(config.Notification())
	if err != nil {
		return exitConfig, fmt.Errorf("%w: NOTIFICATION_TEMPLATE: %v", errors.ErrInvalidConfig, err)
	}
	channels := domain.NewMonitoredChannels(config.ChannelIDs()...)
	printSummary(os.Stdout, config, channels)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Platform session
	client, err := discord.NewClient(log, config.DiscordToken, config.EventBufferSize)
	if err != nil {
		return exitRuntime, err
	}
	openCtx, cancelOpen := context.WithTimeout(ctx, openTimeout)
	err = client.Open(openCtx)
	cancelOpen()
	if err != nil {
		if goerrors.Is(err, errors.ErrAuthentication) {
			log.Error("Platform rejected the bot token", "error", err)
			return exitAuth, err
		}
		return exitRuntime, err
	}

	// 4. Moderation
	tracker := grace.NewTracker(log, config.GracePeriod)
	enforcer := moderation.NewEnforcer(log, client, config.Reason(), notification, tracker.Duration())
	handler := moderation.NewPresenceHandler(log, channels,
		moderation.NewExemptionChecker(config.ExemptRoleNames()), tracker, client, enforcer)

	// 5. Supervision
	sup := workers.NewSupervisor(log).Add(
		workers.NewPresenceDispatcher(log, client.Events(), handler),
		workers.NewHeartbeatWorker(log, config.HeartbeatInterval, tracker, client),
	)
	supCtx, cancelSup := context.WithCancel(ctx)
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(supCtx)
	}()

	// 6. HTTP servers
	errChan := make(chan error, 2)

	liveness := internal.NewLivenessServer(log, config.Port, client.Online, channels.Len())
	listener, err := net.Listen("tcp", liveness.Addr())
	if err != nil {
		cancelSup()
		<-supDone
		tracker.Shutdown()
		_ = client.Close()
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", liveness.Addr(), err)
	}
	go func() {
		if err := liveness.Serve(listener); err != nil {
			errChan <- err
		}
	}()

	var metrics *http.Server
	if config.MetricsPort != nil {
		metrics = &http.Server{
			Addr:              fmt.Sprintf(":%d", *config.MetricsPort),
			Handler:           observability.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("Starting metrics server", "address", metrics.Addr)
			if err := metrics.ListenAndServe(); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	// 7. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		code = exitRuntime
		log.Error("Server failure, shutting down", "error", runErr)
	}

	// 8. Final Cleanup
	shutdown(log, liveness, metrics, cancelSup, supDone, tracker, client)
	log.Info("Program stopped cleanly")
	return code, runErr
}

// shutdown stops intake first, then pending enforcements, then the session.
func shutdown(log *slog.Logger, liveness *internal.LivenessServer, metrics *http.Server,
	cancelSup context.CancelFunc, supDone <-chan struct{}, tracker *grace.Tracker, client *discord.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := liveness.Shutdown(ctx); err != nil {
		log.Warn("Liveness server shutdown failed", "error", err)
	}
	if metrics != nil {
		if err := metrics.Shutdown(ctx); err != nil {
			log.Warn("Metrics server shutdown failed", "error", err)
		}
	}

	cancelSup()
	<-supDone

	tracker.Shutdown()
	if err := client.Close(); err != nil {
		log.Warn("Closing platform session failed", "error", err)
	}
}
