// Package discord adapts a discordgo session to the guard: it turns gateway
// voice state updates into domain events and exposes the moderation commands
// the guard needs as a contract.Platform.
package discord

import (
	"cam-guard/domain/event"
	"cam-guard/errors"
	"cam-guard/observability"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/websocket"
)

// closeAuthenticationFailed is the gateway close code sent for an invalid token.
const closeAuthenticationFailed = 4004

type Client struct {
	log       *slog.Logger
	session   *discordgo.Session
	events    chan event.VoiceStateChanged
	online    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(log *slog.Logger, token string, bufferSize int) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates
	// Handlers run on the gateway reader, one at a time, so events keep their order.
	session.SyncEvents = true
	session.StateEnabled = true
	session.State.TrackVoice = true
	session.LogLevel = discordgo.LogWarning

	c := &Client{
		log:     log,
		session: session,
		events:  make(chan event.VoiceStateChanged, bufferSize),
		done:    make(chan struct{}),
	}
	session.AddHandler(c.onReady)
	session.AddHandler(c.onResumed)
	session.AddHandler(c.onDisconnect)
	session.AddHandler(c.onVoiceStateUpdate)
	return c, nil
}

// Open validates the token and connects to the gateway, both bounded by ctx.
// A rejected token is reported as errors.ErrAuthentication.
func (c *Client) Open(ctx context.Context) error {
	if _, err := c.session.User("@me", discordgo.WithContext(ctx)); err != nil {
		return classifyOpenError(err)
	}
	if err := openWithContext(ctx, c.session.Open, c.session.Close); err != nil {
		return classifyOpenError(err)
	}
	return nil
}

// openWithContext stops waiting for open once ctx is done.
// An open that still succeeds afterwards is closed again.
func openWithContext(ctx context.Context, open, closeFn func() error) error {
	done := make(chan error, 1)
	go func() { done <- open() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		go func() {
			if err := <-done; err == nil {
				_ = closeFn()
			}
		}()
		return fmt.Errorf("gateway handshake: %w", ctx.Err())
	}
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.setOnline(false)
	return c.session.Close()
}

// Events is the ordered stream of voice state changes seen by the gateway.
func (c *Client) Events() <-chan event.VoiceStateChanged {
	return c.events
}

func (c *Client) Online() bool {
	return c.online.Load()
}

func (c *Client) setOnline(online bool) {
	c.online.Store(online)
	observability.BoolGauge(observability.GatewayOnline, online)
}

func (c *Client) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	c.setOnline(true)
	c.log.Info("Connected to gateway", "user", r.User.Username, "guilds", len(r.Guilds))
}

func (c *Client) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	c.setOnline(true)
	c.log.Info("Gateway session resumed")
}

func (c *Client) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	c.setOnline(false)
	c.log.Warn("Disconnected from gateway")
}

func (c *Client) onVoiceStateUpdate(_ *discordgo.Session, update *discordgo.VoiceStateUpdate) {
	change, ok := toVoiceStateChanged(update, time.Now().UTC())
	if !ok {
		c.log.Debug("Ignoring voice state update without guild or user")
		return
	}
	select {
	case c.events <- change:
	case <-c.done:
	}
}

func classifyOpenError(err error) error {
	var restErr *discordgo.RESTError
	if goerrors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}
	var closeErr *websocket.CloseError
	if goerrors.As(err, &closeErr) && closeErr.Code == closeAuthenticationFailed {
		return fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}
	return fmt.Errorf("opening discord session: %w", err)
}
