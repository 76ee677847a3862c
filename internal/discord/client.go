package discord

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/demon-soldier/sanctuary-poll/internal/domain"
)

// Client wraps a discordgo session and reports when it is ready to send
type Client struct {
	session   *discordgo.Session
	ready     chan struct{}
	readyOnce sync.Once
}

// New creates the session. readMessages requests the privileged message content
// intent, which the gateway refuses unless it is enabled for the application.
func New(token string, readMessages bool) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	if readMessages {
		session.Identify.Intents |= discordgo.IntentMessageContent
	}

	c := &Client{
		session: session,
		ready:   make(chan struct{}),
	}
	session.AddHandler(c.onReady)
	return c, nil
}

func (c *Client) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		slog.Info("Logged in to Discord", "user", r.User.Username, "guilds", len(r.Guilds))
	}
	c.readyOnce.Do(func() { close(c.ready) })
}

// Ready is closed after the first READY event
func (c *Client) Ready() <-chan struct{} {
	return c.ready
}

func (c *Client) IsReady() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// AddHandler registers a discordgo event handler on the underlying session
func (c *Client) AddHandler(handler any) func() {
	return c.session.AddHandler(handler)
}

func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.session.Close()
}

// GetChannel looks a channel up in the state cache first and falls back to the REST API
func (c *Client) GetChannel(channelID string) (*discordgo.Channel, error) {
	if c.session.State != nil {
		if channel, err := c.session.State.Channel(channelID); err == nil {
			return channel, nil
		}
	}

	channel, err := c.session.Channel(channelID)
	if err != nil {
		if isUnresolvable(err) {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrChannelNotFound, channelID, err)
		}
		return nil, fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}
	return channel, nil
}

// isUnresolvable is true when Discord answered that the channel is gone or
// hidden from the bot. Network errors, 5xx and rate limits are not.
func isUnresolvable(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeMissingAccess:
			return true
		}
	}
	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound, http.StatusForbidden:
			return true
		}
	}
	return false
}

func (c *Client) SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return c.session.ChannelMessageSendComplex(channelID, msg)
}
