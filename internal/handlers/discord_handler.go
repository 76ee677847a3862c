package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/demon-soldier/sanctuary-poll/internal/domain"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/contract"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/entity"
)

// DiscordHandler handles the manual test command, which sends the same poll as the weekly schedule.
// The command is only accepted in the configured Discord channels.
type DiscordHandler struct {
	ctx             context.Context
	discordClient   contract.DiscordClient
	pollService     contract.PollService
	allowedChannels map[string]struct{}
}

func New(ctx context.Context, discordClient contract.DiscordClient, pollService contract.PollService, destinations []entity.Destination) *DiscordHandler {
	allowed := make(map[string]struct{}, len(destinations))
	for _, dest := range destinations {
		if dest.Platform == entity.PlatformDiscord {
			allowed[dest.ChannelID] = struct{}{}
		}
	}

	return &DiscordHandler{
		ctx:             ctx,
		discordClient:   discordClient,
		pollService:     pollService,
		allowedChannels: allowed,
	}
}

// HandleMessageCreate is registered on the discordgo session
func (h *DiscordHandler) HandleMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if strings.TrimSpace(m.Content) != domain.TestCommand {
		return
	}

	if _, ok := h.allowedChannels[m.ChannelID]; !ok {
		slog.Warn("Ignoring test command outside configured channels", "channel_id", m.ChannelID, "user_id", m.Author.ID)
		return
	}

	slog.Info("Test command received", "channel_id", m.ChannelID, "user_id", m.Author.ID)
	deliveries := h.pollService.SendScheduledPoll(h.ctx)

	sent := 0
	for _, d := range deliveries {
		if d.Status == entity.DeliverySent {
			sent++
		}
	}
	slog.Info("Test command finished", "sent", sent, "destinations", len(deliveries))

	reply := domain.TestCommandReply
	if sent < len(deliveries) || len(deliveries) == 0 {
		reply = fmt.Sprintf(domain.TestCommandPartialReply, sent, len(deliveries))
	}

	if _, err := h.discordClient.SendMessage(m.ChannelID, &discordgo.MessageSend{Content: reply}); err != nil {
		slog.Error("Failed to reply to test command", "channel_id", m.ChannelID, "error", err)
	}
}
