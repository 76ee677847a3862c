package contract

import "github.com/bwmarrin/discordgo"

//go:generate mockgen -source=discord.go -destination=../../../mocks/discord_mock.go -package=mocks

// DiscordClient defines the Discord operations the bot needs
type DiscordClient interface {
	// GetChannel resolves a channel id, wrapping domain.ErrChannelNotFound when it cannot
	GetChannel(channelID string) (*discordgo.Channel, error)

	// SendMessage posts a message, with an optional poll attached, to a channel
	SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
}
