package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

const channelEnvPrefix = "CHANNEL_ID_"

var (
	ErrMissingToken    = errors.New("TOKEN is required")
	ErrTooFewChannels  = errors.New("at least two channel ids are required")
	ErrInvalidChannel  = errors.New("invalid channel id")
	ErrPartialSlackCfg = errors.New("SLACK_BOT_TOKEN and SLACK_CHANNEL_ID must be set together")
)

type Config struct {
	DiscordToken string
	// ChannelIDs keeps CHANNEL_ID_1, CHANNEL_ID_2, ... in order. The first one is the primary channel.
	ChannelIDs []int64

	SlackBotToken  string
	SlackChannelID string

	EnableTestCommand bool

	Port      string
	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	cfg := &Config{
		DiscordToken:      getEnv("TOKEN", ""),
		SlackBotToken:     getEnv("SLACK_BOT_TOKEN", ""),
		SlackChannelID:    getEnv("SLACK_CHANNEL_ID", ""),
		EnableTestCommand: getBoolEnv("ENABLE_TEST_COMMAND", false),
		Port:              getEnv("PORT", "3000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DiscordToken == "" {
		return nil, ErrMissingToken
	}

	channelIDs, err := loadChannelIDs()
	if err != nil {
		return nil, err
	}
	cfg.ChannelIDs = channelIDs

	if (cfg.SlackBotToken == "") != (cfg.SlackChannelID == "") {
		return nil, ErrPartialSlackCfg
	}

	return cfg, nil
}

// SlackEnabled reports whether the Slack mirror is configured
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

// loadChannelIDs reads CHANNEL_ID_1.. until the first unset index
func loadChannelIDs() ([]int64, error) {
	var ids []int64
	for i := 1; ; i++ {
		key := channelEnvPrefix + strconv.Itoa(i)
		value := os.Getenv(key)
		if value == "" {
			break
		}

		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidChannel, key, value)
		}
		ids = append(ids, id)
	}

	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrTooFewChannels, len(ids))
	}
	return ids, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
