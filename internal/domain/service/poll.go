package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/demon-soldier/sanctuary-poll/internal/domain"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/contract"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/entity"
	"github.com/demon-soldier/sanctuary-poll/internal/metrics"
	"github.com/google/uuid"
	"github.com/slack-go/slack"
)

// Discord accepts poll durations in whole hours, up to 32 days
const maxDiscordPollHours = 768

type pollService struct {
	discordClient contract.DiscordClient
	slackClient   contract.SlackClient
	destinations  []entity.Destination
	metrics       *metrics.Metrics
	now           func() time.Time
}

func newPollService(destinations []entity.Destination, discordClient contract.DiscordClient, slackClient contract.SlackClient, m *metrics.Metrics) *pollService {
	return &pollService{
		discordClient: discordClient,
		slackClient:   slackClient,
		destinations:  destinations,
		metrics:       m,
		now:           time.Now,
	}
}

// BuildDestinations lists the Discord channels in configured order, the first one
// annotated, followed by the Slack mirror when slackChannelID is set.
func BuildDestinations(channelIDs []int64, slackChannelID string) []entity.Destination {
	destinations := make([]entity.Destination, 0, len(channelIDs)+1)
	for i, id := range channelIDs {
		destinations = append(destinations, entity.Destination{
			Platform:  entity.PlatformDiscord,
			ChannelID: strconv.FormatInt(id, 10),
			Annotated: i == 0,
		})
	}
	if slackChannelID != "" {
		destinations = append(destinations, entity.Destination{
			Platform:  entity.PlatformSlack,
			ChannelID: slackChannelID,
		})
	}
	return destinations
}

func (s *pollService) SendScheduledPoll(ctx context.Context) []entity.Delivery {
	now := s.now().In(domain.KST)
	logger := slog.With("run_id", uuid.NewString())

	logger.Info("Sending scheduled poll",
		"now", now.Format(time.RFC3339),
		"destinations", len(s.destinations),
	)

	deliveries := make([]entity.Delivery, 0, len(s.destinations))
	for _, dest := range s.destinations {
		delivery := s.deliver(ctx, now, dest)
		s.metrics.RecordDelivery(delivery)
		deliveries = append(deliveries, delivery)

		switch delivery.Status {
		case entity.DeliverySent:
			logger.Info("Poll sent", "platform", dest.Platform, "channel_id", dest.ChannelID)
		case entity.DeliverySkipped:
			logger.Warn("Skipping destination", "platform", dest.Platform, "channel_id", dest.ChannelID, "error", delivery.Err)
		default:
			logger.Error("Failed to send poll", "platform", dest.Platform, "channel_id", dest.ChannelID, "error", delivery.Err)
		}
	}

	return deliveries
}

// deliver never panics out; a destination failing must not stop the others
func (s *pollService) deliver(ctx context.Context, now time.Time, dest entity.Destination) (d entity.Delivery) {
	d = entity.Delivery{Destination: dest}
	defer func() {
		if r := recover(); r != nil {
			d.Status = entity.DeliveryFailed
			d.Err = fmt.Errorf("panic while sending: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		d.Status = entity.DeliveryFailed
		d.Err = err
		return d
	}

	poll := composePoll(now, dest)

	var err error
	switch dest.Platform {
	case entity.PlatformDiscord:
		err = s.sendDiscordPoll(dest.ChannelID, poll)
	case entity.PlatformSlack:
		err = s.sendSlackPoll(dest.ChannelID, poll)
	default:
		err = fmt.Errorf("unknown platform %q", dest.Platform)
	}

	switch {
	case err == nil:
		d.Status = entity.DeliverySent
	case errors.Is(err, domain.ErrChannelNotFound):
		d.Status = entity.DeliverySkipped
		d.Err = err
	default:
		d.Status = entity.DeliveryFailed
		d.Err = err
	}
	return d
}

func (s *pollService) sendDiscordPoll(channelID string, poll entity.Poll) error {
	channel, err := s.discordClient.GetChannel(channelID)
	if err != nil {
		return err
	}
	if channel == nil {
		return fmt.Errorf("%w: %s", domain.ErrChannelNotFound, channelID)
	}

	if _, err := s.discordClient.SendMessage(channelID, newDiscordPollMessage(poll)); err != nil {
		return fmt.Errorf("failed to send Discord message: %w", err)
	}
	return nil
}

func (s *pollService) sendSlackPoll(channelID string, poll entity.Poll) error {
	if s.slackClient == nil {
		return fmt.Errorf("%w: slack is not configured", domain.ErrChannelNotFound)
	}

	_, _, err := s.slackClient.PostMessage(
		channelID,
		slack.MsgOptionText(slackPollText(poll), false),
		slack.MsgOptionAsUser(false),
	)
	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}
	return nil
}

// newDiscordPollMessage builds a new message and poll for a single channel
func newDiscordPollMessage(poll entity.Poll) *discordgo.MessageSend {
	answers := make([]discordgo.PollAnswer, 0, len(poll.Answers))
	for _, answer := range poll.Answers {
		answers = append(answers, discordgo.PollAnswer{
			Media: &discordgo.PollMedia{Text: answer},
		})
	}

	return &discordgo.MessageSend{
		Content: poll.Announcement,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone},
		},
		Poll: &discordgo.Poll{
			Question:         discordgo.PollMedia{Text: poll.Question},
			Answers:          answers,
			AllowMultiselect: poll.AllowMultiselect,
			Duration:         discordPollHours(poll.Duration),
		},
	}
}

// discordPollHours rounds up so the poll never closes before the deadline
func discordPollHours(d time.Duration) int {
	hours := int(math.Ceil(d.Hours()))
	if hours < 1 {
		return 1
	}
	if hours > maxDiscordPollHours {
		return maxDiscordPollHours
	}
	return hours
}

// Slack has no native polls, so the mirror posts a numbered list
func slackPollText(poll entity.Poll) string {
	var b strings.Builder
	b.WriteString(domain.SlackAnnouncement)
	b.WriteString("\n\n*")
	b.WriteString(poll.Question)
	b.WriteString("*\n")
	for i, answer := range poll.Answers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, answer)
	}
	fmt.Fprintf(&b, "\n%s %s", domain.SlackDeadlineLabel, poll.Deadline.In(domain.KST).Format(domain.SlackDeadlineLayout))
	return b.String()
}
