package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/demon-soldier/sanctuary-poll/internal/domain"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/entity"
	"github.com/demon-soldier/sanctuary-poll/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBuildDestinations(t *testing.T) {
	got := BuildDestinations([]int64{111, 222, 333}, "C999")

	want := []entity.Destination{
		{Platform: entity.PlatformDiscord, ChannelID: "111", Annotated: true},
		{Platform: entity.PlatformDiscord, ChannelID: "222"},
		{Platform: entity.PlatformDiscord, ChannelID: "333"},
		{Platform: entity.PlatformSlack, ChannelID: "C999"},
	}
	assert.Equal(t, want, got)

	assert.Len(t, BuildDestinations([]int64{1, 2}, ""), 2)
}

func Test_pollService_SendScheduledPoll(t *testing.T) {
	tuesday := kst(2024, 1, 2, 9, 0)
	twoChannels := BuildDestinations([]int64{111, 222}, "")

	tests := []struct {
		name         string
		now          time.Time
		destinations []entity.Destination
		buildMock    func(m allMocks, sent map[string]*discordgo.MessageSend)
		wantStatus   []entity.DeliveryStatus
		check        func(t *testing.T, sent map[string]*discordgo.MessageSend, deliveries []entity.Delivery)
	}{
		{
			name:         "Should send one poll per channel with the annotation only on the primary",
			now:          tuesday,
			destinations: twoChannels,
			buildMock: func(m allMocks, sent map[string]*discordgo.MessageSend) {
				gomock.InOrder(
					m.mockDiscordClient.EXPECT().GetChannel("111").Return(&discordgo.Channel{ID: "111"}, nil).Times(1),
					m.mockDiscordClient.EXPECT().SendMessage("111", gomock.Any()).
						DoAndReturn(captureSend(sent)).Times(1),
					m.mockDiscordClient.EXPECT().GetChannel("222").Return(&discordgo.Channel{ID: "222"}, nil).Times(1),
					m.mockDiscordClient.EXPECT().SendMessage("222", gomock.Any()).
						DoAndReturn(captureSend(sent)).Times(1),
				)
			},
			wantStatus: []entity.DeliveryStatus{entity.DeliverySent, entity.DeliverySent},
			check: func(t *testing.T, sent map[string]*discordgo.MessageSend, _ []entity.Delivery) {
				primary, secondary := sent["111"], sent["222"]
				require.NotNil(t, primary)
				require.NotNil(t, secondary)

				assert.Equal(t, domain.Announcement, primary.Content)
				assert.Equal(t, "📅 점검 후 성역 참여 가능 요일 투표 (점검일: 01/03, 시간 : 21:30)", primary.Poll.Question.Text)
				assert.Equal(t, "📅 점검 후 성역 참여 가능 요일 투표 (점검일: 01/03)", secondary.Poll.Question.Text)

				for _, msg := range []*discordgo.MessageSend{primary, secondary} {
					assert.True(t, msg.Poll.AllowMultiselect)
					assert.Equal(t, 35, msg.Poll.Duration)
					require.Len(t, msg.Poll.Answers, 7)
					assert.Equal(t, "수요일", msg.Poll.Answers[0].Media.Text)
					assert.Equal(t, "화요일", msg.Poll.Answers[6].Media.Text)
					assert.Contains(t, msg.AllowedMentions.Parse, discordgo.AllowedMentionTypeEveryone)
				}

				assert.NotSame(t, primary.Poll, secondary.Poll, "polls must not be shared between channels")
			},
		},
		{
			name:         "Should skip an unresolvable channel and still send to the other",
			now:          tuesday,
			destinations: twoChannels,
			buildMock: func(m allMocks, sent map[string]*discordgo.MessageSend) {
				m.mockDiscordClient.EXPECT().GetChannel("111").
					Return(nil, fmt.Errorf("%w: 111", domain.ErrChannelNotFound)).Times(1)
				m.mockDiscordClient.EXPECT().GetChannel("222").Return(&discordgo.Channel{ID: "222"}, nil).Times(1)
				m.mockDiscordClient.EXPECT().SendMessage("222", gomock.Any()).
					DoAndReturn(captureSend(sent)).Times(1)
			},
			wantStatus: []entity.DeliveryStatus{entity.DeliverySkipped, entity.DeliverySent},
			check: func(t *testing.T, sent map[string]*discordgo.MessageSend, deliveries []entity.Delivery) {
				assert.NotContains(t, sent, "111")
				assert.Contains(t, sent, "222")
				assert.ErrorIs(t, deliveries[0].Err, domain.ErrChannelNotFound)
			},
		},
		{
			name:         "Should skip a channel resolved as nil",
			now:          tuesday,
			destinations: twoChannels,
			buildMock: func(m allMocks, sent map[string]*discordgo.MessageSend) {
				m.mockDiscordClient.EXPECT().GetChannel("111").Return(nil, nil).Times(1)
				m.mockDiscordClient.EXPECT().GetChannel("222").Return(&discordgo.Channel{ID: "222"}, nil).Times(1)
				m.mockDiscordClient.EXPECT().SendMessage("222", gomock.Any()).
					DoAndReturn(captureSend(sent)).Times(1)
			},
			wantStatus: []entity.DeliveryStatus{entity.DeliverySkipped, entity.DeliverySent},
		},
		{
			name:         "Should report a transport failure without retrying",
			now:          tuesday,
			destinations: twoChannels,
			buildMock: func(m allMocks, sent map[string]*discordgo.MessageSend) {
				m.mockDiscordClient.EXPECT().GetChannel("111").Return(&discordgo.Channel{ID: "111"}, nil).Times(1)
				m.mockDiscordClient.EXPECT().SendMessage("111", gomock.Any()).
					Return(nil, errors.New("connection reset")).Times(1)
				m.mockDiscordClient.EXPECT().GetChannel("222").Return(&discordgo.Channel{ID: "222"}, nil).Times(1)
				m.mockDiscordClient.EXPECT().SendMessage("222", gomock.Any()).
					DoAndReturn(captureSend(sent)).Times(1)
			},
			wantStatus: []entity.DeliveryStatus{entity.DeliveryFailed, entity.DeliverySent},
			check: func(t *testing.T, _ map[string]*discordgo.MessageSend, deliveries []entity.Delivery) {
				assert.ErrorContains(t, deliveries[0].Err, "connection reset")
			},
		},
		{
			name:         "Should fail rather than skip when the channel lookup itself fails",
			now:          tuesday,
			destinations: twoChannels,
			buildMock: func(m allMocks, sent map[string]*discordgo.MessageSend) {
				m.mockDiscordClient.EXPECT().GetChannel("111").
					Return(nil, errors.New("failed to get channel 111: dial tcp: connection refused")).Times(1)
				m.mockDiscordClient.EXPECT().GetChannel("222").Return(&discordgo.Channel{ID: "222"}, nil).Times(1)
				m.mockDiscordClient.EXPECT().SendMessage("222", gomock.Any()).
					DoAndReturn(captureSend(sent)).Times(1)
			},
			wantStatus: []entity.DeliveryStatus{entity.DeliveryFailed, entity.DeliverySent},
			check: func(t *testing.T, _ map[string]*discordgo.MessageSend, deliveries []entity.Delivery) {
				assert.NotErrorIs(t, deliveries[0].Err, domain.ErrChannelNotFound)
			},
		},
		{
			name:         "Should contain a panicking transport to its destination",
			now:          tuesday,
			destinations: twoChannels,
			buildMock: func(m allMocks, sent map[string]*discordgo.MessageSend) {
				m.mockDiscordClient.EXPECT().GetChannel("111").DoAndReturn(func(string) (*discordgo.Channel, error) {
					panic("session closed")
				}).Times(1)
				m.mockDiscordClient.EXPECT().GetChannel("222").Return(&discordgo.Channel{ID: "222"}, nil).Times(1)
				m.mockDiscordClient.EXPECT().SendMessage("222", gomock.Any()).
					DoAndReturn(captureSend(sent)).Times(1)
			},
			wantStatus: []entity.DeliveryStatus{entity.DeliveryFailed, entity.DeliverySent},
		},
		{
			name:         "Should send a one hour poll when the deadline already passed",
			now:          kst(2024, 1, 3, 21, 0), // Wednesday after close
			destinations: twoChannels[:1],
			buildMock: func(m allMocks, sent map[string]*discordgo.MessageSend) {
				m.mockDiscordClient.EXPECT().GetChannel("111").Return(&discordgo.Channel{ID: "111"}, nil).Times(1)
				m.mockDiscordClient.EXPECT().SendMessage("111", gomock.Any()).
					DoAndReturn(captureSend(sent)).Times(1)
			},
			wantStatus: []entity.DeliveryStatus{entity.DeliverySent},
			check: func(t *testing.T, sent map[string]*discordgo.MessageSend, _ []entity.Delivery) {
				assert.Equal(t, 1, sent["111"].Poll.Duration)
				assert.Contains(t, sent["111"].Poll.Question.Text, "01/03")
			},
		},
		{
			name:         "Should mirror the poll to Slack as text",
			now:          tuesday,
			destinations: BuildDestinations([]int64{111}, "C999"),
			buildMock: func(m allMocks, sent map[string]*discordgo.MessageSend) {
				m.mockDiscordClient.EXPECT().GetChannel("111").Return(&discordgo.Channel{ID: "111"}, nil).Times(1)
				m.mockDiscordClient.EXPECT().SendMessage("111", gomock.Any()).
					DoAndReturn(captureSend(sent)).Times(1)
				m.mockSlackClient.EXPECT().PostMessage("C999", gomock.Any(), gomock.Any()).
					DoAndReturn(func(channelID string, options ...slack.MsgOption) (string, string, error) {
						_, values, err := slack.UnsafeApplyMsgOptions("xoxb-test", channelID, "https://slack.com/api/", options...)
						if err != nil {
							return "", "", err
						}
						text := values.Get("text")
						if !assert.Contains(t, text, "<!channel>") ||
							!assert.Contains(t, text, "1. 수요일") ||
							!assert.Contains(t, text, "투표 마감: 01/03 20:00 KST") ||
							!assert.NotContains(t, text, "21:30") {
							return "", "", errors.New("unexpected slack text")
						}
						return channelID, "1704153600.000100", nil
					}).Times(1)
			},
			wantStatus: []entity.DeliveryStatus{entity.DeliverySent, entity.DeliverySent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctrl := newServiceTestMock(t)
			defer ctrl.Finish()

			sent := map[string]*discordgo.MessageSend{}
			tt.buildMock(m, sent)

			s := newPollService(tt.destinations, m.mockDiscordClient, m.mockSlackClient, nil)
			s.now = fixedClock(tt.now)

			var deliveries []entity.Delivery
			require.NotPanics(t, func() {
				deliveries = s.SendScheduledPoll(context.Background())
			})

			require.Len(t, deliveries, len(tt.wantStatus))
			for i, want := range tt.wantStatus {
				assert.Equal(t, want, deliveries[i].Status, "destination %d", i)
				assert.Equal(t, tt.destinations[i], deliveries[i].Destination)
			}

			if tt.check != nil {
				tt.check(t, sent, deliveries)
			}
		})
	}
}

func Test_pollService_SendScheduledPoll_CanceledContext(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	s := newPollService(BuildDestinations([]int64{1, 2}, ""), m.mockDiscordClient, m.mockSlackClient, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deliveries := s.SendScheduledPoll(ctx)
	require.Len(t, deliveries, 2)
	for _, d := range deliveries {
		assert.Equal(t, entity.DeliveryFailed, d.Status)
		assert.ErrorIs(t, d.Err, context.Canceled)
	}
}

func Test_pollService_SendScheduledPoll_SlackNotConfigured(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	s := newPollService(BuildDestinations(nil, "C999"), m.mockDiscordClient, nil, nil)

	deliveries := s.SendScheduledPoll(context.Background())
	require.Len(t, deliveries, 1)
	assert.Equal(t, entity.DeliverySkipped, deliveries[0].Status)
}

func Test_pollService_SendScheduledPoll_RecordsMetrics(t *testing.T) {
	m, ctrl := newServiceTestMock(t)
	defer ctrl.Finish()

	reg := prometheus.NewRegistry()
	met, err := metrics.New(reg)
	require.NoError(t, err)

	m.mockDiscordClient.EXPECT().GetChannel("1").Return(&discordgo.Channel{ID: "1"}, nil).Times(1)
	m.mockDiscordClient.EXPECT().SendMessage("1", gomock.Any()).Return(&discordgo.Message{}, nil).Times(1)
	m.mockDiscordClient.EXPECT().GetChannel("2").Return(nil, domain.ErrChannelNotFound).Times(1)

	s := newPollService(BuildDestinations([]int64{1, 2}, ""), m.mockDiscordClient, m.mockSlackClient, met)
	s.now = fixedClock(kst(2024, 1, 2, 9, 0))
	s.SendScheduledPoll(context.Background())

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "sanctuary_poll_deliveries_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			var status string
			for _, l := range metric.GetLabel() {
				if l.GetName() == "status" {
					status = l.GetValue()
				}
			}
			counts[status] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"sent": 1, "skipped": 1}, counts)
}

func Test_discordPollHours(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want int
	}{
		{name: "Should keep whole hours", d: 35 * time.Hour, want: 35},
		{name: "Should round partial hours up", d: 34*time.Hour + 59*time.Minute, want: 35},
		{name: "Should raise the one minute fallback to an hour", d: time.Minute, want: 1},
		{name: "Should cap at the Discord maximum", d: 40 * 24 * time.Hour, want: maxDiscordPollHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, discordPollHours(tt.d))
		})
	}
}

func captureSend(sent map[string]*discordgo.MessageSend) func(string, *discordgo.MessageSend) (*discordgo.Message, error) {
	return func(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
		sent[channelID] = msg
		return &discordgo.Message{ID: "m-" + channelID, ChannelID: channelID}, nil
	}
}
