package service

import (
	"github.com/demon-soldier/sanctuary-poll/internal/domain/contract"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/entity"
	"github.com/demon-soldier/sanctuary-poll/internal/metrics"
)

type Instance struct {
	Poll      *pollService
	Scheduler *scheduler
}

func NewInstance(destinations []entity.Destination, discordClient contract.DiscordClient, slackClient contract.SlackClient, m *metrics.Metrics) *Instance {
	pollService := newPollService(destinations, discordClient, slackClient, m)

	return &Instance{
		Poll:      pollService,
		Scheduler: newScheduler(pollService, m),
	}
}
