package contract

import (
	"context"

	"github.com/demon-soldier/sanctuary-poll/internal/domain/entity"
)

//go:generate mockgen -source=service.go -destination=../../../mocks/service_mock.go -package=mocks

type PollService interface {
	// SendScheduledPoll composes the weekly poll and delivers it to every destination
	SendScheduledPoll(ctx context.Context) []entity.Delivery
}
