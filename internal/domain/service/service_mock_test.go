package service

import (
	"testing"
	"time"

	"github.com/demon-soldier/sanctuary-poll/internal/domain"
	"github.com/demon-soldier/sanctuary-poll/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type allMocks struct {
	mockDiscordClient *mocks.MockDiscordClient
	mockSlackClient   *mocks.MockSlackClient
	mockPollService   *mocks.MockPollService
}

func newServiceTestMock(t *testing.T) (m allMocks, ctrl *gomock.Controller) {
	t.Helper()

	ctrl = gomock.NewController(t)

	m = allMocks{
		mockDiscordClient: mocks.NewMockDiscordClient(ctrl),
		mockSlackClient:   mocks.NewMockSlackClient(ctrl),
		mockPollService:   mocks.NewMockPollService(ctrl),
	}

	// validate service creation
	pollService := newPollService(nil, m.mockDiscordClient, m.mockSlackClient, nil)
	require.NotNil(t, pollService)

	return
}

// kst builds a fixed time in the schedule zone
func kst(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, domain.KST)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
