package contract

import "github.com/slack-go/slack"

//go:generate mockgen -source=slack.go -destination=../../../mocks/slack_mock.go -package=mocks

// SlackClient is the subset of *slack.Client used by the Slack mirror
type SlackClient interface {
	// PostMessage sends a message to a Slack channel
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}
