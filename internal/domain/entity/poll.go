package entity

import "time"

type Platform string

const (
	PlatformDiscord Platform = "discord"
	PlatformSlack   Platform = "slack"
)

// Destination is a channel a poll gets delivered to
type Destination struct {
	Platform  Platform
	ChannelID string
	// Annotated marks the channel whose question carries the event time
	Annotated bool
}

// Poll is built fresh for every destination on every firing
type Poll struct {
	Announcement     string
	Question         string
	Answers          []string
	AllowMultiselect bool
	Duration         time.Duration
	TargetDate       time.Time
	Deadline         time.Time
}

type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliverySkipped DeliveryStatus = "skipped"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Delivery is the outcome of sending one poll to one destination
type Delivery struct {
	Destination Destination
	Status      DeliveryStatus
	Err         error
}
