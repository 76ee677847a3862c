package domain

import (
	"errors"
	"time"
)

// KST is the fixed UTC+9 zone every schedule calculation runs in
var KST = time.FixedZone("KST", 9*60*60)

// Schedule points. These are fixed and intentionally not configurable.
const (
	// CheckSpec is the daily cron expression evaluated in KST (09:00 every day)
	CheckSpec = "0 9 * * *"

	TriggerWeekday = time.Tuesday
	TargetWeekday  = time.Wednesday

	PollCloseHour   = 20
	PollCloseMinute = 0

	// MinPollDuration replaces a non-positive deadline - now
	MinPollDuration = time.Minute
)

// Message texts
const (
	Announcement = "@everyone 🔔 이번 주 일정을 체크해 주세요!"

	QuestionFormat = "📅 점검 후 성역 참여 가능 요일 투표 (점검일: %s)"
	// AnnotatedQuestionFormat carries the sanctuary start time for the primary channel
	AnnotatedQuestionFormat = "📅 점검 후 성역 참여 가능 요일 투표 (점검일: %s, 시간 : %s)"
	EventTimeAnnotation     = "21:30"

	// TargetDateLayout renders the maintenance date as MM/DD
	TargetDateLayout = "01/02"

	// Slack mirror texts. Slack has no @everyone, <!channel> pings the channel instead.
	SlackAnnouncement   = "<!channel> 🔔 이번 주 일정을 체크해 주세요!"
	SlackDeadlineLabel  = "투표 마감:"
	SlackDeadlineLayout = "01/02 15:04 MST"

	TestCommand      = "!테스트"
	TestCommandReply = "✅ 설정된 모든 채널에 테스트 투표를 발송했습니다."
	// TestCommandPartialReply takes the sent and total destination counts
	TestCommandPartialReply = "⚠️ 테스트 투표 발송: %d/%d 채널 성공. 로그를 확인해 주세요."
)

// WeekdayLabels maps weekdays to the Korean answer labels
var WeekdayLabels = map[time.Weekday]string{
	time.Monday:    "월요일",
	time.Tuesday:   "화요일",
	time.Wednesday: "수요일",
	time.Thursday:  "목요일",
	time.Friday:    "금요일",
	time.Saturday:  "토요일",
	time.Sunday:    "일요일",
}

// AnswerRotation is the answer order, starting on maintenance day
var AnswerRotation = []time.Weekday{
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
	time.Monday,
	time.Tuesday,
}

var ErrChannelNotFound = errors.New("channel not found")
