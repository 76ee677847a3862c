package service

import (
	"fmt"
	"time"

	"github.com/demon-soldier/sanctuary-poll/internal/domain"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/entity"
)

// targetDate returns the next maintenance day, today included
func targetDate(now time.Time) time.Time {
	now = now.In(domain.KST)
	days := (int(domain.TargetWeekday) - int(now.Weekday()) + 7) % 7
	return now.AddDate(0, 0, days)
}

// pollDeadline is the closing time on the target date
func pollDeadline(target time.Time) time.Time {
	target = target.In(domain.KST)
	return time.Date(target.Year(), target.Month(), target.Day(),
		domain.PollCloseHour, domain.PollCloseMinute, 0, 0, domain.KST)
}

func pollDuration(now, deadline time.Time) time.Duration {
	d := deadline.Sub(now)
	if d <= 0 {
		return domain.MinPollDuration
	}
	return d
}

func pollQuestion(target time.Time, annotated bool) string {
	date := target.In(domain.KST).Format(domain.TargetDateLayout)
	if annotated {
		return fmt.Sprintf(domain.AnnotatedQuestionFormat, date, domain.EventTimeAnnotation)
	}
	return fmt.Sprintf(domain.QuestionFormat, date)
}

// pollAnswers returns a new slice on every call so polls never share state
func pollAnswers() []string {
	answers := make([]string, 0, len(domain.AnswerRotation))
	for _, day := range domain.AnswerRotation {
		answers = append(answers, domain.WeekdayLabels[day])
	}
	return answers
}

func composePoll(now time.Time, dest entity.Destination) entity.Poll {
	target := targetDate(now)
	deadline := pollDeadline(target)

	return entity.Poll{
		Announcement:     domain.Announcement,
		Question:         pollQuestion(target, dest.Annotated),
		Answers:          pollAnswers(),
		AllowMultiselect: true,
		Duration:         pollDuration(now, deadline),
		TargetDate:       target,
		Deadline:         deadline,
	}
}
