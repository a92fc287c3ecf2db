package progression

import (
	"time"

	"github.com/mcdev12/livequiz/go/internal/models"
)

// Phase of a tournament at a given instant.
type Phase string

const (
	PhaseWaiting  Phase = "WAITING"
	PhaseLive     Phase = "LIVE"
	PhaseFinished Phase = "FINISHED"
)

// Schedule holds the timing inputs of a tournament.
type Schedule struct {
	StartTime           time.Time
	DurationPerQuestion time.Duration
	TotalQuestions      int
}

// ScheduleOf extracts the schedule of a tournament.
func ScheduleOf(t *models.Tournament) Schedule {
	return Schedule{
		StartTime:           t.StartTime,
		DurationPerQuestion: t.DurationPerQuestion,
		TotalQuestions:      t.TotalQuestions,
	}
}

// State is the result of evaluating a schedule at an instant.
// QuestionIndex, QuestionEnd and TimeRemaining are only meaningful when LIVE.
type State struct {
	Phase         Phase
	StartTime     time.Time
	QuestionIndex int
	QuestionEnd   time.Time
	TimeRemaining int
}

// Evaluate maps a schedule and the current time to a progression state.
// It has no hidden inputs: the same arguments always produce the same state.
func Evaluate(now time.Time, s Schedule) State {
	if now.Before(s.StartTime) {
		return State{Phase: PhaseWaiting, StartTime: s.StartTime}
	}

	// A non-positive duration can never make a question live.
	if s.DurationPerQuestion <= 0 {
		return State{Phase: PhaseFinished, StartTime: s.StartTime}
	}

	elapsed := now.Sub(s.StartTime)
	index := int(elapsed / s.DurationPerQuestion)
	if index >= s.TotalQuestions {
		return State{Phase: PhaseFinished, StartTime: s.StartTime}
	}

	questionEnd := s.StartTime.Add(time.Duration(index+1) * s.DurationPerQuestion)
	return State{
		Phase:         PhaseLive,
		StartTime:     s.StartTime,
		QuestionIndex: index,
		QuestionEnd:   questionEnd,
		TimeRemaining: ceilSeconds(questionEnd.Sub(now)),
	}
}

// ceilSeconds rounds up to whole seconds and clamps at zero.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
