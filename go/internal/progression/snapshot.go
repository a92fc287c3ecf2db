package progression

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/livequiz/go/internal/models"
)

// AnsweredSet reports whether a question was already answered.
type AnsweredSet interface {
	Has(questionID uuid.UUID) bool
}

// Snapshot is the self-contained payload pushed to a client on every tick.
type Snapshot struct {
	Status         Phase         `json:"status"`
	StartTime      *time.Time    `json:"startTime,omitempty"`
	QuestionIndex  int           `json:"questionIndex,omitempty"`
	TotalQuestions int           `json:"totalQuestions,omitempty"`
	TimeRemaining  *int          `json:"timeRemaining,omitempty"`
	IsAnswered     *bool         `json:"isAnswered,omitempty"`
	Question       *QuestionView `json:"question,omitempty"`
}

// QuestionView is the client-facing question.
type QuestionView struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Options []OptionView `json:"options"`
}

// OptionView is the client-facing option.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Build evaluates the tournament schedule at now and assembles the snapshot for
// a user whose answered questions are in answered.
func Build(now time.Time, t *models.Tournament, answered AnsweredSet) Snapshot {
	state := Evaluate(now, ScheduleOf(t))

	switch state.Phase {
	case PhaseWaiting:
		start := state.StartTime.UTC()
		return Snapshot{Status: PhaseWaiting, StartTime: &start}
	case PhaseFinished:
		return Snapshot{Status: PhaseFinished}
	}

	remaining := state.TimeRemaining
	isAnswered := false
	snap := Snapshot{
		Status:         PhaseLive,
		QuestionIndex:  state.QuestionIndex + 1,
		TotalQuestions: t.TotalQuestions,
		TimeRemaining:  &remaining,
		IsAnswered:     &isAnswered,
	}

	// A partial question list still yields a LIVE snapshot, just without a question.
	q, ok := t.QuestionAt(state.QuestionIndex)
	if !ok {
		return snap
	}
	if answered != nil {
		isAnswered = answered.Has(q.ID)
	}
	snap.Question = newQuestionView(q)
	return snap
}

// Terminal reports whether no further snapshot will follow.
func (s Snapshot) Terminal() bool {
	return s.Status == PhaseFinished
}

// Fields returns the snapshot as a generic map with the same keys as its JSON form.
func (s Snapshot) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"status": string(s.Status),
	}
	if s.StartTime != nil {
		fields["startTime"] = s.StartTime.Format(time.RFC3339Nano)
	}
	if s.Status != PhaseLive {
		return fields
	}

	fields["questionIndex"] = s.QuestionIndex
	fields["totalQuestions"] = s.TotalQuestions
	if s.TimeRemaining != nil {
		fields["timeRemaining"] = *s.TimeRemaining
	}
	if s.IsAnswered != nil {
		fields["isAnswered"] = *s.IsAnswered
	}
	if s.Question != nil {
		options := make([]interface{}, 0, len(s.Question.Options))
		for _, o := range s.Question.Options {
			options = append(options, map[string]interface{}{"id": o.ID, "text": o.Text})
		}
		fields["question"] = map[string]interface{}{
			"id":      s.Question.ID,
			"text":    s.Question.Text,
			"options": options,
		}
	}
	return fields
}

func newQuestionView(q *models.Question) *QuestionView {
	options := make([]OptionView, 0, len(q.Options))
	for _, o := range q.Options {
		options = append(options, OptionView{ID: o.ID.String(), Text: o.Text})
	}
	return &QuestionView{
		ID:      q.ID.String(),
		Text:    q.Text,
		Options: options,
	}
}
