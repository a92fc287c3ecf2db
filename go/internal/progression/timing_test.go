package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func threeQuestions() Schedule {
	return Schedule{
		StartTime:           t0,
		DurationPerQuestion: 30 * time.Second,
		TotalQuestions:      3,
	}
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		offset        time.Duration
		wantPhase     Phase
		wantIndex     int
		wantRemaining int
	}{
		{name: "before start", offset: -5 * time.Second, wantPhase: PhaseWaiting},
		{name: "first question", offset: 5 * time.Second, wantPhase: PhaseLive, wantIndex: 0, wantRemaining: 25},
		{name: "third question", offset: 65 * time.Second, wantPhase: PhaseLive, wantIndex: 2, wantRemaining: 25},
		{name: "after last question", offset: 95 * time.Second, wantPhase: PhaseFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Evaluate(t0.Add(tt.offset), threeQuestions())

			require.Equal(t, tt.wantPhase, state.Phase)
			if tt.wantPhase == PhaseLive {
				assert.Equal(t, tt.wantIndex, state.QuestionIndex)
				assert.Equal(t, tt.wantRemaining, state.TimeRemaining)
			}
		})
	}
}

func TestEvaluate_WaitingCarriesStartTime(t *testing.T) {
	state := Evaluate(t0.Add(-time.Hour), threeQuestions())

	require.Equal(t, PhaseWaiting, state.Phase)
	assert.True(t, state.StartTime.Equal(t0))
}

func TestEvaluate_ExactlyAtStartIsLive(t *testing.T) {
	state := Evaluate(t0, threeQuestions())

	require.Equal(t, PhaseLive, state.Phase)
	assert.Equal(t, 0, state.QuestionIndex)
	assert.Equal(t, 30, state.TimeRemaining)
	assert.True(t, state.QuestionEnd.Equal(t0.Add(30*time.Second)))
}

func TestEvaluate_BoundaryMovesToNextQuestion(t *testing.T) {
	s := threeQuestions()

	for k := 0; k < s.TotalQuestions; k++ {
		state := Evaluate(t0.Add(time.Duration(k)*s.DurationPerQuestion), s)

		require.Equal(t, PhaseLive, state.Phase, "k=%d", k)
		assert.Equal(t, k, state.QuestionIndex, "k=%d", k)
		assert.Equal(t, 30, state.TimeRemaining, "k=%d", k)
	}

	// The end of the last question is the start of FINISHED.
	state := Evaluate(t0.Add(time.Duration(s.TotalQuestions)*s.DurationPerQuestion), s)
	assert.Equal(t, PhaseFinished, state.Phase)
}

func TestEvaluate_ZeroQuestionsNeverLive(t *testing.T) {
	s := Schedule{StartTime: t0, DurationPerQuestion: 30 * time.Second}

	assert.Equal(t, PhaseWaiting, Evaluate(t0.Add(-time.Second), s).Phase)
	assert.Equal(t, PhaseFinished, Evaluate(t0, s).Phase)
	assert.Equal(t, PhaseFinished, Evaluate(t0.Add(time.Hour), s).Phase)
}

func TestEvaluate_NonPositiveDurationNeverLive(t *testing.T) {
	s := Schedule{StartTime: t0, TotalQuestions: 3}

	assert.Equal(t, PhaseWaiting, Evaluate(t0.Add(-time.Second), s).Phase)
	assert.Equal(t, PhaseFinished, Evaluate(t0, s).Phase)
}

func TestEvaluate_TimeRemainingRoundsUp(t *testing.T) {
	s := threeQuestions()

	// 29.9s left shows as 30, 0.1s left shows as 1, never 0 while live.
	assert.Equal(t, 30, Evaluate(t0.Add(100*time.Millisecond), s).TimeRemaining)
	assert.Equal(t, 1, Evaluate(t0.Add(29900*time.Millisecond), s).TimeRemaining)
	assert.Equal(t, 1, Evaluate(t0.Add(30*time.Second-time.Nanosecond), s).TimeRemaining)
}

func TestEvaluate_Ranges(t *testing.T) {
	s := Schedule{StartTime: t0, DurationPerQuestion: 7 * time.Second, TotalQuestions: 5}
	total := time.Duration(s.TotalQuestions) * s.DurationPerQuestion

	for offset := -10 * time.Second; offset <= total+10*time.Second; offset += 250 * time.Millisecond {
		now := t0.Add(offset)
		state := Evaluate(now, s)

		switch {
		case offset < 0:
			require.Equal(t, PhaseWaiting, state.Phase, "offset=%s", offset)
		case offset >= total:
			require.Equal(t, PhaseFinished, state.Phase, "offset=%s", offset)
		default:
			require.Equal(t, PhaseLive, state.Phase, "offset=%s", offset)
			assert.Equal(t, int(offset/s.DurationPerQuestion), state.QuestionIndex, "offset=%s", offset)
			assert.GreaterOrEqual(t, state.TimeRemaining, 0, "offset=%s", offset)
			assert.LessOrEqual(t, state.TimeRemaining, int(s.DurationPerQuestion/time.Second), "offset=%s", offset)
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	s := threeQuestions()
	now := t0.Add(47 * time.Second)

	assert.Equal(t, Evaluate(now, s), Evaluate(now, s))
}

func TestEvaluate_MonotonicIndex(t *testing.T) {
	s := Schedule{StartTime: t0, DurationPerQuestion: 3 * time.Second, TotalQuestions: 10}

	last := -1
	for offset := time.Duration(0); offset < 30*time.Second; offset += 137 * time.Millisecond {
		state := Evaluate(t0.Add(offset), s)
		if state.Phase != PhaseLive {
			continue
		}
		require.GreaterOrEqual(t, state.QuestionIndex, last, "offset=%s", offset)
		last = state.QuestionIndex
	}
	assert.Equal(t, 9, last)
}
