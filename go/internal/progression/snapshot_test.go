package progression

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/livequiz/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answeredIDs map[uuid.UUID]bool

func (a answeredIDs) Has(id uuid.UUID) bool { return a[id] }

func sampleTournament() *models.Tournament {
	t := &models.Tournament{
		ID:                  uuid.New(),
		Title:               "Friday Trivia",
		StartTime:           t0,
		DurationPerQuestion: 30 * time.Second,
		TotalQuestions:      3,
	}
	for i := 0; i < 3; i++ {
		t.Questions = append(t.Questions, models.Question{
			ID:       uuid.New(),
			Text:     []string{"Capital of France?", "2 + 2?", "Largest planet?"}[i],
			Position: i,
			Options: []models.Option{
				{ID: uuid.New(), Text: "A"},
				{ID: uuid.New(), Text: "B"},
			},
		})
	}
	return t
}

func TestBuild_Waiting(t *testing.T) {
	tour := sampleTournament()

	snap := Build(t0.Add(-5*time.Second), tour, nil)

	require.Equal(t, PhaseWaiting, snap.Status)
	require.NotNil(t, snap.StartTime)
	assert.True(t, snap.StartTime.Equal(t0))
	assert.Nil(t, snap.Question)
	assert.False(t, snap.Terminal())
}

func TestBuild_LiveIsOneBased(t *testing.T) {
	tour := sampleTournament()

	snap := Build(t0.Add(65*time.Second), tour, answeredIDs{})

	require.Equal(t, PhaseLive, snap.Status)
	assert.Equal(t, 3, snap.QuestionIndex)
	assert.Equal(t, 3, snap.TotalQuestions)
	require.NotNil(t, snap.TimeRemaining)
	assert.Equal(t, 25, *snap.TimeRemaining)
	require.NotNil(t, snap.Question)
	assert.Equal(t, tour.Questions[2].ID.String(), snap.Question.ID)
	assert.Equal(t, "Largest planet?", snap.Question.Text)
	assert.Len(t, snap.Question.Options, 2)
	assert.Equal(t, tour.Questions[2].Options[0].ID.String(), snap.Question.Options[0].ID)
}

func TestBuild_IsAnswered(t *testing.T) {
	tour := sampleTournament()
	answered := answeredIDs{tour.Questions[2].ID: true}

	for i, offset := range []time.Duration{5 * time.Second, 35 * time.Second, 65 * time.Second} {
		snap := Build(t0.Add(offset), tour, answered)

		require.NotNil(t, snap.IsAnswered)
		assert.Equal(t, i == 2, *snap.IsAnswered, "question %d", i)
	}
}

func TestBuild_Finished(t *testing.T) {
	snap := Build(t0.Add(95*time.Second), sampleTournament(), nil)

	assert.Equal(t, PhaseFinished, snap.Status)
	assert.True(t, snap.Terminal())
}

func TestBuild_PartialQuestionList(t *testing.T) {
	tour := sampleTournament()
	tour.Questions = tour.Questions[:1]

	snap := Build(t0.Add(40*time.Second), tour, nil)

	require.Equal(t, PhaseLive, snap.Status)
	assert.Equal(t, 2, snap.QuestionIndex)
	assert.Nil(t, snap.Question)
	require.NotNil(t, snap.IsAnswered)
	assert.False(t, *snap.IsAnswered)
}

func TestSnapshot_JSON(t *testing.T) {
	tour := sampleTournament()

	t.Run("waiting", func(t *testing.T) {
		raw, err := json.Marshal(Build(t0.Add(-time.Minute), tour, nil))
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"WAITING","startTime":"2026-03-14T18:00:00Z"}`, string(raw))
	})

	t.Run("live keeps zero values", func(t *testing.T) {
		// The last nanosecond of the question still rounds to one second.
		raw, err := json.Marshal(Build(t0.Add(30*time.Second-time.Nanosecond), tour, nil))
		require.NoError(t, err)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "LIVE", body["status"])
		assert.Equal(t, float64(1), body["questionIndex"])
		assert.Equal(t, float64(1), body["timeRemaining"])
		assert.Equal(t, false, body["isAnswered"])
		assert.NotContains(t, body, "startTime")
	})

	t.Run("finished", func(t *testing.T) {
		raw, err := json.Marshal(Build(t0.Add(time.Hour), tour, nil))
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"FINISHED"}`, string(raw))
	})
}

func TestSnapshot_FieldsMatchJSON(t *testing.T) {
	tour := sampleTournament()
	snap := Build(t0.Add(65*time.Second), tour, answeredIDs{tour.Questions[2].ID: true})

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	fieldsRaw, err := json.Marshal(snap.Fields())
	require.NoError(t, err)

	assert.JSONEq(t, string(raw), string(fieldsRaw))
}

func TestSnapshot_StartTimeIsUTC(t *testing.T) {
	tour := sampleTournament()
	tour.StartTime = t0.In(time.FixedZone("CET", 3600))
	snap := Build(t0.Add(-time.Minute), tour, nil)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	fieldsRaw, err := json.Marshal(snap.Fields())
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":"WAITING","startTime":"2026-03-14T18:00:00Z"}`, string(raw))
	assert.JSONEq(t, string(raw), string(fieldsRaw))
}
