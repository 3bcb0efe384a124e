package paper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fikalearn/paperweek/internal/models"
)

func question(id, competency, subject, topic string) models.Question {
	return models.Question{
		ID:         id,
		Text:       "text for " + id,
		Section:    models.SectionC,
		Marks:      3,
		Competency: competency,
		Subject:    subject,
		Topic:      topic,
	}
}

func TestSelect_InsufficientPool(t *testing.T) {
	candidates := []models.Question{
		question("q1", models.CompetencyRemembering, "Science", "Light"),
		question("q2", models.CompetencyApplying, "Maths", "Algebra"),
	}

	got, err := Select(candidates, 3)
	assert.Nil(t, got)

	var pool *InsufficientPoolError
	require.ErrorAs(t, err, &pool)
	assert.Equal(t, 3, pool.Need)
	assert.Equal(t, 2, pool.Have)
}

func TestSelect_ExactPoolPassesThrough(t *testing.T) {
	candidates := []models.Question{
		question("q1", models.CompetencyRemembering, "Science", "Light"),
		question("q2", models.CompetencyRemembering, "Science", "Light"),
		question("q3", models.CompetencyRemembering, "Science", "Light"),
	}

	got, err := Select(candidates, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, q := range got {
		assert.Equal(t, candidates[i].ID, q.ID)
	}
}

func TestSelect_CompetencySpread(t *testing.T) {
	// Four competencies in the pool, all four must appear when n allows it.
	candidates := []models.Question{
		question("q01", models.CompetencyApplying, "Maths", "Algebra"),
		question("q02", models.CompetencyApplying, "Maths", "Algebra"),
		question("q03", models.CompetencyCreating, "Science", "Light"),
		question("q04", models.CompetencyCreating, "Science", "Light"),
		question("q05", models.CompetencyEvaluating, "English", "Grammar"),
		question("q06", models.CompetencyEvaluating, "English", "Grammar"),
		question("q07", models.CompetencyRemembering, "Maths", "Geometry"),
		question("q08", models.CompetencyRemembering, "Maths", "Geometry"),
	}

	got, err := Select(candidates, 6)
	require.NoError(t, err)
	require.Len(t, got, 6)

	competencies := make(map[string]bool)
	for _, q := range got {
		competencies[q.Competency] = true
	}
	assert.Len(t, competencies, 4, "all pool competencies should be represented")
}

func TestSelect_SubjectSpread(t *testing.T) {
	// One competency only, so pass 1 picks a single question; pass 2 must
	// then reach for fresh subjects before repeats.
	candidates := []models.Question{
		question("q01", models.CompetencyApplying, "Maths", "Algebra"),
		question("q02", models.CompetencyApplying, "Maths", "Algebra"),
		question("q03", models.CompetencyApplying, "Maths", "Algebra"),
		question("q04", models.CompetencyApplying, "Science", "Light"),
		question("q05", models.CompetencyApplying, "Science", "Sound"),
		question("q06", models.CompetencyApplying, "English", "Grammar"),
	}

	got, err := Select(candidates, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	subjects := make(map[string]bool)
	for _, q := range got {
		subjects[q.Subject] = true
	}
	assert.Len(t, subjects, 3, "one question per subject when subjects suffice")
}

func TestSelect_Deterministic(t *testing.T) {
	var candidates []models.Question
	competencies := []string{
		models.CompetencyApplying,
		models.CompetencyCreating,
		models.CompetencyEvaluating,
		models.CompetencyRemembering,
	}
	subjects := []string{"English", "Maths", "Science"}
	for i := 0; i < 20; i++ {
		candidates = append(candidates, question(
			fmt.Sprintf("q%02d", i+1),
			competencies[i%len(competencies)],
			subjects[i%len(subjects)],
			fmt.Sprintf("Topic%d", i%5),
		))
	}

	first, err := Select(candidates, 6)
	require.NoError(t, err)

	for run := 0; run < 5; run++ {
		again, err := Select(candidates, 6)
		require.NoError(t, err)
		require.Len(t, again, 6)
		for i := range first {
			assert.Equal(t, first[i].ID, again[i].ID, "selection must be stable across runs")
		}
	}
}

func TestSelect_FillsFromPoolInOrder(t *testing.T) {
	// Two competencies, one subject: pass 3 has to fill the remainder.
	candidates := []models.Question{
		question("q1", models.CompetencyApplying, "Maths", "Algebra"),
		question("q2", models.CompetencyCreating, "Maths", "Algebra"),
		question("q3", models.CompetencyApplying, "Maths", "Algebra"),
		question("q4", models.CompetencyApplying, "Maths", "Algebra"),
	}

	got, err := Select(candidates, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	seen := make(map[string]bool)
	for _, q := range got {
		assert.False(t, seen[q.ID], "no duplicates")
		seen[q.ID] = true
	}
}

func TestInsufficientPoolError_Message(t *testing.T) {
	err := &InsufficientPoolError{Section: models.SectionD, Need: 3, Have: 1}
	assert.Equal(t, "not enough questions for Section D: need 3, have 1", err.Error())
	assert.True(t, errors.As(error(err), new(*InsufficientPoolError)))
}
