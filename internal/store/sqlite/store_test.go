// internal/store/sqlite/store_test.go
package sqlite

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fikalearn/paperweek/internal/models"
)

// setupTestDB creates an in-memory SQLite database with the real schema
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store *SQLiteStore
	ctx   context.Context
	week  time.Time
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)
	ctx := context.Background()

	var questions []models.Question
	add := func(id, section string, marks int, competency, subject, topic string) {
		questions = append(questions, models.Question{
			ID:         id,
			Text:       "question " + id,
			Section:    section,
			Marks:      marks,
			Competency: competency,
			Subject:    subject,
			Topic:      topic,
			Difficulty: "Medium",
		})
	}

	for i := 1; i <= 8; i++ {
		add(fmt.Sprintf("b%02d", i), models.SectionB, 2, models.CompetencyRemembering, "Science", "Light")
	}
	for i := 1; i <= 8; i++ {
		add(fmt.Sprintf("c%02d", i), models.SectionC, 3, models.CompetencyApplying, "Maths", "Algebra")
	}
	add("d01", models.SectionD, 5, models.CompetencyCreating, "Science", "Sound")
	add("d02", models.SectionD, 5, models.CompetencyApplying, "Science", "Sound")
	add("d03", models.SectionD, 5, models.CompetencyEvaluating, "Maths", "Geometry")
	add("d04", models.SectionD, 5, models.CompetencyRemembering, "Maths", "Geometry")
	add("e01", models.SectionE, 4, models.CompetencyCreating, "English", "Grammar")

	require.NoError(t, s.ReplaceQuestions(ctx, questions), "Failed to seed questions")

	return &testData{
		store: s,
		ctx:   ctx,
		week:  time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}, cleanup
}

func (td *testData) paper(id string) *models.GeneratedPaper {
	pick := func(ids ...string) []models.Question {
		qs := make([]models.Question, 0, len(ids))
		for _, qid := range ids {
			qs = append(qs, models.Question{ID: qid})
		}
		return qs
	}
	return &models.GeneratedPaper{
		ID:          id,
		Title:       "CBSE Class 10 Mock Paper - Week 36",
		Description: "Weekly practice paper",
		TotalMarks:  60,
		Sections: map[string]models.PaperSection{
			models.SectionB: {Questions: pick("b01", "b02"), MarksPerQuestion: 2, TotalMarks: 4},
			models.SectionC: {Questions: pick("c01", "c02"), MarksPerQuestion: 3, TotalMarks: 6},
			models.SectionD: {Questions: pick("d01"), MarksPerQuestion: 5, TotalMarks: 5},
			models.SectionE: {Questions: pick("e01"), MarksPerQuestion: 4, TotalMarks: 4},
		},
		GeneratedAt: time.Now().UTC(),
		WeekStart:   td.week,
		WeekEnd:     td.week.AddDate(0, 0, 6),
	}
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestCountQuestionsBySection(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	counts, err := td.store.CountQuestionsBySection(td.ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, counts[models.SectionB])
	assert.Equal(t, 8, counts[models.SectionC])
	assert.Equal(t, 4, counts[models.SectionD])
	assert.Equal(t, 1, counts[models.SectionE])
}

func TestListChapterCounts(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	rows, err := td.store.ListChapterCounts(td.ctx)
	require.NoError(t, err)

	// Seeded catalog: Science/Light 8, Maths/Algebra 8, Science/Sound 2,
	// Maths/Geometry 2, English/Grammar 1; ordered by subject then topic.
	require.Len(t, rows, 5)
	assert.Equal(t, "English", rows[0].Subject)
	assert.Equal(t, "Grammar", rows[0].Topic)
	assert.Equal(t, 1, rows[0].Count)

	assert.Equal(t, "Maths", rows[1].Subject)
	assert.Equal(t, "Algebra", rows[1].Topic)
	assert.Equal(t, 8, rows[1].Count)

	assert.Equal(t, "Geometry", rows[2].Topic)
	assert.Equal(t, 2, rows[2].Count)

	assert.Equal(t, "Science", rows[3].Subject)
	assert.Equal(t, "Light", rows[3].Topic)
	assert.Equal(t, 8, rows[3].Count)

	assert.Equal(t, "Sound", rows[4].Topic)
	assert.Equal(t, 2, rows[4].Count)
}

func TestListSectionCandidates(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("no topic filter", func(t *testing.T) {
		got, err := td.store.ListSectionCandidates(td.ctx, models.SectionB, nil, 5)
		require.NoError(t, err)
		assert.Len(t, got, 5)
		for _, q := range got {
			assert.Equal(t, models.SectionB, q.Section)
		}
	})

	t.Run("topic filter restricts the pool", func(t *testing.T) {
		got, err := td.store.ListSectionCandidates(td.ctx, models.SectionD, []string{"Geometry"}, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "d03", got[0].ID)
		assert.Equal(t, "d04", got[1].ID)
	})

	t.Run("selector ordering", func(t *testing.T) {
		got, err := td.store.ListSectionCandidates(td.ctx, models.SectionD, nil, 10)
		require.NoError(t, err)
		require.Len(t, got, 4)
		// competency ASC, then subject, topic, id
		assert.Equal(t, "d02", got[0].ID) // Applying
		assert.Equal(t, "d01", got[1].ID) // Creating
		assert.Equal(t, "d03", got[2].ID) // Evaluating
		assert.Equal(t, "d04", got[3].ID) // Remembering
	})
}

func TestPromotionFlow(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("candidates ordered competency desc", func(t *testing.T) {
		got, err := td.store.ListPromotionCandidates(td.ctx, models.SectionD,
			[]string{models.CompetencyCreating, models.CompetencyEvaluating, models.CompetencyApplying}, 50)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "d03", got[0].ID) // Evaluating
		assert.Equal(t, "d01", got[1].ID) // Creating
		assert.Equal(t, "d02", got[2].ID) // Applying
	})

	t.Run("move rewrites section and marks", func(t *testing.T) {
		require.NoError(t, td.store.MoveQuestionToSection(td.ctx, "d01", models.SectionE, 4))

		counts, err := td.store.CountQuestionsBySection(td.ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, counts[models.SectionD])
		assert.Equal(t, 2, counts[models.SectionE])

		moved, err := td.store.ListSectionCandidates(td.ctx, models.SectionE, []string{"Sound"}, 10)
		require.NoError(t, err)
		require.Len(t, moved, 1)
		assert.Equal(t, "d01", moved[0].ID)
		assert.Equal(t, 4, moved[0].Marks)
	})
}

func TestSavePaperAndGet(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	paperID, err := td.store.SavePaper(td.ctx, td.paper("cbse-class10-2026-week36"))
	require.NoError(t, err)
	assert.Equal(t, "cbse-class10-2026-week36", paperID)

	t.Run("round trip with section ordering", func(t *testing.T) {
		got, err := td.store.GetPaper(td.ctx, paperID)
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Equal(t, "CBSE Class 10 Mock Paper - Week 36", got.Title)
		assert.Equal(t, 60, got.TotalMarks)
		assert.True(t, got.IsActive)
		assert.True(t, got.WeekStart.Equal(td.week))

		require.Len(t, got.Questions, 6)
		wantIDs := []string{"b01", "b02", "c01", "c02", "d01", "e01"}
		for i, detail := range got.Questions {
			assert.Equal(t, i+1, detail.Ord)
			assert.Equal(t, wantIDs[i], detail.ID)
		}
	})

	t.Run("get non-existent paper", func(t *testing.T) {
		got, err := td.store.GetPaper(td.ctx, "not-a-paper")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("list includes the paper", func(t *testing.T) {
		papers, err := td.store.ListPapers(td.ctx, 10)
		require.NoError(t, err)
		require.Len(t, papers, 1)
		assert.Equal(t, paperID, papers[0].ID)
		assert.Len(t, papers[0].Questions, 6)

		count, err := td.store.CountPapers(td.ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestSavePaper_IDCollision(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	first, err := td.store.SavePaper(td.ctx, td.paper("cbse-class10-2026-week36"))
	require.NoError(t, err)
	assert.Equal(t, "cbse-class10-2026-week36", first)

	second, err := td.store.SavePaper(td.ctx, td.paper("cbse-class10-2026-week36"))
	require.NoError(t, err)
	assert.Equal(t, "cbse-class10-2026-week36-1", second)

	third, err := td.store.SavePaper(td.ctx, td.paper("cbse-class10-2026-week36"))
	require.NoError(t, err)
	assert.Equal(t, "cbse-class10-2026-week36-2", third)
}

func TestWeeklyScheduleUpsert(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("insert scheduled", func(t *testing.T) {
		err := td.store.UpsertWeeklySchedule(td.ctx, &models.WeeklySchedule{
			WeekStart: td.week,
			Status:    models.StatusScheduled,
			CreatedAt: now,
			UpdatedAt: now,
		})
		require.NoError(t, err)

		got, err := td.store.GetWeeklySchedule(td.ctx, td.week)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StatusScheduled, got.Status)
		assert.Nil(t, got.PaperID)
	})

	t.Run("upsert to completed keeps one row", func(t *testing.T) {
		paperID := "cbse-class10-2026-week36"
		err := td.store.UpsertWeeklySchedule(td.ctx, &models.WeeklySchedule{
			WeekStart: td.week,
			Status:    models.StatusCompleted,
			PaperID:   &paperID,
			CreatedAt: now,
			UpdatedAt: now.Add(time.Hour),
		})
		require.NoError(t, err)

		got, err := td.store.GetWeeklySchedule(td.ctx, td.week)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StatusCompleted, got.Status)
		require.NotNil(t, got.PaperID)
		assert.Equal(t, paperID, *got.PaperID)

		all, err := td.store.ListWeeklySchedules(td.ctx, 10)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("missing week", func(t *testing.T) {
		got, err := td.store.GetWeeklySchedule(td.ctx, td.week.AddDate(0, 0, 7))
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestJobLogs(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	payload := `{"trigger":"manual"}`
	entries := []models.JobLog{
		{Level: models.LevelInfo, Message: "first", CreatedAt: base},
		{Level: models.LevelInfo, Message: "second", Data: &payload, CreatedAt: base.Add(time.Minute)},
		{Level: models.LevelError, Message: "third", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		require.NoError(t, td.store.CreateJobLog(td.ctx, &entries[i]))
	}

	got, err := td.store.ListJobLogs(td.ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "third", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
	assert.Equal(t, "first", got[2].Message)

	require.NotNil(t, got[1].Data)
	assert.Equal(t, payload, *got[1].Data)

	t.Run("limit applies", func(t *testing.T) {
		got, err := td.store.ListJobLogs(td.ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "third", got[0].Message)
	})
}

func TestCatalogReplaceNeverRewiresSavedPapers(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	paperID, err := td.store.SavePaper(td.ctx, td.paper("cbse-class10-2026-week36"))
	require.NoError(t, err)

	before, err := td.store.GetPaper(td.ctx, paperID)
	require.NoError(t, err)
	require.Len(t, before.Questions, 6)
	assert.Equal(t, "question b01", before.Questions[0].Text)

	// A fresh catalog with none of the old ids. Old join rows must drop on
	// read, never resolve to different questions at the same ord.
	fresh := []models.Question{
		{ID: "z01", Text: "an unrelated question", Section: models.SectionB, Marks: 2,
			Competency: models.CompetencyRemembering, Subject: "Maths", Topic: "Primes", Difficulty: "Easy"},
	}
	require.NoError(t, td.store.ReplaceQuestions(td.ctx, fresh))

	after, err := td.store.GetPaper(td.ctx, paperID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Empty(t, after.Questions)

	t.Run("surviving ids keep their content", func(t *testing.T) {
		// Re-sync that keeps one original row: that question stays
		// attached with its original text.
		keep := []models.Question{
			{ID: "b01", Text: "question b01", Section: models.SectionB, Marks: 2,
				Competency: models.CompetencyRemembering, Subject: "Science", Topic: "Light", Difficulty: "Medium"},
		}
		require.NoError(t, td.store.ReplaceQuestions(td.ctx, keep))

		got, err := td.store.GetPaper(td.ctx, paperID)
		require.NoError(t, err)
		require.Len(t, got.Questions, 1)
		assert.Equal(t, "b01", got.Questions[0].ID)
		assert.Equal(t, "question b01", got.Questions[0].Text)
	})
}

func TestReplaceQuestionsSwapsCatalog(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	fresh := []models.Question{
		{ID: "n01", Text: "new question", Section: models.SectionB, Marks: 2,
			Competency: models.CompetencyRemembering, Subject: "Science", Topic: "Waves", Difficulty: "Easy"},
	}
	require.NoError(t, td.store.ReplaceQuestions(td.ctx, fresh))

	counts, err := td.store.CountQuestionsBySection(td.ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{models.SectionB: 1}, counts)
}
