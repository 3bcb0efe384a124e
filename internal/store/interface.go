package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/fikalearn/paperweek/internal/models"
)

// Store is everything the generator, scheduler and import pipeline need
// from persistence.
type Store interface {
	Close() error
	ApplyMigrations(dir string) error

	CountQuestionsBySection(ctx context.Context) (map[string]int, error)
	ListChapterCounts(ctx context.Context) ([]ChapterCount, error)
	ListSectionCandidates(ctx context.Context, section string, topics []string, limit int) ([]models.Question, error)
	ListPromotionCandidates(ctx context.Context, section string, competencies []string, limit int) ([]models.Question, error)
	MoveQuestionToSection(ctx context.Context, id, section string, marks int) error
	ReplaceQuestions(ctx context.Context, questions []models.Question) error

	SavePaper(ctx context.Context, paper *models.GeneratedPaper) (string, error)
	ListPapers(ctx context.Context, limit int) ([]models.Paper, error)
	GetPaper(ctx context.Context, id string) (*models.Paper, error)
	CountPapers(ctx context.Context) (int, error)

	UpsertWeeklySchedule(ctx context.Context, ws *models.WeeklySchedule) error
	GetWeeklySchedule(ctx context.Context, weekStart time.Time) (*models.WeeklySchedule, error)
	ListWeeklySchedules(ctx context.Context, limit int) ([]models.WeeklySchedule, error)

	CreateJobLog(ctx context.Context, entry *models.JobLog) error
	ListJobLogs(ctx context.Context, limit int) ([]models.JobLog, error)
}

// BaseStore provides common functionality for different DB implementations.
// Converter rewrites ? placeholders for the target dialect; IsConflict
// recognizes the backend's unique-violation errors.
type BaseStore struct {
	DB         *sqlx.DB
	Converter  func(string) string
	IsConflict func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) CountQuestionsBySection(ctx context.Context) (map[string]int, error) {
	var rows []SectionCount
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT section, COUNT(*) as count
		FROM questions
		GROUP BY section
		ORDER BY section
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions by section: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Section] = row.Count
	}
	return counts, nil
}

// ListChapterCounts censuses the catalog's chapters per subject.
func (s *BaseStore) ListChapterCounts(ctx context.Context) ([]ChapterCount, error) {
	var rows []ChapterCount
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT subject, topic, COUNT(*) as count
		FROM questions
		GROUP BY subject, topic
		ORDER BY subject, topic
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapter counts: %w", err)
	}
	return rows, nil
}

// ListSectionCandidates fetches a section's candidate pool pre-sorted for
// the diversity selector: competency, subject, topic, id ascending. An
// empty topics slice means no topic restriction.
func (s *BaseStore) ListSectionCandidates(ctx context.Context, section string, topics []string, limit int) ([]models.Question, error) {
	query := `
		SELECT id, question, section, marks, competency, subject, topic, difficulty,
		       option_a, option_b, option_c, option_d, correct_answer, explanation
		FROM questions
		WHERE section = ?
	`
	args := []interface{}{section}

	if len(topics) > 0 {
		in, inArgs, err := sqlx.In(`topic IN (?)`, topics)
		if err != nil {
			return nil, fmt.Errorf("failed to build topic filter: %w", err)
		}
		query += " AND " + in
		args = append(args, inArgs...)
	}

	query += `
		ORDER BY competency ASC, subject ASC, topic ASC, id ASC
		LIMIT ?
	`
	args = append(args, limit)

	var questions []models.Question
	if err := s.DB.SelectContext(ctx, &questions, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list section %s candidates: %w", section, err)
	}
	return questions, nil
}

// ListPromotionCandidates fetches questions eligible for section backfill,
// highest competency tag first.
func (s *BaseStore) ListPromotionCandidates(ctx context.Context, section string, competencies []string, limit int) ([]models.Question, error) {
	query, args, err := sqlx.In(`
		SELECT id, question, section, marks, competency, subject, topic, difficulty,
		       option_a, option_b, option_c, option_d, correct_answer, explanation
		FROM questions
		WHERE section = ?
		AND competency IN (?)
		ORDER BY competency DESC, id ASC
		LIMIT ?
	`, section, competencies, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build promotion query: %w", err)
	}

	var questions []models.Question
	if err := s.DB.SelectContext(ctx, &questions, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list promotion candidates: %w", err)
	}
	return questions, nil
}

func (s *BaseStore) MoveQuestionToSection(ctx context.Context, id, section string, marks int) error {
	query := s.Converter(`
		UPDATE questions
		SET section = ?, marks = ?
		WHERE id = ?
	`)
	if _, err := s.DB.ExecContext(ctx, query, section, marks, id); err != nil {
		return fmt.Errorf("failed to move question %s to section %s: %w", id, section, err)
	}
	return nil
}

// ReplaceQuestions swaps the whole catalog in one transaction. Papers keep
// their join rows; the catalog is the only thing the sync owns.
func (s *BaseStore) ReplaceQuestions(ctx context.Context, questions []models.Question) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("failed to clear questions: %w", err)
	}

	for i := range questions {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO questions (id, question, section, marks, competency, subject, topic, difficulty,
			                       option_a, option_b, option_c, option_d, correct_answer, explanation)
			VALUES (:id, :question, :section, :marks, :competency, :subject, :topic, :difficulty,
			        :option_a, :option_b, :option_c, :option_d, :correct_answer, :explanation)
		`, &questions[i])
		if err != nil {
			return fmt.Errorf("failed to insert question %s: %w", questions[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace transaction: %w", err)
	}
	return nil
}

// SavePaper creates the paper row and its ordered join rows, retrying
// with -1/-2 suffixes on id collision. Each attempt runs in one
// transaction, so a failure never leaves a paper with partial questions.
func (s *BaseStore) SavePaper(ctx context.Context, paper *models.GeneratedPaper) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		paperID := paper.ID
		if attempt > 0 {
			paperID = fmt.Sprintf("%s-%d", paper.ID, attempt)
			logger.Debug.Printf("Paper id collision, retrying with %s", paperID)
		}

		err := s.insertPaper(ctx, paperID, paper)
		if err == nil {
			return paperID, nil
		}
		if !s.IsConflict(err) {
			return "", fmt.Errorf("failed to create paper %s: %w", paperID, err)
		}
	}

	return "", fmt.Errorf("failed to create paper %s after 3 attempts: %w", paper.ID, ErrDuplicatePaperID)
}

func (s *BaseStore) insertPaper(ctx context.Context, paperID string, paper *models.GeneratedPaper) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin paper transaction: %w", err)
	}
	defer tx.Rollback()

	row := models.Paper{
		ID:          paperID,
		Title:       paper.Title,
		Description: paper.Description,
		TotalMarks:  paper.TotalMarks,
		WeekStart:   paper.WeekStart,
		WeekEnd:     paper.WeekEnd,
		PublishedAt: time.Now().UTC(),
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO papers (id, title, description, total_marks, week_start, week_end, published_at, is_active, created_at)
		VALUES (:id, :title, :description, :total_marks, :week_start, :week_end, :published_at, :is_active, :created_at)
	`, &row); err != nil {
		return err
	}

	ord := 1
	for _, code := range models.SectionOrder {
		section, ok := paper.Sections[code]
		if !ok {
			continue
		}
		for _, q := range section.Questions {
			pq := models.PaperQuestion{
				PaperID:    paperID,
				QuestionID: q.ID,
				Ord:        ord,
			}
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO paper_questions (paper_id, question_id, ord)
				VALUES (:paper_id, :question_id, :ord)
			`, &pq); err != nil {
				return fmt.Errorf("failed to attach question %s to paper %s: %w", q.ID, paperID, err)
			}
			ord++
		}
	}

	return tx.Commit()
}

func (s *BaseStore) ListPapers(ctx context.Context, limit int) ([]models.Paper, error) {
	var papers []models.Paper
	query := s.Converter(`
		SELECT id, title, description, total_marks, week_start, week_end, published_at, is_active, created_at
		FROM papers
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT ?
	`)
	if err := s.DB.SelectContext(ctx, &papers, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}

	for i := range papers {
		questions, err := s.listPaperQuestions(ctx, papers[i].ID)
		if err != nil {
			return nil, err
		}
		papers[i].Questions = questions
	}
	return papers, nil
}

func (s *BaseStore) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	var paper models.Paper
	query := s.Converter(`
		SELECT id, title, description, total_marks, week_start, week_end, published_at, is_active, created_at
		FROM papers
		WHERE id = ?
	`)
	err := s.DB.GetContext(ctx, &paper, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get paper %s: %w", id, err)
	}

	questions, err := s.listPaperQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	paper.Questions = questions
	return &paper, nil
}

func (s *BaseStore) listPaperQuestions(ctx context.Context, paperID string) ([]models.PaperQuestionDetail, error) {
	var questions []models.PaperQuestionDetail
	query := s.Converter(`
		SELECT pq.ord,
		       q.id, q.question, q.section, q.marks, q.competency, q.subject, q.topic, q.difficulty,
		       q.option_a, q.option_b, q.option_c, q.option_d, q.correct_answer, q.explanation
		FROM paper_questions pq
		JOIN questions q ON q.id = pq.question_id
		WHERE pq.paper_id = ?
		ORDER BY pq.ord ASC
	`)
	if err := s.DB.SelectContext(ctx, &questions, query, paperID); err != nil {
		return nil, fmt.Errorf("failed to list questions for paper %s: %w", paperID, err)
	}
	return questions, nil
}

func (s *BaseStore) CountPapers(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM papers`); err != nil {
		return 0, fmt.Errorf("failed to count papers: %w", err)
	}
	return count, nil
}

func (s *BaseStore) UpsertWeeklySchedule(ctx context.Context, ws *models.WeeklySchedule) error {
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO weekly_schedules (week_start, status, paper_id, error_message, created_at, updated_at)
		VALUES (:week_start, :status, :paper_id, :error_message, :created_at, :updated_at)
		ON CONFLICT(week_start) DO UPDATE SET
		status = excluded.status,
		paper_id = excluded.paper_id,
		error_message = excluded.error_message,
		updated_at = excluded.updated_at
	`, ws)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly schedule: %w", err)
	}
	return nil
}

func (s *BaseStore) GetWeeklySchedule(ctx context.Context, weekStart time.Time) (*models.WeeklySchedule, error) {
	var ws models.WeeklySchedule
	query := s.Converter(`
		SELECT week_start, status, paper_id, error_message, created_at, updated_at
		FROM weekly_schedules
		WHERE week_start = ?
	`)
	err := s.DB.GetContext(ctx, &ws, query, weekStart)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly schedule: %w", err)
	}
	return &ws, nil
}

func (s *BaseStore) ListWeeklySchedules(ctx context.Context, limit int) ([]models.WeeklySchedule, error) {
	var schedules []models.WeeklySchedule
	query := s.Converter(`
		SELECT week_start, status, paper_id, error_message, created_at, updated_at
		FROM weekly_schedules
		ORDER BY week_start DESC
		LIMIT ?
	`)
	if err := s.DB.SelectContext(ctx, &schedules, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list weekly schedules: %w", err)
	}
	return schedules, nil
}

func (s *BaseStore) CreateJobLog(ctx context.Context, entry *models.JobLog) error {
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO job_logs (level, message, data, created_at)
		VALUES (:level, :message, :data, :created_at)
	`, entry)
	if err != nil {
		return fmt.Errorf("failed to create job log: %w", err)
	}
	return nil
}

func (s *BaseStore) ListJobLogs(ctx context.Context, limit int) ([]models.JobLog, error) {
	var logs []models.JobLog
	query := s.Converter(`
		SELECT id, level, message, data, created_at
		FROM job_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)
	if err := s.DB.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list job logs: %w", err)
	}
	return logs, nil
}
