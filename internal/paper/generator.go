package paper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/fikalearn/paperweek/internal/metrics"
	"github.com/fikalearn/paperweek/internal/models"
	"github.com/fikalearn/paperweek/internal/store"
)

// Config carries the tunable generation constants. The scarcity numbers
// are pragmatic, not derived from the template.
type Config struct {
	ScarcityThreshold int `toml:"scarcity_threshold"`
	PromoteBatch      int `toml:"promote_batch"`
	PromoteScanLimit  int `toml:"promote_scan_limit"`
	OversampleFactor  int `toml:"oversample_factor"`
}

func DefaultConfig() Config {
	return Config{
		ScarcityThreshold: 10,
		PromoteBatch:      20,
		PromoteScanLimit:  50,
		OversampleFactor:  3,
	}
}

// Generator assembles complete papers from the question catalog.
type Generator struct {
	store store.Store
	cfg   Config
}

func NewGenerator(s store.Store, cfg Config) *Generator {
	return &Generator{store: s, cfg: cfg}
}

// Generate assembles one paper for the week starting at weekStart. A
// non-empty filters list restricts candidates to the listed topics and
// marks the paper as custom.
func (g *Generator) Generate(ctx context.Context, weekStart time.Time, filters []models.ChapterFilter) (*models.GeneratedPaper, error) {
	weekEnd := weekStart.AddDate(0, 0, 6)

	counts, err := g.store.CountQuestionsBySection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions by section: %w", err)
	}
	logger.Debug.Printf("Available questions by section: %v", counts)

	if err := g.ensureSectionEQuestions(ctx, counts[models.SectionE]); err != nil {
		return nil, err
	}

	topics := flattenTopics(filters)

	sections := make(map[string]models.PaperSection, len(Template))
	for _, code := range models.SectionOrder {
		cfg := Template[code]

		candidates, err := g.store.ListSectionCandidates(ctx, code, topics, cfg.QuestionsNeeded*g.cfg.OversampleFactor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch section %s candidates: %w", code, err)
		}

		questions, err := Select(candidates, cfg.QuestionsNeeded)
		if err != nil {
			var pool *InsufficientPoolError
			if errors.As(err, &pool) {
				pool.Section = code
				return nil, pool
			}
			return nil, err
		}

		sections[code] = models.PaperSection{
			Questions:        questions,
			MarksPerQuestion: cfg.MarksPerQuestion,
			TotalMarks:       cfg.TotalMarks,
		}
	}

	custom := len(filters) > 0
	gp := &models.GeneratedPaper{
		ID:           buildPaperID(weekStart, custom),
		Title:        buildTitle(weekStart, filters),
		Description:  buildDescription(filters),
		TotalMarks:   PaperTotalMarks,
		Sections:     sections,
		GeneratedAt:  time.Now().UTC(),
		WeekStart:    weekStart,
		WeekEnd:      weekEnd,
		Distribution: distribution(sections),
	}

	logger.Info.Printf("Generated paper %s with %d questions", gp.ID, gp.QuestionCount())
	return gp, nil
}

// ensureSectionEQuestions promotes higher-competency section D questions
// into section E while the catalog holds too few native E questions. The
// threshold makes this a one-shot catalog migration: once met, later
// assemblies skip it.
func (g *Generator) ensureSectionEQuestions(ctx context.Context, sectionECount int) error {
	if sectionECount >= g.cfg.ScarcityThreshold {
		return nil
	}

	logger.Info.Printf("Section E has %d questions, backfilling from section D", sectionECount)

	candidates, err := g.store.ListPromotionCandidates(ctx, models.SectionD, PromotableCompetencies, g.cfg.PromoteScanLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch promotion candidates: %w", err)
	}

	promote := candidates
	if len(promote) > g.cfg.PromoteBatch {
		promote = promote[:g.cfg.PromoteBatch]
	}

	for _, q := range promote {
		if err := g.store.MoveQuestionToSection(ctx, q.ID, models.SectionE, models.SectionMarks[models.SectionE]); err != nil {
			return fmt.Errorf("failed to promote question %s: %w", q.ID, err)
		}
	}

	metrics.QuestionsPromotedTotal.Add(float64(len(promote)))
	logger.Info.Printf("Promoted %d questions to section E", len(promote))
	return nil
}

func flattenTopics(filters []models.ChapterFilter) []string {
	var topics []string
	for _, f := range filters {
		topics = append(topics, f.Chapters...)
	}
	return topics
}

func distribution(sections map[string]models.PaperSection) models.Distribution {
	dist := models.Distribution{
		BySubject:    make(map[string]int),
		ByCompetency: make(map[string]int),
		ByTopic:      make(map[string]int),
	}
	for _, section := range sections {
		for _, q := range section.Questions {
			dist.BySubject[q.Subject]++
			dist.ByCompetency[q.Competency]++
			dist.ByTopic[q.Topic]++
		}
	}
	return dist
}

// buildPaperID derives the identifier from the target week, or a
// timestamped custom marker when chapter filters were supplied.
func buildPaperID(weekStart time.Time, custom bool) string {
	year := weekStart.Year()
	if custom {
		return fmt.Sprintf("custom-%d-%s", year, strconv.FormatInt(time.Now().UnixMilli(), 36))
	}
	_, week := weekStart.ISOWeek()
	return fmt.Sprintf("cbse-class10-%d-week%02d", year, week)
}

func buildTitle(weekStart time.Time, filters []models.ChapterFilter) string {
	if len(filters) == 0 {
		_, week := weekStart.ISOWeek()
		return fmt.Sprintf("CBSE Class 10 Mock Paper - Week %d", week)
	}
	subjects := make([]string, 0, len(filters))
	for _, f := range filters {
		subjects = append(subjects, f.Subject)
	}
	return fmt.Sprintf("Custom CBSE Paper - %s", strings.Join(subjects, ", "))
}

func buildDescription(filters []models.ChapterFilter) string {
	if len(filters) == 0 {
		return "Weekly practice paper covering multiple competencies and topics"
	}
	chapters := make([]string, 0, len(filters))
	for _, f := range filters {
		chapters = append(chapters, strings.Join(f.Chapters, ", "))
	}
	return fmt.Sprintf("Custom paper from selected chapters: %s", strings.Join(chapters, " | "))
}
