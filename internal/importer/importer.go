// internal/importer/importer.go
package importer

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/fikalearn/paperweek/internal/models"
	"github.com/fikalearn/paperweek/internal/store"
)

// Importer pulls the question sheet's CSV export and replaces the catalog
// with it. One-way ETL, owns nothing but the questions table.
type Importer struct {
	store       store.Store
	client      *http.Client
	sheetID     string
	classFilter string
}

type Analysis struct {
	TotalQuestions int            `json:"totalQuestions"`
	BySubject      map[string]int `json:"bySubject"`
	BySection      map[string]int `json:"bySection"`
	ByCompetency   map[string]int `json:"byCompetency"`
}

func New(st store.Store, sheetID, classFilter string) *Importer {
	return &Importer{
		store:       st,
		client:      http.DefaultClient,
		sheetID:     sheetID,
		classFilter: classFilter,
	}
}

func (i *Importer) Sync(ctx context.Context) (*Analysis, error) {
	body, err := i.fetchCSV(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	questions, err := Parse(body, i.classFilter)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no class %s questions found in sheet %s", i.classFilter, i.sheetID)
	}

	if err := i.store.ReplaceQuestions(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to replace question catalog: %w", err)
	}

	analysis := Analyze(questions)
	logger.Info.Printf("Synced %d questions from sheet %s", analysis.TotalQuestions, i.sheetID)
	return analysis, nil
}

func (i *Importer) fetchCSV(ctx context.Context) (io.ReadCloser, error) {
	url := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&output=csv", i.sheetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sheet request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet CSV: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch sheet CSV: %s", resp.Status)
	}
	return resp.Body, nil
}

// Sheet columns we care about.
const (
	colClass          = "Class"
	colSubject        = "Subject"
	colChapter        = "Chapter"
	colConcept        = "Concept"
	colQuestion       = "Question"
	colOptionA        = "Option_A"
	colOptionB        = "Option_B"
	colOptionC        = "Option_C"
	colOptionD        = "Option_D"
	colCorrectAnswer  = "Correct_Answer"
	colExplanation    = "Explanation"
	colCognitiveLevel = "Cognitive_Level"
	colThinkingSkills = "Thinking_Skills"
)

// Parse reads the sheet CSV and maps rows of the configured class into
// catalog questions. Rows without question text are skipped, mark values
// are normalized to the derived section's canonical marks.
func Parse(r io.Reader, classFilter string) ([]models.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for idx, name := range header {
		cols[strings.TrimSpace(name)] = idx
	}
	if _, ok := cols[colQuestion]; !ok {
		return nil, fmt.Errorf("sheet header has no %s column", colQuestion)
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var questions []models.Question
	seen := make(map[string]bool)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet row: %w", err)
		}

		text := field(row, colQuestion)
		if text == "" || field(row, colClass) != classFilter {
			continue
		}

		cognitive := field(row, colCognitiveLevel)
		thinking := field(row, colThinkingSkills)
		concept := field(row, colConcept)

		section, marks := determineSectionAndMarks(cognitive, thinking, concept)

		topic := field(row, colChapter)
		if topic == "" {
			topic = concept
		}
		if topic == "" {
			topic = "General"
		}
		subject := field(row, colSubject)
		if subject == "" {
			subject = "General"
		}
		difficulty := cognitive
		if difficulty == "" {
			difficulty = "Medium"
		}

		id := questionID(subject, text)
		if seen[id] {
			continue
		}
		seen[id] = true

		q := models.Question{
			ID:            id,
			Text:          text,
			Section:       section,
			Marks:         marks,
			Competency:    mapCompetency(cognitive, thinking),
			Subject:       subject,
			Topic:         topic,
			Difficulty:    difficulty,
			OptionA:       field(row, colOptionA),
			OptionB:       field(row, colOptionB),
			OptionC:       field(row, colOptionC),
			OptionD:       field(row, colOptionD),
			CorrectAnswer: field(row, colCorrectAnswer),
			Explanation:   field(row, colExplanation),
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("invalid question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}

	return questions, nil
}

// questionID derives a stable identifier from the question content. A
// re-sync keeps the same id for an unchanged row, so join rows in saved
// papers stay valid; a changed or removed row's stale joins drop on read
// instead of pointing at a different question.
func questionID(subject, text string) string {
	sum := sha256.Sum256([]byte(subject + "\x00" + text))
	return "q" + hex.EncodeToString(sum[:6])
}

// determineSectionAndMarks buckets a row into a template section by its
// cognitive-level keywords.
func determineSectionAndMarks(cognitiveLevel, thinkingSkills, concept string) (string, int) {
	level := strings.ToLower(cognitiveLevel + " " + thinkingSkills + " " + concept)

	switch {
	case containsAny(level, "remember", "recall", "knowledge"):
		return models.SectionB, models.SectionMarks[models.SectionB]
	case containsAny(level, "understand", "comprehension", "apply"):
		return models.SectionC, models.SectionMarks[models.SectionC]
	case containsAny(level, "analy", "application", "problem"):
		return models.SectionD, models.SectionMarks[models.SectionD]
	case containsAny(level, "evaluat", "synthesis", "creat"):
		return models.SectionE, models.SectionMarks[models.SectionE]
	default:
		// Most questions land in section C
		return models.SectionC, models.SectionMarks[models.SectionC]
	}
}

func mapCompetency(cognitiveLevel, thinkingSkills string) string {
	combined := strings.ToLower(cognitiveLevel + " " + thinkingSkills)

	switch {
	case containsAny(combined, "remember", "recall", "knowledge"):
		return models.CompetencyRemembering
	case containsAny(combined, "apply", "application"):
		return models.CompetencyApplying
	case containsAny(combined, "creat", "synthesis"):
		return models.CompetencyCreating
	case containsAny(combined, "evaluat", "analy"):
		return models.CompetencyEvaluating
	default:
		return models.CompetencyGeneral
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func Analyze(questions []models.Question) *Analysis {
	analysis := &Analysis{
		TotalQuestions: len(questions),
		BySubject:      make(map[string]int),
		BySection:      make(map[string]int),
		ByCompetency:   make(map[string]int),
	}
	for _, q := range questions {
		analysis.BySubject[q.Subject]++
		analysis.BySection[q.Section]++
		analysis.ByCompetency[q.Competency]++
	}
	return analysis
}
