package paper

import "github.com/fikalearn/paperweek/internal/models"

// SectionConfig fixes one section's shape on the printed paper.
type SectionConfig struct {
	QuestionsNeeded  int
	MarksPerQuestion int
	TotalMarks       int
}

// Template is the CBSE Class 10 mock paper structure: 19 questions, 60
// marks. Closed enumeration, section order B C D E.
var Template = map[string]SectionConfig{
	models.SectionB: {QuestionsNeeded: 6, MarksPerQuestion: 2, TotalMarks: 12},
	models.SectionC: {QuestionsNeeded: 7, MarksPerQuestion: 3, TotalMarks: 21},
	models.SectionD: {QuestionsNeeded: 3, MarksPerQuestion: 5, TotalMarks: 15},
	models.SectionE: {QuestionsNeeded: 3, MarksPerQuestion: 4, TotalMarks: 12},
}

// PaperTotalMarks is the fixed sum over all template sections.
const PaperTotalMarks = 60

// PromotableCompetencies are the tags eligible for section D→E backfill,
// higher cognitive levels only.
var PromotableCompetencies = []string{
	models.CompetencyCreating,
	models.CompetencyEvaluating,
	models.CompetencyApplying,
}
