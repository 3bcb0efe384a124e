package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Exam sections, in the order they appear on a printed paper.
const (
	SectionB = "B"
	SectionC = "C"
	SectionD = "D"
	SectionE = "E"
)

var SectionOrder = []string{SectionB, SectionC, SectionD, SectionE}

// SectionMarks is the canonical per-question mark value for each section.
var SectionMarks = map[string]int{
	SectionB: 2,
	SectionC: 3,
	SectionD: 5,
	SectionE: 4,
}

// Competency tags as they come out of the sheet import.
const (
	CompetencyRemembering = "Remembering"
	CompetencyApplying    = "Applying"
	CompetencyCreating    = "Creating"
	CompetencyEvaluating  = "Evaluating"
	CompetencyGeneral     = "General"
)

type Question struct {
	ID            string `db:"id" json:"id"`
	Text          string `db:"question" json:"question" validate:"required"`
	Section       string `db:"section" json:"section" validate:"required,oneof=B C D E"`
	Marks         int    `db:"marks" json:"marks"`
	Competency    string `db:"competency" json:"competency" validate:"required"`
	Subject       string `db:"subject" json:"subject"`
	Topic         string `db:"topic" json:"topic"`
	Difficulty    string `db:"difficulty" json:"difficulty"`
	OptionA       string `db:"option_a" json:"optionA"`
	OptionB       string `db:"option_b" json:"optionB"`
	OptionC       string `db:"option_c" json:"optionC"`
	OptionD       string `db:"option_d" json:"optionD"`
	CorrectAnswer string `db:"correct_answer" json:"correctAnswer"`
	Explanation   string `db:"explanation" json:"explanation"`
}

func (q *Question) Validate() error {
	validate := validator.New()
	if err := validate.Struct(q); err != nil {
		return err
	}
	if want := SectionMarks[q.Section]; q.Marks != want {
		return fmt.Errorf("section %s questions carry %d marks, got %d", q.Section, want, q.Marks)
	}
	return nil
}

// ChapterFilter restricts candidate selection to specific topics of a subject.
type ChapterFilter struct {
	Subject  string   `json:"subject"`
	Chapters []string `json:"chapters"`
}
