package models

import "time"

type Paper struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	TotalMarks  int       `db:"total_marks" json:"total_marks"`
	WeekStart   time.Time `db:"week_start" json:"week_start"`
	WeekEnd     time.Time `db:"week_end" json:"week_end"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Ordered join rows, attached on read.
	Questions []PaperQuestionDetail `db:"-" json:"questions,omitempty"`
}

// PaperQuestion is one join row; ord reconstructs the printed numbering.
type PaperQuestion struct {
	PaperID    string `db:"paper_id" json:"paper_id"`
	QuestionID string `db:"question_id" json:"question_id"`
	Ord        int    `db:"ord" json:"order"`
}

type PaperQuestionDetail struct {
	Ord int `db:"ord" json:"order"`
	Question
}

// PaperSection is one assembled section of a generated paper.
type PaperSection struct {
	Questions        []Question `json:"questions"`
	MarksPerQuestion int        `json:"marksPerQuestion"`
	TotalMarks       int        `json:"totalMarks"`
}

type Distribution struct {
	BySubject    map[string]int `json:"bySubject"`
	ByCompetency map[string]int `json:"byCompetency"`
	ByTopic      map[string]int `json:"byTopic"`
}

// GeneratedPaper is the assembler's output, not yet persisted.
type GeneratedPaper struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	TotalMarks   int                     `json:"totalMarks"`
	Sections     map[string]PaperSection `json:"sections"`
	GeneratedAt  time.Time               `json:"generatedAt"`
	WeekStart    time.Time               `json:"weekStart"`
	WeekEnd      time.Time               `json:"weekEnd"`
	Distribution Distribution            `json:"questionDistribution"`
}

// QuestionCount sums the selected questions across all sections.
func (p *GeneratedPaper) QuestionCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Questions)
	}
	return n
}
