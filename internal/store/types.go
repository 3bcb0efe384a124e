package store

import "errors"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// ErrDuplicatePaperID is returned when paper creation exhausts every
// suffixed identifier retry.
var ErrDuplicatePaperID = errors.New("paper id already taken")

// SectionCount is one row of the per-section catalog census.
type SectionCount struct {
	Section string `db:"section"`
	Count   int    `db:"count"`
}

// ChapterCount is one chapter of the catalog with its question count,
// grouped per subject.
type ChapterCount struct {
	Subject string `db:"subject"`
	Topic   string `db:"topic"`
	Count   int    `db:"count"`
}
