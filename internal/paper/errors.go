package paper

import "fmt"

// InsufficientPoolError means a section's candidate pool cannot cover the
// required question count. Fatal to the whole assembly, nothing partial is
// ever persisted.
type InsufficientPoolError struct {
	Section string
	Need    int
	Have    int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("not enough questions for Section %s: need %d, have %d", e.Section, e.Need, e.Have)
}
