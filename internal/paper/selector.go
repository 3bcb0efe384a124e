package paper

import "github.com/fikalearn/paperweek/internal/models"

// Select picks exactly n questions from a candidate pool, maximizing tag
// variety with three greedy passes. Candidates must arrive pre-sorted by
// competency, subject, topic, id ascending; that ordering is the only
// tie-break, so identical input yields identical output.
func Select(candidates []models.Question, n int) ([]models.Question, error) {
	if len(candidates) < n {
		return nil, &InsufficientPoolError{Need: n, Have: len(candidates)}
	}

	selected := make([]models.Question, 0, n)
	picked := make([]bool, len(candidates))
	usedCompetencies := make(map[string]bool)
	usedSubjects := make(map[string]bool)

	// Pass 1: one question per unseen competency.
	for i, q := range candidates {
		if len(selected) >= n {
			break
		}
		if !usedCompetencies[q.Competency] {
			selected = append(selected, q)
			picked[i] = true
			usedCompetencies[q.Competency] = true
			usedSubjects[q.Subject] = true
		}
	}

	// Pass 2: spread subjects; while fewer than 2 subjects are in, a
	// repeat subject is still allowed.
	for i, q := range candidates {
		if len(selected) >= n {
			break
		}
		if picked[i] {
			continue
		}
		if !usedSubjects[q.Subject] || len(usedSubjects) < 2 {
			selected = append(selected, q)
			picked[i] = true
			usedSubjects[q.Subject] = true
		}
	}

	// Pass 3: fill the rest in input order.
	for i, q := range candidates {
		if len(selected) >= n {
			break
		}
		if picked[i] {
			continue
		}
		selected = append(selected, q)
		picked[i] = true
	}

	return selected[:n], nil
}
