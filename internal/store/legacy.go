package store

import (
	"encoding/json"

	"github.com/benvon/interview-tracker/internal/models"
)

// RecoverFromLegacy returns the first candidate that decodes to a non-empty question
// array. Candidates are raw values read from the legacy keys in priority order; nil
// entries stand for absent keys.
func RecoverFromLegacy(candidates [][]byte) ([]models.Question, bool) {
	for _, raw := range candidates {
		if len(raw) == 0 {
			continue
		}
		questions, err := decodeQuestions(raw)
		if err != nil || len(questions) == 0 {
			continue
		}
		return questions, true
	}
	return nil, false
}

// decodeQuestions decodes a JSON array of questions, skipping elements that are not
// objects of the expected shape. Repeated ids collapse to one record holding the last
// occurrence at the first occurrence's position.
func decodeQuestions(raw []byte) ([]models.Question, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, ErrStorageRead
	}
	if elements == nil {
		// JSON null
		return nil, ErrStorageRead
	}

	questions := make([]models.Question, 0, len(elements))
	for _, el := range elements {
		var q models.Question
		if err := json.Unmarshal(el, &q); err != nil {
			continue
		}
		questions = append(questions, q)
	}
	return dedupeByID(questions), nil
}

func dedupeByID(questions []models.Question) []models.Question {
	seen := make(map[string]int, len(questions))
	out := questions[:0]
	for _, q := range questions {
		if idx, ok := seen[q.ID]; ok {
			out[idx] = q
			continue
		}
		seen[q.ID] = len(out)
		out = append(out, q)
	}
	return out
}
