package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxItems caps how many questions a quiz may hold.
const MaxItems = 5

// ErrParse is returned when model output contains no usable question/answer array.
var ErrParse = errors.New("quiz: no valid question array in model output")

// Item is a single question with its expected answer.
type Item struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Quiz is an ordered list of items; order is presentation order.
type Quiz []Item

// Extract pulls a quiz out of raw model text. The span from the first '[' to the
// last ']' is parsed as a JSON array of {question, answer} objects, which tolerates
// surrounding prose and markdown fences. Unrelated brackets in the surrounding
// prose make the span invalid JSON and the call fails with ErrParse.
func Extract(raw string) (Quiz, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, ErrParse
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	out := make(Quiz, 0, len(items))
	for _, it := range items {
		it.Question = strings.TrimSpace(it.Question)
		it.Answer = strings.TrimSpace(it.Answer)
		if it.Question == "" || it.Answer == "" {
			continue
		}
		out = append(out, it)
		if len(out) == MaxItems {
			break
		}
	}
	if len(out) == 0 {
		return nil, ErrParse
	}
	return out, nil
}

// Marshal serializes the quiz for persistence as a JSON array.
func (q Quiz) Marshal() (string, error) {
	if q == nil {
		q = Quiz{}
	}
	b, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal decodes a persisted quiz. Empty input yields a nil quiz.
func Unmarshal(s string) (Quiz, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var q Quiz
	if err := json.Unmarshal([]byte(s), &q); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}
	return q, nil
}
