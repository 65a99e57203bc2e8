// Package heuristic implements the offline summarizer and quiz generator used when
// no model backend is configured, or as the quiz fallback when one fails.
package heuristic

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode/utf8"

	"studybuddy/internal/quiz"
)

const (
	maxKeyWords       = 5
	minKeyWordLen     = 6
	maxLocalQuestions = 4
	minSentenceLen    = 20
	minQuestionWords  = 5
	blank             = "______"
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)

	stopWords = map[string]struct{}{
		"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {},
		"for": {}, "with": {}, "by": {}, "this": {}, "that": {}, "from": {}, "they": {},
		"have": {}, "been": {}, "will": {}, "would": {}, "could": {}, "should": {},
	}

	// FallbackItem is returned when the text has no sentence usable as a question.
	FallbackItem = quiz.Item{
		Question: "What is the main topic of this note?",
		Answer:   "See the note content above.",
	}
)

// NoContentSummary is the summary of empty or whitespace-only text.
const NoContentSummary = "• No content to summarize"

// Engine is safe for concurrent use as long as its permutation source is.
type Engine struct {
	perm func(n int) []int
}

// New returns an engine that picks quiz sentences with math/rand/v2.
func New() *Engine {
	return &Engine{perm: rand.Perm}
}

// NewWithPerm returns an engine that orders candidate sentences with perm.
// Tests pass a fixed permutation to make quizzes reproducible.
func NewWithPerm(perm func(n int) []int) *Engine {
	return &Engine{perm: perm}
}

// Summarize builds a bullet summary from lexical statistics of text. It never
// fails and never returns an empty string.
func (e *Engine) Summarize(text string) string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return NoContentSummary
	}

	words := strings.Fields(clean)
	wordCount := len(words)
	keys := keyWords(words)

	var b strings.Builder
	switch {
	case wordCount < 20:
		fmt.Fprintf(&b, "• Brief note about %s", pick(keys, 0, "main topic"))
	case wordCount < 50:
		fmt.Fprintf(&b, "• Key points about %s:\n", pick(keys, 0, "main topic"))
		fmt.Fprintf(&b, "  • Covers %s\n", pick(keys, 1, "important concept"))
		fmt.Fprintf(&b, "  • Includes %s", pick(keys, 2, "relevant details"))
	default:
		concepts := "main topic"
		if len(keys) > 0 {
			concepts = strings.Join(keys[:min(3, len(keys))], ", ")
		}
		details := sentences(clean)
		fmt.Fprintf(&b, "• Summary of %s:\n", pick(keys, 0, "main topic"))
		fmt.Fprintf(&b, "  • Main concepts: %s\n", concepts)
		fmt.Fprintf(&b, "  • Key details: %s.\n", strings.Join(details[:min(2, len(details))], ". "))
		fmt.Fprintf(&b, "  • Total: %d words analyzed", wordCount)
	}
	return b.String()
}

// Quiz builds up to four fill-in-the-blank questions from randomly chosen
// sentences. Repeated calls on the same text may differ. It never fails.
func (e *Engine) Quiz(text string) quiz.Quiz {
	var candidates []string
	for _, s := range sentences(text) {
		if utf8.RuneCountInString(s) >= minSentenceLen {
			candidates = append(candidates, s)
		}
	}

	var out quiz.Quiz
	if len(candidates) > 0 {
		for _, idx := range e.perm(len(candidates)) {
			if len(out) == maxLocalQuestions {
				break
			}
			if item, ok := blankOut(candidates[idx]); ok {
				out = append(out, item)
			}
		}
	}

	if len(out) == 0 {
		return quiz.Quiz{FallbackItem}
	}
	return out
}

func blankOut(sentence string) (quiz.Item, bool) {
	words := strings.Fields(sentence)
	if len(words) < minQuestionWords {
		return quiz.Item{}, false
	}
	// floor(0.6 * n) without float rounding
	idx := len(words) * 6 / 10
	answer := words[idx]
	words[idx] = blank
	return quiz.Item{
		Question: `Fill in the blank: "` + strings.Join(words, " ") + `?"`,
		Answer:   answer,
	}, true
}

// sentences splits on runs of terminal punctuation and drops blank pieces.
func sentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// keyWords keeps the first long, non-stopword tokens in order of appearance.
func keyWords(words []string) []string {
	var keys []string
	for _, w := range words {
		if utf8.RuneCountInString(w) < minKeyWordLen {
			continue
		}
		if _, stop := stopWords[strings.ToLower(w)]; stop {
			continue
		}
		keys = append(keys, w)
		if len(keys) == maxKeyWords {
			break
		}
	}
	return keys
}

func pick(items []string, i int, fallback string) string {
	if i < len(items) {
		return items[i]
	}
	return fallback
}
