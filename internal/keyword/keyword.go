// Package keyword extracts representative keywords from chunk text using
// part-of-speech tagging and named-entity recognition, grounded on the
// corpus's own KeywordExtractor
// (glennmartinez-risk-analyzer-2026/backend/internal/services/matching.go),
// generalized from issue title/description pairs to arbitrary chunk text.
package keyword

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// DefaultTopK is the number of keywords persisted per chunk when the
// caller doesn't override it (spec §4.5).
const DefaultTopK = 5

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
	"this": true, "that": true, "these": true, "those": true, "i": true, "you": true,
	"he": true, "she": true, "it": true, "we": true, "they": true, "my": true,
	"your": true, "his": true, "her": true, "its": true, "our": true, "their": true,
}

var skipPosTags = map[string]bool{
	"DT": true, "IN": true, "TO": true, "CC": true,
	"PRP": true, "PRP$": true, "WP": true, "WDT": true,
}

var posScores = map[string]float64{
	"NN": 1.5, "NNS": 1.5, "NNP": 2.0, "NNPS": 2.0,
	"VB": 1.2, "VBD": 1.2, "VBG": 1.2, "VBN": 1.2, "VBP": 1.2, "VBZ": 1.2,
	"JJ": 1.3, "JJR": 1.3, "JJS": 1.3,
	"RB": 0.8, "RBR": 0.8, "RBS": 0.8,
}

const minWordLength = 2

// candidate tracks one distinct surface form's running score while a
// chunk is being scanned.
type candidate struct {
	word      string
	frequency int
	score     float64
}

// Extractor scores and ranks keywords out of a single piece of text.
type Extractor struct {
	topK int
}

// New creates an Extractor that returns at most topK keywords per call.
// topK <= 0 falls back to DefaultTopK.
func New(topK int) *Extractor {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Extractor{topK: topK}
}

// Extract returns the top-K keywords in text, highest score first. An
// empty or entirely stop-word text returns an empty, non-nil slice and
// no error.
func (e *Extractor) Extract(text string) ([]string, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	byWord := make(map[string]*candidate)

	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if shouldSkip(word, tok.Tag) {
			continue
		}
		score := posScore(tok.Tag)
		if c, ok := byWord[word]; ok {
			c.frequency++
			c.score += score
		} else {
			byWord[word] = &candidate{word: word, frequency: 1, score: score}
		}
	}

	for _, ent := range doc.Entities() {
		word := strings.ToLower(ent.Text)
		if len(word) < minWordLength || stopWords[word] {
			continue
		}
		if c, ok := byWord[word]; ok {
			c.score += 2.0
		} else {
			byWord[word] = &candidate{word: word, frequency: 1, score: 2.0}
		}
	}

	candidates := make([]candidate, 0, len(byWord))
	for _, c := range byWord {
		c.score *= float64(c.frequency)
		candidates = append(candidates, *c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].word < candidates[j].word
	})

	if len(candidates) > e.topK {
		candidates = candidates[:e.topK]
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.word
	}
	return out, nil
}

func shouldSkip(word, posTag string) bool {
	if len(word) < minWordLength {
		return true
	}
	if stopWords[word] {
		return true
	}
	if isPureNumber(word) || isPunctuation(word) {
		return true
	}
	return skipPosTags[posTag]
}

func posScore(tag string) float64 {
	if score, ok := posScores[tag]; ok {
		return score
	}
	return 1.0
}

func isPureNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

func isPunctuation(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return len(s) > 0
}
