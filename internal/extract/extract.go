// Package extract pulls a dish phrase and a quantity out of free text.
// It is a heuristic tokenizer over word tables, not a parser.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

type Extractor struct {
	vocab    Vocab
	stopset  map[string]struct{}
	cancel   map[string]struct{}
	addVerbs map[string]struct{}
}

func New(vocab Vocab) *Extractor {
	return &Extractor{
		vocab:    vocab,
		stopset:  toSet(vocab.Stopwords),
		cancel:   toSet(vocab.CancelWords),
		addVerbs: toSet(vocab.AddVerbs),
	}
}

// Extract returns the candidate dish phrase and the quantity. Quantity
// resolution: the first digit run anywhere wins; otherwise the first
// spelled-out number token; otherwise 1. The dish phrase is whatever survives
// the stoplist, the number vocabulary and pure-digit tokens. It may be empty.
func (e *Extractor) Extract(utterance string) (string, int) {
	quantity := 1
	if m := digitRun.FindString(utterance); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			quantity = n
		}
	} else {
		for _, tok := range tokenize(utterance) {
			if n, ok := e.vocab.Numbers[tok]; ok {
				quantity = n
				break
			}
		}
	}

	var kept []string
	for _, tok := range tokenize(utterance) {
		if _, stop := e.stopset[tok]; stop {
			continue
		}
		if _, num := e.vocab.Numbers[tok]; num {
			continue
		}
		if digitRun.MatchString(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " "), quantity
}

// StripCancelWords removes cancellation verbs and filler so the remainder can
// be resolved against the menu.
func (e *Extractor) StripCancelWords(utterance string) string {
	var kept []string
	for _, tok := range tokenize(utterance) {
		if _, drop := e.cancel[tok]; drop {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// HasCravingTerm reports whether the utterance reads like a generic craving
// ("something spicy") rather than a specific dish order.
func (e *Extractor) HasCravingTerm(utterance string) bool {
	return containsAny(utterance, e.vocab.Craving)
}

// HasAddVerb reports whether a quantity update means "add this many more"
// instead of "set the quantity to this".
func (e *Extractor) HasAddVerb(utterance string) bool {
	for _, tok := range tokenize(utterance) {
		if _, ok := e.addVerbs[tok]; ok {
			return true
		}
	}
	return false
}

// WantsRecommendation reports whether the query asks for suggestions rather
// than facts.
func (e *Extractor) WantsRecommendation(query string) bool {
	return containsAny(query, e.vocab.Recommend)
}

func containsAny(s string, terms []string) bool {
	low := strings.ToLower(s)
	for _, term := range terms {
		if strings.Contains(low, term) {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.!?;:\"'()")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
