package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Kind is the coarse part of speech the extractor cares about.
type Kind int

// Part-of-speech kinds.
const (
	KindOther Kind = iota
	KindNoun
	KindProperNoun
	KindAdjective
)

// Token is a tagged word at a position (token index) in the query.
type Token struct {
	Text string
	Pos  int
	Kind Kind
	Stop bool
}

// Span is a multi- or single-word noun phrase starting at token index Start.
type Span struct {
	Text  string
	Start int
}

// Tagger is the part-of-speech tagging capability the extractor depends on.
type Tagger interface {
	Tag(text string) ([]Token, error)
	NounPhrases(text string) ([]Span, error)
}

// KeywordExtractor derives normalized keywords from query text.
type KeywordExtractor struct {
	tagger Tagger
}

// NewKeywordExtractor creates an extractor backed by tagger.
func NewKeywordExtractor(tagger Tagger) *KeywordExtractor {
	return &KeywordExtractor{tagger: tagger}
}

type candidate struct {
	text   string
	pos    int
	phrase bool
}

// Extract returns lower-cased, deduplicated keywords in query order, drawn from
// noun phrases and from noun, proper-noun and adjective tokens that are not stop words.
// At the same position a phrase precedes the single token it starts with.
func (e *KeywordExtractor) Extract(ctx context.Context, query string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	phrases, err := e.tagger.NounPhrases(query)
	if err != nil {
		return nil, fmt.Errorf("noun phrases: %w", err)
	}
	tokens, err := e.tagger.Tag(query)
	if err != nil {
		return nil, fmt.Errorf("tag query: %w", err)
	}

	cands := make([]candidate, 0, len(phrases)+len(tokens))
	for _, p := range phrases {
		if allStopWords(p.Text) {
			continue
		}
		cands = append(cands, candidate{text: p.Text, pos: p.Start, phrase: true})
	}
	for _, t := range tokens {
		if t.Stop || t.Kind == KindOther {
			continue
		}
		cands = append(cands, candidate{text: t.Text, pos: t.Pos})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].pos != cands[j].pos {
			return cands[i].pos < cands[j].pos
		}
		return cands[i].phrase && !cands[j].phrase
	})

	seen := make(map[string]struct{}, len(cands))
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		kw := strings.ToLower(strings.TrimSpace(c.text))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out, nil
}

// ChunkNounPhrases groups tagged tokens into maximal runs of adjectives followed
// by one or more nouns. A run of adjectives not followed by a noun is dropped.
func ChunkNounPhrases(tokens []Token) []Span {
	var spans []Span
	start := -1
	nouns := 0

	flush := func(end int) {
		if start >= 0 && nouns > 0 {
			words := make([]string, 0, end-start)
			for _, t := range tokens[start:end] {
				words = append(words, t.Text)
			}
			spans = append(spans, Span{Text: strings.Join(words, " "), Start: tokens[start].Pos})
		}
		start, nouns = -1, 0
	}

	for i, t := range tokens {
		switch {
		case isNoun(t.Kind):
			if start < 0 {
				start = i
			}
			nouns++
		case t.Kind == KindAdjective:
			if nouns > 0 {
				flush(i)
			}
			if start < 0 {
				start = i
			}
		default:
			flush(i)
		}
	}
	flush(len(tokens))

	return spans
}

func isNoun(k Kind) bool {
	return k == KindNoun || k == KindProperNoun
}

func allStopWords(phrase string) bool {
	for _, w := range strings.Fields(phrase) {
		if !IsStopWord(w) {
			return false
		}
	}
	return true
}
