// Package prose adapts github.com/jdkato/prose/v2 to the keyword extractor's Tagger port.
package prose

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/intent"
)

// Compile-time check.
var _ intent.Tagger = (*Tagger)(nil)

// Tagger tags English text with Penn Treebank part-of-speech tags.
type Tagger struct{}

// New creates a prose-backed tagger.
func New() *Tagger {
	return &Tagger{}
}

// Tag returns tokens with positions, coarse kinds and stop-word flags.
func (t *Tagger) Tag(text string) ([]intent.Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}

	raw := doc.Tokens()
	out := make([]intent.Token, 0, len(raw))
	for i, tok := range raw {
		out = append(out, intent.Token{
			Text: tok.Text,
			Pos:  i,
			Kind: kindOf(tok.Tag),
			Stop: intent.IsStopWord(tok.Text),
		})
	}
	return out, nil
}

// NounPhrases returns maximal adjective-noun runs.
func (t *Tagger) NounPhrases(text string) ([]intent.Span, error) {
	tokens, err := t.Tag(text)
	if err != nil {
		return nil, err
	}
	return intent.ChunkNounPhrases(tokens), nil
}

// kindOf maps a Penn Treebank tag to the extractor's coarse kind.
func kindOf(tag string) intent.Kind {
	switch {
	case tag == "NNP" || tag == "NNPS":
		return intent.KindProperNoun
	case strings.HasPrefix(tag, "NN"):
		return intent.KindNoun
	case strings.HasPrefix(tag, "JJ"):
		return intent.KindAdjective
	default:
		return intent.KindOther
	}
}
