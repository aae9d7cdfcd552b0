package survey

import (
	"context"
	"strings"

	"iconograph/internal/logging"
)

const interpreterSystemPrompt = "You are an expert in historical narratives and art history. " +
	"Identify the specific narrative being referenced, the key figures involved, " +
	"and important thematic elements that artists might depict."

// TextGenerator is the slice of the generation client the pipeline needs.
type TextGenerator interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Interpreter turns a raw query into a narrative description and short title.
type Interpreter struct {
	gen TextGenerator
}

// NewInterpreter creates an interpreter backed by the given generator.
func NewInterpreter(gen TextGenerator) *Interpreter {
	return &Interpreter{gen: gen}
}

// Interpret analyzes the query. Fails when the generation call errors or
// returns empty text; there is no fallback at this stage.
func (i *Interpreter) Interpret(ctx context.Context, query string) (NarrativeAnalysis, error) {
	logging.PipelineDebug("interpret: query=%q", query)

	raw, err := i.gen.CompleteWithSystem(ctx, interpreterSystemPrompt, query)
	if err != nil {
		return NarrativeAnalysis{}, &GenerationError{Stage: "interpret", Err: err}
	}

	description := strings.TrimSpace(raw)
	if description == "" {
		return NarrativeAnalysis{}, &GenerationError{Stage: "interpret", Err: errEmptyCompletion}
	}

	return NarrativeAnalysis{
		Description: description,
		Title:       ExtractTitle(description),
	}, nil
}

// ExtractTitle derives a concise title from a narrative description: the
// first sentence when it fits in 60 characters, otherwise the first ten
// words with an ellipsis.
func ExtractTitle(description string) string {
	firstSentence := description
	if idx := sentenceBoundary(description); idx >= 0 {
		firstSentence = description[:idx]
	}
	firstSentence = strings.TrimSuffix(strings.TrimSpace(firstSentence), ".")

	if len(firstSentence) <= 60 {
		return firstSentence
	}

	words := strings.Fields(description)
	if len(words) > 10 {
		words = words[:10]
	}
	return strings.Join(words, " ") + "..."
}

// sentenceBoundary returns the index of the first period followed by
// whitespace, or -1.
func sentenceBoundary(s string) int {
	for i := 0; i < len(s)-1; i++ {
		if s[i] == '.' && (s[i+1] == ' ' || s[i+1] == '\t' || s[i+1] == '\n' || s[i+1] == '\r') {
			return i
		}
	}
	return -1
}
