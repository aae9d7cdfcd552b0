package survey

import (
	"context"
	"fmt"

	"iconograph/internal/logging"
)

const enumeratorSystemPrompt = `You are an art history expert specializing in narrative art.
Generate a list of 10 significant artworks depicting historical narratives from different historical periods.
For each artwork include:
1. Title
2. Artist
3. Year created (approximate if necessary)
4. Art historical period/era (e.g., Renaissance, Baroque, etc.)

Ensure you include a diverse range of historical periods and artistic styles.
Format your response as valid JSON with this structure:
[
  {
    "title": "Title of Artwork",
    "artist": "Artist Name",
    "year": "Year or Year Range",
    "era": "Art Historical Period"
  }
]`

// Enumerator asks the model for candidate artworks depicting a narrative.
type Enumerator struct {
	gen TextGenerator
}

// NewEnumerator creates an enumerator backed by the given generator.
func NewEnumerator(gen TextGenerator) *Enumerator {
	return &Enumerator{gen: gen}
}

// Enumerate requests candidate works for the narrative. The returned text is
// not assumed to be well-formed JSON; Parse handles both cases.
func (e *Enumerator) Enumerate(ctx context.Context, narrativeDescription string) (string, error) {
	logging.PipelineDebug("enumerate: description_len=%d", len(narrativeDescription))

	prompt := fmt.Sprintf(
		"Generate a list of significant artworks depicting the following narrative: %s",
		narrativeDescription,
	)

	raw, err := e.gen.CompleteWithSystem(ctx, enumeratorSystemPrompt, prompt)
	if err != nil {
		return "", &GenerationError{Stage: "enumerate", Err: err}
	}
	if raw == "" {
		return "", &GenerationError{Stage: "enumerate", Err: errEmptyCompletion}
	}
	return raw, nil
}
