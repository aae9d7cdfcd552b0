package survey

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"iconograph/internal/imagesearch"
	"iconograph/internal/logging"
)

// PlaceholderImageURL marks entries whose image lookup failed or found
// nothing usable.
const PlaceholderImageURL = "https://placehold.co/600x400?text=Image+Not+Found"

const annotatorSystemPrompt = "You are an expert in art history and iconography. " +
	"Provide insightful, educational annotations for historical artwork."

// ImageSession resolves artwork images over one browser session. Close must
// be safe to call more than once.
type ImageSession interface {
	FindImage(ctx context.Context, title, artist string) (string, error)
	Close() error
}

// SessionOpener acquires an ImageSession scoped to one batch.
type SessionOpener interface {
	OpenSession(ctx context.Context) (ImageSession, error)
}

// SessionOpenerFunc adapts a function to the SessionOpener interface.
type SessionOpenerFunc func(ctx context.Context) (ImageSession, error)

func (f SessionOpenerFunc) OpenSession(ctx context.Context) (ImageSession, error) {
	return f(ctx)
}

// Illustrator resolves an image and generates an annotation for each
// candidate. Failures never abort the batch: an item that cannot be
// illustrated is emitted with the placeholder image and a fallback
// annotation built from its own fields.
type Illustrator struct {
	gen      TextGenerator
	sessions SessionOpener
}

// NewIllustrator creates an illustrator.
func NewIllustrator(gen TextGenerator, sessions SessionOpener) *Illustrator {
	return &Illustrator{gen: gen, sessions: sessions}
}

// Illustrate processes candidates in input order over one shared session.
// The returned list always has the same length and order as the input,
// except on cancellation, where no partial result is returned at all. The
// session is released exactly once in every path.
func (il *Illustrator) Illustrate(ctx context.Context, candidates []CandidateWork, narrativeDescription, originalQuery string) ([]AnnotatedWork, error) {
	session, err := il.sessions.OpenSession(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Without a session every lookup degrades, but annotations can
		// still be generated.
		logging.PipelineError("illustrate: session open failed, proceeding without images: %v", err)
		session = nil
	}
	if session != nil {
		defer session.Close()
	}

	results := make([]AnnotatedWork, 0, len(candidates))
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		work, err := il.illustrateOne(ctx, session, cand, narrativeDescription, originalQuery)
		if err != nil {
			return nil, err
		}
		results = append(results, work)
	}
	return results, nil
}

// illustrateOne handles a single candidate. The returned error is non-nil
// only on context cancellation; every other failure degrades the entry.
func (il *Illustrator) illustrateOne(ctx context.Context, session ImageSession, cand CandidateWork, narrativeDescription, originalQuery string) (AnnotatedWork, error) {
	imageURL := ""
	if session != nil {
		url, err := session.FindImage(ctx, cand.Title, cand.Artist)
		switch {
		case err == nil:
			imageURL = url
		case errors.Is(err, imagesearch.ErrNoImage):
			logging.PipelineDebug("illustrate: no image for %q", cand.Title)
		default:
			if ctx.Err() != nil {
				return AnnotatedWork{}, ctx.Err()
			}
			logging.PipelineWarn("illustrate: image lookup failed for %q: %v", cand.Title, err)
			return degradedWork(cand), nil
		}
	}
	if imageURL == "" {
		imageURL = PlaceholderImageURL
	}

	annotation, err := il.gen.CompleteWithSystem(ctx, annotatorSystemPrompt,
		annotationPrompt(cand, narrativeDescription, originalQuery))
	if err != nil || strings.TrimSpace(annotation) == "" {
		if ctx.Err() != nil {
			return AnnotatedWork{}, ctx.Err()
		}
		logging.PipelineWarn("illustrate: annotation failed for %q: %v", cand.Title, err)
		return degradedWork(cand), nil
	}

	return AnnotatedWork{
		CandidateWork: cand,
		ImageURL:      imageURL,
		Annotation:    strings.TrimSpace(annotation),
	}, nil
}

func annotationPrompt(cand CandidateWork, narrativeDescription, originalQuery string) string {
	return fmt.Sprintf(`Artwork: "%s" by %s (%s, %s)

Narrative: %s

Original Query: %s

Provide an educational annotation for this artwork that:
1. Explains how it depicts the narrative
2. Highlights artistic choices and symbolism
3. Places it in historical and theological context
4. Notes how it reflects the artistic style of its era (%s)

Keep your annotation concise (about 150 words) and accessible to a general audience.`,
		cand.Title, cand.Artist, cand.Year, cand.Era,
		narrativeDescription, originalQuery, cand.Era)
}

// degradedWork fills in the placeholder image and a deterministic fallback
// annotation built purely from the candidate's own fields.
func degradedWork(cand CandidateWork) AnnotatedWork {
	return AnnotatedWork{
		CandidateWork: cand,
		ImageURL:      PlaceholderImageURL,
		Annotation: fmt.Sprintf(
			"We couldn't retrieve information for this artwork. The piece %q by %s (%s) is a notable depiction of this narrative from the %s period.",
			cand.Title, cand.Artist, cand.Year, cand.Era),
	}
}
