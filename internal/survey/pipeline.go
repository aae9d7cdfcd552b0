package survey

import (
	"context"
	"strings"
	"time"

	"iconograph/internal/logging"
)

// QueryRecorder receives each accepted query before processing begins, so a
// query counts even when the pipeline later fails.
type QueryRecorder interface {
	RecordQuery(query string)
}

// Pipeline chains the survey stages for one query at a time. Stages run
// sequentially; each generation call completes before the next stage starts.
type Pipeline struct {
	interpreter *Interpreter
	enumerator  *Enumerator
	illustrator *Illustrator
	recorder    QueryRecorder
}

// NewPipeline wires the stages around one generator and session opener. The
// recorder may be nil.
func NewPipeline(gen TextGenerator, sessions SessionOpener, recorder QueryRecorder) *Pipeline {
	return &Pipeline{
		interpreter: NewInterpreter(gen),
		enumerator:  NewEnumerator(gen),
		illustrator: NewIllustrator(gen, sessions),
		recorder:    recorder,
	}
}

// ProcessQuery runs the full pipeline. The caller receives either a complete
// QueryResult, possibly containing degraded entries, or a single error. No
// partial result is ever returned.
func (p *Pipeline) ProcessQuery(ctx context.Context, query string) (*QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if p.recorder != nil {
		p.recorder.RecordQuery(query)
	}

	start := time.Now()
	logging.Pipeline("processing query %q", query)

	analysis, err := p.interpreter.Interpret(ctx, query)
	if err != nil {
		return nil, err
	}

	raw, err := p.enumerator.Enumerate(ctx, analysis.Description)
	if err != nil {
		return nil, err
	}

	candidates, outcome := Parse(raw)
	logging.Pipeline("parsed %d candidates (%s)", len(candidates), outcome)

	works, err := p.illustrator.Illustrate(ctx, candidates, analysis.Description, query)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Query:                query,
		NarrativeTitle:       analysis.Title,
		NarrativeDescription: analysis.Description,
		Artworks:             Aggregate(works),
	}
	logging.Pipeline("query %q completed in %v with %d artworks", query, time.Since(start), len(result.Artworks.All))
	return result, nil
}
