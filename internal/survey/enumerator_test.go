package survey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerate(t *testing.T) {
	gen := &fakeGen{responses: []string{`[{"title":"x"}]`}}

	raw, err := NewEnumerator(gen).Enumerate(context.Background(), "a narrative about a flood")
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"x"}]`, raw)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "a narrative about a flood")
	assert.Contains(t, gen.systems[0], "valid JSON")
}

func TestEnumerateGenerationFailure(t *testing.T) {
	gen := &fakeGen{errs: []error{errors.New("upstream down")}}

	_, err := NewEnumerator(gen).Enumerate(context.Background(), "desc")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "enumerate", genErr.Stage)
	assert.ErrorContains(t, err, "upstream down")
}
