// Package survey implements the query pipeline: interpret a narrative query,
// enumerate candidate artworks, parse unreliable model output, illustrate and
// annotate each candidate, then aggregate the results by era.
package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NarrativeAnalysis is the interpreted form of a user query.
type NarrativeAnalysis struct {
	Description string `json:"description"`
	Title       string `json:"title"`
}

// CandidateWork is a model-proposed artwork. Fields may be empty strings when
// extraction was partial, never absent.
type CandidateWork struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Year   string `json:"year"`
	Era    string `json:"era"`
}

// AnnotatedWork is a CandidateWork with a resolved image and an educational
// annotation. Degraded entries carry the placeholder image URL and a fallback
// annotation instead of being dropped.
type AnnotatedWork struct {
	CandidateWork
	ImageURL   string `json:"imageUrl"`
	Annotation string `json:"annotation"`
}

// ByEra maps era names to artworks while preserving the first-seen order of
// each era. A plain map would lose ordering through JSON round-trips.
type ByEra struct {
	keys   []string
	groups map[string][]AnnotatedWork
}

// NewByEra returns an empty grouping.
func NewByEra() *ByEra {
	return &ByEra{groups: make(map[string][]AnnotatedWork)}
}

// Add appends a work to the era's bucket, creating the bucket on first use.
func (b *ByEra) Add(era string, w AnnotatedWork) {
	if _, ok := b.groups[era]; !ok {
		b.keys = append(b.keys, era)
	}
	b.groups[era] = append(b.groups[era], w)
}

// Eras returns era names in first-seen order.
func (b *ByEra) Eras() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Get returns the bucket for an era.
func (b *ByEra) Get(era string) []AnnotatedWork {
	return b.groups[era]
}

// Len returns the number of era buckets.
func (b *ByEra) Len() int {
	return len(b.keys)
}

// Total returns the number of works across all buckets.
func (b *ByEra) Total() int {
	n := 0
	for _, works := range b.groups {
		n += len(works)
	}
	return n
}

// MarshalJSON emits buckets in first-seen order.
func (b *ByEra) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, era := range b.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(era)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.groups[era])
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON restores buckets. Key order follows the document order.
func (b *ByEra) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("byEra: expected object, got %v", tok)
	}

	b.keys = nil
	b.groups = make(map[string][]AnnotatedWork)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		era, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("byEra: expected string key, got %v", keyTok)
		}
		var works []AnnotatedWork
		if err := dec.Decode(&works); err != nil {
			return err
		}
		b.keys = append(b.keys, era)
		b.groups[era] = works
	}
	return nil
}

// Artworks holds the flat list and the era grouping of one survey.
type Artworks struct {
	All   []AnnotatedWork `json:"all"`
	ByEra *ByEra          `json:"byEra"`
}

// QueryResult is the complete response for one query.
type QueryResult struct {
	Query                string   `json:"query"`
	NarrativeTitle       string   `json:"narrative"`
	NarrativeDescription string   `json:"narrativeDescription"`
	Artworks             Artworks `json:"artworks"`
}
