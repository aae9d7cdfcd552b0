package survey

// Aggregate groups annotated works by the literal era string, case-sensitive
// and unnormalized. Empty eras land in the "Unknown" bucket. Bucket order
// follows the first appearance of each era; within a bucket, input order is
// preserved.
func Aggregate(works []AnnotatedWork) Artworks {
	all := make([]AnnotatedWork, len(works))
	copy(all, works)

	byEra := NewByEra()
	for _, w := range works {
		era := w.Era
		if era == "" {
			era = "Unknown"
		}
		byEra.Add(era, w)
	}

	return Artworks{All: all, ByEra: byEra}
}
