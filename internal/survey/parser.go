package survey

import (
	"encoding/json"
	"regexp"
	"strings"

	"iconograph/internal/logging"
)

// ParseOutcome tags which strategy produced the candidate list.
type ParseOutcome int

const (
	// ParsedStructured means the raw text decoded as a JSON array.
	ParsedStructured ParseOutcome = iota
	// ParsedHeuristic means the line-scan extractor recovered the list.
	ParsedHeuristic
	// ParsedPlaceholder means both strategies found nothing and the fixed
	// placeholder set was returned.
	ParsedPlaceholder
)

func (o ParseOutcome) String() string {
	switch o {
	case ParsedStructured:
		return "structured"
	case ParsedHeuristic:
		return "heuristic"
	default:
		return "placeholder"
	}
}

// Parse converts raw model output into candidate works. It never returns an
// empty list: a structured decode is attempted first, then a heuristic line
// scan, then the fixed placeholder set.
func Parse(raw string) ([]CandidateWork, ParseOutcome) {
	if works, ok := parseStructured(raw); ok {
		return works, ParsedStructured
	}
	logging.PipelineWarn("parse: structured decode failed, falling back to heuristic scan")

	works := extractWorks(raw)
	if len(works) > 0 {
		return works, ParsedHeuristic
	}
	logging.PipelineWarn("parse: heuristic scan found nothing, using placeholder set")
	return placeholderWorks(), ParsedPlaceholder
}

func parseStructured(raw string) ([]CandidateWork, bool) {
	var works []CandidateWork
	if err := json.Unmarshal([]byte(raw), &works); err == nil && len(works) > 0 {
		return works, true
	}

	// Models routinely wrap the array in prose or code fences.
	if arr := extractJSONArray(raw); arr != "" {
		if err := json.Unmarshal([]byte(arr), &works); err == nil && len(works) > 0 {
			return works, true
		}
	}
	return nil, false
}

// extractJSONArray returns the first balanced top-level JSON array in the
// text, tracking string literals so brackets inside quotes do not count.
func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

var (
	startNumberedRe = regexp.MustCompile(`(?i)^\d+\.\s+["'](.+)["']`)
	startBylineRe   = regexp.MustCompile(`(?i)["'](.+)["']\s+by`)
	quotedTitleRe   = regexp.MustCompile(`["']([^"']+)["']`)
	artistRe        = regexp.MustCompile(`(?i)by\s+([^,(]+)`)
	yearRe          = regexp.MustCompile(`(\d{4}(?:\s*-\s*\d{4})?)`)
)

// eraVocabulary lists recognized period names. The first vocabulary entry
// found on a line wins; later matches on the same record are ignored.
var eraVocabulary = []string{
	"Renaissance",
	"Baroque",
	"Neoclassical",
	"Romantic",
	"Byzantine",
	"Medieval",
	"Gothic",
	"Early Christian",
	"Modern",
	"Contemporary",
}

// extractWorks is a line-scan state machine with two states: no open record,
// and one record accumulating fields. A start line (numbered quoted title or
// quoted title followed by "by") flushes the previous record and opens a new
// one; other lines can only fill the year and era of the open record.
func extractWorks(text string) []CandidateWork {
	var works []CandidateWork
	var current *CandidateWork

	flush := func() {
		if current != nil && current.Title != "" {
			works = append(works, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if startNumberedRe.MatchString(line) || startBylineRe.MatchString(line) {
			flush()
			current = &CandidateWork{}

			if m := quotedTitleRe.FindStringSubmatch(line); m != nil {
				current.Title = m[1]
			}
			if m := artistRe.FindStringSubmatch(line); m != nil {
				current.Artist = strings.TrimSpace(m[1])
			}
			continue
		}

		if current == nil {
			continue
		}
		if current.Year == "" {
			if m := yearRe.FindStringSubmatch(line); m != nil {
				current.Year = m[1]
			}
		}
		if current.Era == "" {
			for _, era := range eraVocabulary {
				if strings.Contains(line, era) {
					current.Era = era
					break
				}
			}
		}
	}
	flush()

	return works
}

// placeholderWorks returns the fixed fallback list used when nothing could
// be extracted, so downstream stages always have material to operate on.
func placeholderWorks() []CandidateWork {
	return []CandidateWork{
		{Title: "The Last Supper", Artist: "Leonardo da Vinci", Year: "1495-1498", Era: "Renaissance"},
		{Title: "The Creation of Adam", Artist: "Michelangelo", Year: "1512", Era: "Renaissance"},
		{Title: "The Return of the Prodigal Son", Artist: "Rembrandt", Year: "1669", Era: "Baroque"},
		{Title: "Christ in the Storm on the Sea of Galilee", Artist: "Rembrandt", Year: "1633", Era: "Baroque"},
		{Title: "The Crucifixion", Artist: "Francisco de Goya", Year: "1780", Era: "Romantic"},
	}
}
