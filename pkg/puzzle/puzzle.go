package puzzle

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind discriminates main-progression puzzles from purchasable extras.
type Kind string

const (
	KindMain  Kind = "main"
	KindExtra Kind = "extra"
)

// Puzzle is one word-guessing riddle. Main puzzles belong to a story pin;
// extra puzzles are standalone and gated behind a ticket purchase.
type Puzzle struct {
	Key      string `json:"key"`
	Kind     Kind   `json:"kind"`
	StoryID  string `json:"story_id,omitempty"`
	Title    string `json:"title"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Image    string `json:"image,omitempty"`
}

var upper = cases.Upper(language.English)

// Normalize maps a candidate answer to canonical comparison form:
// surrounding whitespace stripped, uppercased with Unicode case mapping.
func Normalize(s string) string {
	return upper.String(strings.TrimSpace(s))
}

// Matches reports whether candidate is a correct guess for the puzzle.
// Comparison is case-insensitive exact match against the full answer;
// there is no partial credit.
func (p *Puzzle) Matches(candidate string) bool {
	return Normalize(candidate) == Normalize(p.Answer)
}

// Validate checks that a puzzle has the fields content files must provide.
func (p *Puzzle) Validate() []string {
	var errs []string
	if p.Key == "" {
		errs = append(errs, "puzzle is missing key")
	}
	if p.Kind != KindMain && p.Kind != KindExtra {
		errs = append(errs, "puzzle "+p.Key+" has invalid kind "+string(p.Kind))
	}
	if p.Kind == KindMain && p.StoryID == "" {
		errs = append(errs, "main puzzle "+p.Key+" is missing story_id")
	}
	if p.Question == "" {
		errs = append(errs, "puzzle "+p.Key+" is missing question")
	}
	if strings.TrimSpace(p.Answer) == "" {
		errs = append(errs, "puzzle "+p.Key+" is missing answer")
	}
	return errs
}
