package progression

import "fmt"

// Kind discriminates the two unlock namespaces. Story unlocks are keyed by
// story id; extra unlocks are keyed by the catalog entry's own key.
type Kind string

const (
	KindStory Kind = "story"
	KindExtra Kind = "extra"
)

// CatalogEntry is one purchasable unlock. The catalog is static content
// loaded at startup, not runtime state; purchases are validated against it.
type CatalogEntry struct {
	Key      string `json:"key"`
	Kind     Kind   `json:"kind"`
	TargetID string `json:"target_id"`
	Cost     int    `json:"cost"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    string `json:"image,omitempty"`
}

// unlockID returns the identifier recorded in the unlock set when this
// entry is purchased: the catalog key for extras, the target story id for
// stories.
func (e CatalogEntry) unlockID() string {
	if e.Kind == KindStory {
		return e.TargetID
	}
	return e.Key
}

// Catalog is the full list of purchasable unlocks.
type Catalog []CatalogEntry

// Get finds an entry by catalog key.
func (c Catalog) Get(key string) (CatalogEntry, bool) {
	for _, e := range c {
		if e.Key == key {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// ByTarget finds the entry of the given kind that unlocks targetID.
func (c Catalog) ByTarget(kind Kind, targetID string) (CatalogEntry, bool) {
	for _, e := range c {
		if e.Kind == kind && e.TargetID == targetID {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// Validate checks structural rules: unique keys, known kinds, positive
// costs, non-empty targets. Cross-references against story and puzzle
// content are checked by cmd/validate, which has both sides loaded.
func (c Catalog) Validate() []string {
	var errs []string
	seen := make(map[string]bool, len(c))
	for _, e := range c {
		if e.Key == "" {
			errs = append(errs, "catalog entry is missing key")
			continue
		}
		if seen[e.Key] {
			errs = append(errs, fmt.Sprintf("duplicate catalog key %q", e.Key))
		}
		seen[e.Key] = true
		if e.Kind != KindStory && e.Kind != KindExtra {
			errs = append(errs, fmt.Sprintf("catalog entry %q has invalid kind %q", e.Key, e.Kind))
		}
		if e.TargetID == "" {
			errs = append(errs, fmt.Sprintf("catalog entry %q is missing target_id", e.Key))
		}
		if e.Cost <= 0 {
			errs = append(errs, fmt.Sprintf("catalog entry %q must have a positive cost, got %d", e.Key, e.Cost))
		}
	}
	return errs
}
