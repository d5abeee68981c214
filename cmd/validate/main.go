package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calebdray/storywalk/pkg/progression"
	"github.com/calebdray/storywalk/pkg/puzzle"
	"github.com/calebdray/storywalk/pkg/story"
)

func main() {
	dataDir := "./data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	v := &ContentValidator{dataDir: dataDir}
	if err := v.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Content files are valid!")
}

// ContentValidator checks the data directory as a whole: each file's shape
// plus the cross-references between catalog, stories and puzzles.
type ContentValidator struct {
	dataDir string
	errors  []string
}

func (v *ContentValidator) validate() error {
	fmt.Printf("Validating content in %s...\n", v.dataDir)

	var stories []story.Pin
	if err := v.readJSON("stories.json", &stories); err != nil {
		return err
	}

	var puzzles []puzzle.Puzzle
	if err := v.readJSON("puzzles.json", &puzzles); err != nil {
		return err
	}

	var catalog progression.Catalog
	if err := v.readJSON("catalog.json", &catalog); err != nil {
		return err
	}

	v.validateStories(stories)
	v.validatePuzzles(puzzles, stories)
	v.validateCatalog(catalog, stories, puzzles)

	if len(v.errors) > 0 {
		for _, e := range v.errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
		return fmt.Errorf("%d validation error(s)", len(v.errors))
	}
	return nil
}

func (v *ContentValidator) readJSON(name string, dest interface{}) error {
	path := filepath.Join(v.dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (v *ContentValidator) validateStories(stories []story.Pin) {
	seen := make(map[string]bool, len(stories))
	for i := range stories {
		v.errors = append(v.errors, stories[i].Validate()...)
		if seen[stories[i].ID] {
			v.errors = append(v.errors, fmt.Sprintf("duplicate story id %q", stories[i].ID))
		}
		seen[stories[i].ID] = true
	}
}

func (v *ContentValidator) validatePuzzles(puzzles []puzzle.Puzzle, stories []story.Pin) {
	storyIDs := make(map[string]bool, len(stories))
	for i := range stories {
		storyIDs[stories[i].ID] = true
	}

	seen := make(map[string]bool, len(puzzles))
	for i := range puzzles {
		p := &puzzles[i]
		v.errors = append(v.errors, p.Validate()...)
		if seen[p.Key] {
			v.errors = append(v.errors, fmt.Sprintf("duplicate puzzle key %q", p.Key))
		}
		seen[p.Key] = true
		if p.StoryID != "" && !storyIDs[p.StoryID] {
			v.errors = append(v.errors, fmt.Sprintf("puzzle %q references unknown story %q", p.Key, p.StoryID))
		}
	}
}

func (v *ContentValidator) validateCatalog(catalog progression.Catalog, stories []story.Pin, puzzles []puzzle.Puzzle) {
	v.errors = append(v.errors, catalog.Validate()...)

	gated := make(map[string]bool)
	for i := range stories {
		if stories[i].Gated {
			gated[stories[i].ID] = true
		}
	}
	extras := make(map[string]bool)
	for i := range puzzles {
		if puzzles[i].Kind == puzzle.KindExtra {
			extras[puzzles[i].Key] = true
		}
	}

	for _, e := range catalog {
		switch e.Kind {
		case progression.KindStory:
			if !gated[e.TargetID] {
				v.errors = append(v.errors, fmt.Sprintf("catalog entry %q targets story %q which is not gated", e.Key, e.TargetID))
			}
			delete(gated, e.TargetID)
		case progression.KindExtra:
			if !extras[e.TargetID] {
				v.errors = append(v.errors, fmt.Sprintf("catalog entry %q targets unknown extra puzzle %q", e.Key, e.TargetID))
			}
			delete(extras, e.TargetID)
		}
	}

	// Everything gated must be purchasable, or it can never be opened.
	for id := range gated {
		v.errors = append(v.errors, fmt.Sprintf("gated story %q has no catalog entry", id))
	}
	for key := range extras {
		v.errors = append(v.errors, fmt.Sprintf("extra puzzle %q has no catalog entry", key))
	}
}
