// Package guide loads per-race leveling guides: ordered quest steps
// grouped into zone segments by level range. Guides ship embedded and
// can be overridden from a YAML file on disk.
package guide

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed guides.yaml
var defaultGuides []byte

// Step is one actionable guide entry. Steps without a quest id are
// travel hints and are skipped by the planner.
type Step struct {
	Name             string `yaml:"name"`
	QuestID          int32  `yaml:"questId"`
	RecommendedLevel int32  `yaml:"recommendedLevel"`
}

// Segment groups the steps of one zone and level bracket.
type Segment struct {
	Zone     string `yaml:"zone"`
	MinLevel int32  `yaml:"minLevel"`
	MaxLevel int32  `yaml:"maxLevel"`
	Steps    []Step `yaml:"steps"`
}

// Guide is the full leveling path for one race.
type Guide struct {
	Race     string    `yaml:"race"`
	Segments []Segment `yaml:"segments"`
}

type bookFile struct {
	Guides []Guide `yaml:"guides"`
}

// Book holds every loaded guide, indexed by race.
type Book struct {
	guides map[string]*Guide
}

// Load reads guides from path. An empty or missing path falls back to
// the embedded defaults; a present but malformed file is an error.
func Load(path string) (*Book, error) {
	raw := defaultGuides
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			raw = b
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("guide: read %s: %w", path, err)
		}
	}

	var file bookFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("guide: parse: %w", err)
	}

	book := &Book{guides: make(map[string]*Guide, len(file.Guides))}
	for i := range file.Guides {
		g := &file.Guides[i]
		book.guides[g.Race] = g
	}
	return book, nil
}

// ForRace returns the guide for a race, nil when none exists.
func (b *Book) ForRace(race string) *Guide {
	return b.guides[race]
}

// NextStep returns the first quest-linked step appropriate for the
// level that done does not report finished. Nil when the guide has
// nothing left for this level.
func (b *Book) NextStep(race string, level int32, done func(questID int32) bool) *Step {
	g := b.guides[race]
	if g == nil {
		return nil
	}
	for _, seg := range g.Segments {
		if level < seg.MinLevel || level > seg.MaxLevel {
			continue
		}
		for _, step := range seg.Steps {
			if step.QuestID == 0 {
				continue
			}
			if step.RecommendedLevel > level {
				continue
			}
			if done != nil && done(step.QuestID) {
				continue
			}
			s := step
			return &s
		}
	}
	return nil
}

// StepsForLevel lists every quest-linked step in segments covering the
// level, in guide order.
func (b *Book) StepsForLevel(race string, level int32) []Step {
	g := b.guides[race]
	if g == nil {
		return nil
	}
	var steps []Step
	for _, seg := range g.Segments {
		if level < seg.MinLevel || level > seg.MaxLevel {
			continue
		}
		for _, step := range seg.Steps {
			if step.QuestID != 0 {
				steps = append(steps, step)
			}
		}
	}
	return steps
}
