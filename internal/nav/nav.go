// Package nav decides where the bot should go next: the quest giver of
// the next guide step, a race's starter quest as a fallback, and the
// travel plan to get there.
package nav

import (
	"fmt"

	"github.com/rathgar/idlebot/internal/data"
	"github.com/rathgar/idlebot/internal/guide"
	"github.com/rathgar/idlebot/internal/model"
	"github.com/rathgar/idlebot/internal/movement"
)

// Numeric race and class ids as the content database keys them.
var raceIDs = map[string]int32{
	"Human":     1,
	"Orc":       2,
	"Dwarf":     3,
	"Night Elf": 4,
	"Undead":    5,
	"Tauren":    6,
	"Gnome":     7,
	"Troll":     8,
}

var classIDs = map[string]int32{
	"Warrior": 1,
	"Paladin": 2,
	"Hunter":  3,
	"Rogue":   4,
	"Priest":  5,
	"Shaman":  7,
	"Mage":    8,
	"Warlock": 9,
	"Druid":   11,
}

// starterQuests maps each race to its very first quest, used when the
// guide has no step for a fresh character.
var starterQuests = map[string]int32{
	"Human":     7,
	"Dwarf":     179,
	"Night Elf": 456,
	"Gnome":     234,
	"Orc":       4641,
	"Undead":    363,
	"Tauren":    747,
	"Troll":     4641,
}

// Destination is a resolved travel target tied to a quest.
type Destination struct {
	QuestID   int32
	QuestName string
	GiverID   int32
	Position  model.Position
}

// Step is one planned move toward a destination.
type Step struct {
	Destination Destination
	Travel      movement.TravelInfo
	// AlreadyThere is set when the bot stands at the destination and
	// can act immediately instead of traveling.
	AlreadyThere bool
}

// Store is the slice of the data layer the navigator needs.
type Store interface {
	GetQuest(entry int32) (*data.Quest, error)
	GetQuestGivers(questID int32) ([]int32, error)
	GetCreatureSpawns(entry int32) ([]data.CreatureSpawn, error)
	GetStartPosition(raceID, classID int32) (*model.Position, error)
}

// Navigator resolves guide steps into world destinations.
type Navigator struct {
	book  *guide.Book
	store Store
}

// NewNavigator builds a navigator over a guide book and data store.
func NewNavigator(book *guide.Book, store Store) *Navigator {
	return &Navigator{book: book, store: store}
}

// StartPosition returns the creation position for a race/class pair.
func (n *Navigator) StartPosition(race, class string) (*model.Position, error) {
	raceID, ok := raceIDs[race]
	if !ok {
		return nil, fmt.Errorf("nav: unknown race %q", race)
	}
	classID, ok := classIDs[class]
	if !ok {
		return nil, fmt.Errorf("nav: unknown class %q", class)
	}
	return n.store.GetStartPosition(raceID, classID)
}

// NextDestination resolves the next quest worth pursuing for the
// character: the guide's next step, or the race's starter quest at
// level 1. Returns nil with no error when the guide is exhausted.
// done reports quests already turned in.
func (n *Navigator) NextDestination(race string, level int32, from model.Position, done func(questID int32) bool) (*Destination, error) {
	questID := int32(0)
	if step := n.book.NextStep(race, level, done); step != nil {
		questID = step.QuestID
	} else if level <= 1 {
		if starter, ok := starterQuests[race]; ok && (done == nil || !done(starter)) {
			questID = starter
		}
	}
	if questID == 0 {
		return nil, nil
	}
	return n.resolveQuest(questID, from)
}

// resolveQuest finds the nearest same-map spawn of any giver of the
// quest.
func (n *Navigator) resolveQuest(questID int32, from model.Position) (*Destination, error) {
	q, err := n.store.GetQuest(questID)
	if err != nil {
		return nil, fmt.Errorf("nav: quest %d: %w", questID, err)
	}
	givers, err := n.store.GetQuestGivers(questID)
	if err != nil {
		return nil, fmt.Errorf("nav: givers of quest %d: %w", questID, err)
	}

	var best *Destination
	var bestDist float64
	for _, giver := range givers {
		spawns, err := n.store.GetCreatureSpawns(giver)
		if err != nil {
			return nil, fmt.Errorf("nav: spawns of %d: %w", giver, err)
		}
		for _, sp := range spawns {
			if sp.Position.Map != from.Map {
				continue
			}
			d := from.Distance(sp.Position)
			if best == nil || d < bestDist {
				best = &Destination{
					QuestID:   questID,
					QuestName: q.Title,
					GiverID:   giver,
					Position:  sp.Position,
				}
				bestDist = d
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("nav: quest %d has no reachable giver", questID)
	}
	return best, nil
}

// interactRange is how close the bot must stand to talk to an NPC.
const interactRange = 1.0

// PlanNextMove turns a destination into a travel plan from the current
// position. Within interact range no travel is needed.
func PlanNextMove(from model.Position, dest Destination, speed float64) Step {
	if from.Distance(dest.Position) <= interactRange {
		return Step{Destination: dest, AlreadyThere: true}
	}
	return Step{
		Destination: dest,
		Travel:      movement.TravelTime(from, dest.Position, speed),
	}
}
