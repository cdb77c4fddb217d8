// Package quest tracks one active quest at a time: its decoded
// objectives, kill and collection progress, and the grind spots where
// progress can be made.
package quest

import (
	"fmt"
	"sort"

	"github.com/rathgar/idlebot/internal/data"
	"github.com/rathgar/idlebot/internal/model"
)

// Status of the tracked quest.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusComplete Status = "completed"
	StatusTurnedIn Status = "turned-in"
)

// ObjectiveType distinguishes kill counts from item collection.
type ObjectiveType string

const (
	ObjectiveKill    ObjectiveType = "kill"
	ObjectiveCollect ObjectiveType = "collect"
)

// Objective is one decoded quest requirement with live progress.
type Objective struct {
	Type        ObjectiveType `json:"type"`
	TargetID    int32         `json:"targetId"`
	Description string        `json:"description"`
	Required    int32         `json:"required"`
	Current     int32         `json:"current"`
}

// Done reports whether the objective counter is full.
func (o Objective) Done() bool {
	return o.Current >= o.Required
}

// Progress is a point-in-time view of the tracked quest.
type Progress struct {
	QuestID    int32       `json:"questId"`
	Title      string      `json:"title"`
	Status     Status      `json:"status"`
	Objectives []Objective `json:"objectives"`
}

// GrindSpot is one world location where the current objective can be
// worked on.
type GrindSpot struct {
	CreatureID   int32
	CreatureName string
	Position     model.Position
}

// Store is the slice of the data layer the executor needs.
type Store interface {
	GetQuest(entry int32) (*data.Quest, error)
	GetCreatureTemplate(entry int32) (*data.CreatureTemplate, error)
	GetCreatureSpawns(entry int32) ([]data.CreatureSpawn, error)
}

// Executor drives one quest through accept, grind and turn-in.
// Objectives are worked strictly in order.
type Executor struct {
	store Store

	quest      *data.Quest
	status     Status
	objectives []Objective
	current    int

	// Spawn points already grinded this quest, keyed by rounded
	// coordinates so float jitter in the data cannot duplicate spots.
	visited map[string]struct{}
}

// NewExecutor builds an executor with no tracked quest.
func NewExecutor(store Store) *Executor {
	return &Executor{store: store}
}

// AcceptQuest loads the quest and decodes its requirements into
// ordered objectives, kills first.
func (e *Executor) AcceptQuest(questID int32) error {
	q, err := e.store.GetQuest(questID)
	if err != nil {
		return fmt.Errorf("quest: accept %d: %w", questID, err)
	}

	// At most four objectives of each kind are tracked, matching the
	// four creature requirement slots of the quest data.
	const maxPerKind = 4

	var objectives []Objective
	for i, req := range q.KillRequirements {
		if i == maxPerKind {
			break
		}
		desc := fmt.Sprintf("Slay creature %d", req.ID)
		if ct, err := e.store.GetCreatureTemplate(req.ID); err == nil {
			desc = fmt.Sprintf("Slay %s", ct.Name)
		}
		objectives = append(objectives, Objective{
			Type:        ObjectiveKill,
			TargetID:    req.ID,
			Description: desc,
			Required:    req.Count,
		})
	}
	for i, req := range q.ItemRequirements {
		if i == maxPerKind {
			break
		}
		objectives = append(objectives, Objective{
			Type:        ObjectiveCollect,
			TargetID:    req.ID,
			Description: fmt.Sprintf("Collect item %d", req.ID),
			Required:    req.Count,
		})
	}
	if len(objectives) == 0 {
		return fmt.Errorf("quest: accept %d: no trackable objectives", questID)
	}

	e.quest = q
	e.status = StatusAccepted
	e.objectives = objectives
	e.current = 0
	e.visited = make(map[string]struct{})
	return nil
}

// Active reports whether a quest is tracked and not yet turned in.
func (e *Executor) Active() bool {
	return e.quest != nil && e.status != StatusTurnedIn
}

// QuestID returns the tracked quest id, 0 when none.
func (e *Executor) QuestID() int32 {
	if e.quest == nil {
		return 0
	}
	return e.quest.Entry
}

// Quest returns the tracked quest, nil when none.
func (e *Executor) Quest() *data.Quest {
	return e.quest
}

// CurrentObjective returns the objective being worked on, nil once the
// quest is complete or none is tracked.
func (e *Executor) CurrentObjective() *Objective {
	if e.quest == nil || e.current >= len(e.objectives) {
		return nil
	}
	o := e.objectives[e.current]
	return &o
}

// IsRelevantMob reports whether killing the creature advances the
// current objective.
func (e *Executor) IsRelevantMob(creatureID int32) bool {
	o := e.CurrentObjective()
	return o != nil && o.Type == ObjectiveKill && o.TargetID == creatureID
}

// RegisterKill credits a kill against the current objective. The
// counter clamps at the requirement; a full objective advances to the
// next one or completes the quest.
func (e *Executor) RegisterKill(creatureID int32) {
	if !e.IsRelevantMob(creatureID) {
		return
	}
	o := &e.objectives[e.current]
	if o.Current < o.Required {
		o.Current++
	}
	e.advanceIfDone()
}

// ReportItemCount updates collection objectives from the player's
// current holdings, clamped at each requirement.
func (e *Executor) ReportItemCount(itemID, count int32) {
	if e.quest == nil {
		return
	}
	for i := range e.objectives {
		o := &e.objectives[i]
		if o.Type != ObjectiveCollect || o.TargetID != itemID {
			continue
		}
		if count > o.Required {
			count = o.Required
		}
		if count > o.Current {
			o.Current = count
		}
	}
	e.advanceIfDone()
}

func (e *Executor) advanceIfDone() {
	for e.current < len(e.objectives) && e.objectives[e.current].Done() {
		e.current++
	}
	if e.current >= len(e.objectives) && e.status == StatusAccepted {
		e.status = StatusComplete
	}
}

// IsComplete reports whether every objective is full.
func (e *Executor) IsComplete() bool {
	return e.quest != nil && e.status == StatusComplete
}

// TurnIn finalizes a complete quest and clears the tracked state.
// Returns the turned-in quest so the caller can hand out rewards.
func (e *Executor) TurnIn() (*data.Quest, error) {
	if e.quest == nil {
		return nil, fmt.Errorf("quest: nothing to turn in")
	}
	if e.status != StatusComplete {
		return nil, fmt.Errorf("quest: %d is not complete", e.quest.Entry)
	}
	q := e.quest
	e.status = StatusTurnedIn
	e.quest = nil
	e.objectives = nil
	e.current = 0
	e.visited = nil
	return q, nil
}

// Progress returns a snapshot of the tracked quest, nil when none.
func (e *Executor) Progress() *Progress {
	if e.quest == nil {
		return nil
	}
	objectives := make([]Objective, len(e.objectives))
	copy(objectives, e.objectives)
	return &Progress{
		QuestID:    e.quest.Entry,
		Title:      e.quest.Title,
		Status:     e.status,
		Objectives: objectives,
	}
}

// FindGrindSpots lists spawn points of the current objective's target
// on the given map, nearest first.
func (e *Executor) FindGrindSpots(from model.Position) ([]GrindSpot, error) {
	o := e.CurrentObjective()
	if o == nil || o.Type != ObjectiveKill {
		return nil, nil
	}

	spawns, err := e.store.GetCreatureSpawns(o.TargetID)
	if err != nil {
		return nil, fmt.Errorf("quest: spawns of %d: %w", o.TargetID, err)
	}

	name := fmt.Sprintf("creature %d", o.TargetID)
	if ct, err := e.store.GetCreatureTemplate(o.TargetID); err == nil {
		name = ct.Name
	}

	var spots []GrindSpot
	for _, sp := range spawns {
		if sp.Position.Map != from.Map {
			continue
		}
		spots = append(spots, GrindSpot{
			CreatureID:   o.TargetID,
			CreatureName: name,
			Position:     sp.Position,
		})
	}
	sort.Slice(spots, func(i, j int) bool {
		return from.Distance(spots[i].Position) < from.Distance(spots[j].Position)
	})
	return spots, nil
}

// NextGrindSpot returns the nearest unvisited grind spot and marks it
// visited. Nil when every spot has been tried.
func (e *Executor) NextGrindSpot(from model.Position) (*GrindSpot, error) {
	spots, err := e.FindGrindSpots(from)
	if err != nil {
		return nil, err
	}
	for _, spot := range spots {
		key := spotKey(spot.Position)
		if _, seen := e.visited[key]; seen {
			continue
		}
		e.visited[key] = struct{}{}
		return &spot, nil
	}
	return nil, nil
}

func spotKey(p model.Position) string {
	return fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
}
