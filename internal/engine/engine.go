// Package engine runs the character: a one-second tick loop that
// travels, fights, loots and turns in quests, either autonomously or
// under manual commands.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rathgar/idlebot/internal/data"
	"github.com/rathgar/idlebot/internal/experience"
	"github.com/rathgar/idlebot/internal/loot"
	"github.com/rathgar/idlebot/internal/model"
	"github.com/rathgar/idlebot/internal/movement"
	"github.com/rathgar/idlebot/internal/nav"
	"github.com/rathgar/idlebot/internal/quest"
	"github.com/rathgar/idlebot/internal/zone"
)

// State is what the character is doing right now.
type State string

const (
	StateIdle           State = "idle"
	StateTraveling      State = "traveling"
	StateCombat         State = "combat"
	StateLooting        State = "looting"
	StateTurningInQuest State = "turning-in-quest"
)

// Mode selects who drives: the engine itself or manual commands.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

const (
	interactRange  = 1.0
	actionLogLimit = 100

	combatMinDuration = 5 * time.Second
	combatMaxDuration = 10 * time.Second

	// Chance that the target creature is actually up when the bot
	// arrives at one of its spawn points.
	mobPresenceChance = 0.5
)

// travelPurpose selects what happens when a journey completes.
type travelPurpose int

const (
	travelManual travelPurpose = iota
	travelToGiver
	travelToEnder
	travelToGrind
)

// combatRecord is a fight in progress. The outcome is decided when the
// deadline passes, on the next unpaused tick.
type combatRecord struct {
	spot     quest.GrindSpot
	deadline time.Time
}

// LogEntry is one line of the rolling action log.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Store is the slice of the data layer the engine itself needs.
type Store interface {
	GetQuestGivers(questID int32) ([]int32, error)
	GetQuestEnders(questID int32) ([]int32, error)
	GetCreatureSpawns(entry int32) ([]data.CreatureSpawn, error)
	GetCreatureTemplate(entry int32) (*data.CreatureTemplate, error)
}

// Deps carries everything the engine is wired with.
type Deps struct {
	Logger    *slog.Logger
	Store     Store
	Executor  *quest.Executor
	Loot      *loot.Generator
	Navigator *nav.Navigator
	Zones     *zone.Registry
	Ledger    *experience.Ledger
	Character *model.Character
	Inventory *model.Inventory
}

// Engine drives one character. All state behind one mutex; the tick
// loop and command handlers both go through it.
type Engine struct {
	mu sync.Mutex

	logger *slog.Logger
	store  Store
	exec   *quest.Executor
	loot   *loot.Generator
	nav    *nav.Navigator
	zones  *zone.Registry
	ledger *experience.Ledger

	char *model.Character
	inv  *model.Inventory

	state  State
	mode   Mode
	paused bool

	travel        *movement.Simulation
	travelWhy     travelPurpose
	travelDest    *nav.Destination
	pendingSpot   *quest.GrindSpot
	combat        *combatRecord
	currentZone   string
	completed     map[int32]bool
	actions       []zone.Action
	actionLog     []LogEntry
	onState       func(Snapshot)
	ticks         atomic.Uint64
	clock         func() time.Time
	rng           *rand.Rand
}

// New wires an engine in idle state and auto mode.
func New(deps Deps) *Engine {
	e := &Engine{
		logger:    deps.Logger,
		store:     deps.Store,
		exec:      deps.Executor,
		loot:      deps.Loot,
		nav:       deps.Navigator,
		zones:     deps.Zones,
		ledger:    deps.Ledger,
		char:      deps.Character,
		inv:       deps.Inventory,
		state:     StateIdle,
		mode:      ModeAuto,
		completed: make(map[int32]bool),
		clock:     time.Now,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.refreshZoneLocked()
	e.refreshActionsLocked()
	return e
}

// OnStateChange registers a callback invoked with a fresh snapshot
// after every tick and command.
func (e *Engine) OnStateChange(fn func(Snapshot)) {
	e.mu.Lock()
	e.onState = fn
	e.mu.Unlock()
}

// Run ticks the engine once a second until the context ends.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	e.logger.Info("engine started",
		"character", e.char.Name,
		"race", e.char.Race,
		"class", e.char.Class,
		"level", e.char.Level)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped", "ticks", e.ticks.Load())
			return ctx.Err()
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick advances the engine by one step. Exposed so tests and the run
// loop share the exact same path.
func (e *Engine) Tick() {
	e.mu.Lock()
	if !e.paused {
		e.ticks.Add(1)
		switch {
		case e.travel != nil:
			e.tickTravelLocked()
		case e.combat != nil:
			e.tickCombatLocked()
		default:
			if e.mode == ModeAuto && e.state == StateIdle {
				e.decideNextActionLocked()
			}
		}
	}
	snap := e.snapshotLocked()
	fn := e.onState
	e.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// Pause freezes the engine. In-flight combat does not resolve while
// paused, even if its deadline passes.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.paused {
		e.paused = true
		e.logLocked("Paused.")
	}
	e.mu.Unlock()
}

// Resume unfreezes the engine.
func (e *Engine) Resume() {
	e.mu.Lock()
	if e.paused {
		e.paused = false
		e.logLocked("Resumed.")
	}
	e.mu.Unlock()
}

// SetMode switches between autonomous and manual control.
func (e *Engine) SetMode(mode Mode) error {
	if mode != ModeAuto && mode != ModeManual {
		return fmt.Errorf("engine: unknown mode %q", mode)
	}
	e.mu.Lock()
	if e.mode != mode {
		e.mode = mode
		e.logLocked("Mode set to %s.", mode)
		if mode == ModeManual {
			e.refreshActionsLocked()
		}
	}
	e.mu.Unlock()
	return nil
}

// ExecuteAction runs one manual command. Only valid while idle.
func (e *Engine) ExecuteAction(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		e.logLocked("Cannot execute action while busy.")
		return fmt.Errorf("engine: cannot execute action while busy")
	}

	switch id {
	case "farm-nearby-mobs":
		if !e.exec.Active() {
			e.logLocked("No quest to farm for. Pick up a quest first.")
			return nil
		}
		e.continueGrindingLocked()
	case "handle-quests":
		e.decideNextActionLocked()
	case "go-to-inn":
		return e.travelToPOILocked(zone.POIInn)
	case "go-to-vendor":
		return e.travelToPOILocked(zone.POIVendor)
	case "go-to-class-trainer":
		return e.travelToPOILocked(zone.POIClassTrainer)
	case "go-to-profession-trainer":
		return e.travelToPOILocked(zone.POIProfessionTrainer)
	default:
		return fmt.Errorf("engine: unknown action %q", id)
	}
	return nil
}

// TravelToCoordinates sends the character to an arbitrary same-map
// point. Only valid while idle.
func (e *Engine) TravelToCoordinates(x, y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		e.logLocked("Cannot execute action while busy.")
		return fmt.Errorf("engine: cannot travel while busy")
	}
	to := model.Position{X: x, Y: y, Map: e.char.Position.Map}
	e.startTravelLocked(to, travelManual)
	e.logLocked("Traveling to %.0f, %.0f (%s).",
		x, y, movement.FormatDuration(e.travel.Info().Duration))
	return nil
}

func (e *Engine) travelToPOILocked(t zone.POIType) error {
	poi := e.zones.NearestPOI(e.char.Position, t)
	if poi == nil {
		e.logLocked("No %s found in this zone.", t)
		return nil
	}
	e.startTravelLocked(poi.Position, travelManual)
	e.logLocked("Traveling to %s (%s).",
		poi.Name, movement.FormatDuration(e.travel.Info().Duration))
	return nil
}

// startTravelLocked begins a journey and flips the display state.
func (e *Engine) startTravelLocked(to model.Position, why travelPurpose) {
	e.travel = movement.NewSimulationWithClock(e.char.Position, to, movement.SpeedRun, e.clock)
	e.travelWhy = why
	e.state = StateTraveling
}

func (e *Engine) tickTravelLocked() {
	e.char.Position = e.travel.CurrentPosition()
	e.refreshZoneLocked()
	if !e.travel.Completed() {
		return
	}

	e.char.Position = e.travel.Info().To
	why := e.travelWhy
	e.travel = nil
	e.state = StateIdle

	switch why {
	case travelToGiver:
		e.acceptPendingQuestLocked()
	case travelToEnder:
		e.turnInQuestLocked()
	case travelToGrind:
		e.arriveAtGrindSpotLocked()
	default:
		e.logLocked("Arrived.")
		if e.mode == ModeManual {
			e.refreshActionsLocked()
		}
	}
}

func (e *Engine) tickCombatLocked() {
	if e.clock().Before(e.combat.deadline) {
		return
	}

	spot := e.combat.spot
	e.combat = nil
	e.state = StateLooting

	e.logLocked("Defeated %s.", spot.CreatureName)
	e.exec.RegisterKill(spot.CreatureID)

	mobLevel := e.mobLevelLocked(spot.CreatureID)
	if xp := experience.CalculateMobXP(mobLevel, e.char.Level); xp > 0 {
		e.awardExperienceLocked(xp)
	}
	e.collectLootLocked(spot.CreatureID, mobLevel)
	e.logObjectiveProgressLocked()

	e.state = StateIdle
	if e.exec.IsComplete() {
		e.logLocked("Quest objectives complete.")
	}
}

// mobLevelLocked picks a concrete level within the creature's range.
func (e *Engine) mobLevelLocked(creatureID int32) int32 {
	ct, err := e.store.GetCreatureTemplate(creatureID)
	if err != nil {
		return e.char.Level
	}
	if ct.MaxLevel <= ct.MinLevel {
		return ct.MinLevel
	}
	return ct.MinLevel + e.rng.Int32N(ct.MaxLevel-ct.MinLevel+1)
}

func (e *Engine) collectLootLocked(creatureID, mobLevel int32) {
	var active []int32
	if e.exec.Active() {
		active = append(active, e.exec.QuestID())
	}
	res, err := e.loot.GenerateMobLoot(creatureID, mobLevel, active, e.inv.ItemCounts())
	if err != nil {
		e.logger.Warn("loot roll failed", "creature", creatureID, "err", err)
		return
	}

	for _, drop := range res.Items {
		e.inv.AddItem(drop.Item.Entry, drop.Count, drop.Item.Stackable > 1)
		if drop.Count > 1 {
			e.logLocked("Looted %s x%d.", drop.Item.Name, drop.Count)
		} else {
			e.logLocked("Looted %s.", drop.Item.Name)
		}
		if drop.QuestItem {
			e.exec.ReportItemCount(drop.Item.Entry, e.inv.Count(drop.Item.Entry))
		}
	}
	if res.Gold > 0 {
		e.inv.AddGold(res.Gold)
		e.logLocked("Looted %s.", model.FormatGold(res.Gold))
	}
}

func (e *Engine) logObjectiveProgressLocked() {
	o := e.exec.CurrentObjective()
	if o == nil {
		return
	}
	e.logLocked("%s: %d/%d.", o.Description, o.Current, o.Required)
}

// decideNextActionLocked is the autonomous brain: turn in a finished
// quest, keep grinding an active one, or fetch the next quest.
func (e *Engine) decideNextActionLocked() {
	switch {
	case e.exec.IsComplete():
		e.returnToQuestGiverLocked()
	case e.exec.Active():
		e.continueGrindingLocked()
	default:
		e.startNextQuestLocked()
	}
}

func (e *Engine) startNextQuestLocked() {
	done := func(id int32) bool { return e.completed[id] }
	dest, err := e.nav.NextDestination(e.char.Race, e.char.Level, e.char.Position, done)
	if err != nil {
		e.logger.Warn("destination lookup failed", "err", err)
		e.logLocked("Could not find the next quest giver.")
		e.mode = ModeManual
		e.refreshActionsLocked()
		return
	}
	if dest == nil {
		e.logLocked("No more guided content for level %d. Switching to manual mode.", e.char.Level)
		e.mode = ModeManual
		e.refreshActionsLocked()
		return
	}

	e.travelDest = dest
	if e.char.Position.Distance(dest.Position) <= interactRange {
		e.acceptPendingQuestLocked()
		return
	}
	e.startTravelLocked(dest.Position, travelToGiver)
	e.logLocked("Traveling to quest giver for \"%s\" (%s).",
		dest.QuestName, movement.FormatDuration(e.travel.Info().Duration))
}

func (e *Engine) acceptPendingQuestLocked() {
	dest := e.travelDest
	e.travelDest = nil
	if dest == nil {
		return
	}
	if err := e.exec.AcceptQuest(dest.QuestID); err != nil {
		e.logger.Warn("quest accept failed", "quest", dest.QuestID, "err", err)
		e.completed[dest.QuestID] = true
		e.logLocked("Skipping quest \"%s\".", dest.QuestName)
		return
	}
	e.logLocked("Accepted quest: %s.", dest.QuestName)
	e.logObjectiveProgressLocked()
}

func (e *Engine) continueGrindingLocked() {
	if o := e.exec.CurrentObjective(); o != nil && o.Type == quest.ObjectiveCollect {
		// Credit items already in the bags. A collect objective has no
		// spawn points of its own, so when it stays unfinished the
		// no-spawn-points handling below parks the engine.
		e.exec.ReportItemCount(o.TargetID, e.inv.Count(o.TargetID))
		if e.exec.IsComplete() {
			return
		}
	}

	if e.pendingSpot != nil && e.char.Position.Distance(e.pendingSpot.Position) <= interactRange {
		e.arriveAtGrindSpotLocked()
		return
	}

	spot, err := e.exec.NextGrindSpot(e.char.Position)
	if err != nil {
		e.logger.Warn("grind spot lookup failed", "err", err)
		return
	}
	if spot == nil {
		// Every spawn point visited; sweep them again from the top.
		spots, err := e.exec.FindGrindSpots(e.char.Position)
		if err != nil || len(spots) == 0 {
			e.logLocked("No spawn points found for the current objective.")
			e.mode = ModeManual
			e.refreshActionsLocked()
			return
		}
		spot = &spots[0]
	}

	e.pendingSpot = spot
	if e.char.Position.Distance(spot.Position) <= interactRange {
		e.arriveAtGrindSpotLocked()
		return
	}
	e.startTravelLocked(spot.Position, travelToGrind)
	e.logLocked("Heading to a %s spawn (%s).",
		spot.CreatureName, movement.FormatDuration(e.travel.Info().Duration))
}

func (e *Engine) arriveAtGrindSpotLocked() {
	spot := e.pendingSpot
	e.pendingSpot = nil
	if spot == nil {
		return
	}
	if e.rng.Float64() >= mobPresenceChance {
		e.logLocked("No %s here right now. Moving on.", spot.CreatureName)
		return
	}

	duration := combatMinDuration +
		time.Duration(e.rng.Int64N(int64(combatMaxDuration-combatMinDuration)+1))
	e.combat = &combatRecord{spot: *spot, deadline: e.clock().Add(duration)}
	e.state = StateCombat
	e.logLocked("Engaging %s in combat.", spot.CreatureName)
}

func (e *Engine) returnToQuestGiverLocked() {
	questID := e.exec.QuestID()
	enders, err := e.store.GetQuestEnders(questID)
	if err != nil || len(enders) == 0 {
		enders, err = e.store.GetQuestGivers(questID)
	}
	if err != nil || len(enders) == 0 {
		e.logger.Warn("no quest ender", "quest", questID, "err", err)
		e.logLocked("Nobody to turn quest %d in to.", questID)
		e.mode = ModeManual
		e.refreshActionsLocked()
		return
	}

	var best *model.Position
	var bestDist float64
	for _, ender := range enders {
		spawns, err := e.store.GetCreatureSpawns(ender)
		if err != nil {
			continue
		}
		for _, sp := range spawns {
			if sp.Position.Map != e.char.Position.Map {
				continue
			}
			d := e.char.Position.Distance(sp.Position)
			if best == nil || d < bestDist {
				pos := sp.Position
				best = &pos
				bestDist = d
			}
		}
	}
	if best == nil {
		e.logLocked("Nobody to turn quest %d in to.", questID)
		e.mode = ModeManual
		e.refreshActionsLocked()
		return
	}

	if bestDist <= interactRange {
		e.turnInQuestLocked()
		return
	}
	e.startTravelLocked(*best, travelToEnder)
	// Show the turn-in state for the whole return leg, not traveling.
	e.state = StateTurningInQuest
	e.logLocked("Returning to turn in the quest (%s).",
		movement.FormatDuration(e.travel.Info().Duration))
}

func (e *Engine) turnInQuestLocked() {
	q, err := e.exec.TurnIn()
	if err != nil {
		e.logger.Warn("turn-in failed", "err", err)
		e.state = StateIdle
		return
	}
	e.completed[q.Entry] = true
	e.logLocked("Quest complete: %s.", q.Title)

	if q.RewXP > 0 {
		e.awardExperienceLocked(q.RewXP)
	}
	rewards, err := e.loot.QuestRewards(q.Entry)
	if err == nil {
		for _, drop := range rewards {
			e.inv.AddItem(drop.Item.Entry, drop.Count, drop.Item.Stackable > 1)
			e.logLocked("Received %s.", drop.Item.Name)
		}
	}
	if q.RewMoney > 0 {
		e.inv.AddGold(q.RewMoney)
		e.logLocked("Received %s.", model.FormatGold(q.RewMoney))
	}
	e.state = StateIdle
}

func (e *Engine) awardExperienceLocked(amount int64) {
	res := e.ledger.AddExperience(e.char.Level, e.char.Experience, amount)
	e.logLocked("+%s XP.", experience.FormatXP(amount))
	for lvl := e.char.Level + 1; lvl <= res.NewLevel; lvl++ {
		e.logLocked("LEVEL UP! Now level %d.", lvl)
		e.logger.Info("level up", "character", e.char.Name, "level", lvl)
	}
	e.char.Level = res.NewLevel
	e.char.Experience = res.CumulativeXP
	e.char.ExperienceToNext = e.ledger.XPToNextLevel(res.NewLevel, res.CumulativeXP)
}

func (e *Engine) refreshZoneLocked() {
	name := ""
	if z := e.zones.CurrentZone(e.char.Position); z != nil {
		name = z.Name
	}
	if name != e.currentZone {
		if name != "" {
			e.logLocked("Entered %s.", name)
		}
		e.currentZone = name
		if e.mode == ModeManual {
			e.refreshActionsLocked()
		}
	}
}

func (e *Engine) refreshActionsLocked() {
	e.actions = e.zones.AvailableActions(e.char.Position)
}

// logLocked appends a timestamped line to the rolling action log and
// mirrors it to the structured logger.
func (e *Engine) logLocked(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.actionLog = append(e.actionLog, LogEntry{Time: e.clock(), Message: msg})
	if len(e.actionLog) > actionLogLimit {
		e.actionLog = e.actionLog[len(e.actionLog)-actionLogLimit:]
	}
	e.logger.Debug("action", "msg", msg, "state", string(e.state))
}
