package engine

import (
	"github.com/rathgar/idlebot/internal/model"
	"github.com/rathgar/idlebot/internal/quest"
	"github.com/rathgar/idlebot/internal/zone"
)

// Snapshot is a self-contained view of the engine for presentation.
// Every slice and nested struct is copied, so holding a snapshot after
// the engine moves on is always safe.
type Snapshot struct {
	Tick      uint64               `json:"tick"`
	State     State                `json:"state"`
	Mode      Mode                 `json:"mode"`
	Paused    bool                 `json:"paused"`
	Character model.Character      `json:"character"`
	Zone      string               `json:"zone"`
	Progress  float64              `json:"xpProgress"`
	Gold      int64                `json:"gold"`
	GoldText  string               `json:"goldText"`
	Bags      []model.ItemInstance `json:"bags"`
	Quest     *quest.Progress      `json:"quest,omitempty"`
	Actions   []zone.Action        `json:"actions"`
	Log       []LogEntry           `json:"log"`
}

// Snapshot returns a deep copy of the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	gold := e.inv.Gold()
	actions := make([]zone.Action, len(e.actions))
	copy(actions, e.actions)
	logCopy := make([]LogEntry, len(e.actionLog))
	copy(logCopy, e.actionLog)

	return Snapshot{
		Tick:      e.ticks.Load(),
		State:     e.state,
		Mode:      e.mode,
		Paused:    e.paused,
		Character: *e.char,
		Zone:      e.currentZone,
		Progress:  e.ledger.ProgressToNextLevel(e.char.Level, e.char.Experience),
		Gold:      gold,
		GoldText:  model.FormatGold(gold),
		Bags:      e.inv.Bags(),
		Quest:     e.exec.Progress(),
		Actions:   actions,
		Log:       logCopy,
	}
}
