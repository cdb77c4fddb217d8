// Package experience converts kills and quest rewards into levels.
// All XP values are cumulative since level 1; progress within the
// current level is derived, never stored.
package experience

import (
	"fmt"
	"math"
)

// MaxLevel is the level cap. Once reached, further XP is discarded.
const MaxLevel = 60

// fallbackTable holds cumulative XP required to reach each level,
// indexed by level (0 unused, level 1 requires 0). Used when the data
// store has no player_xp_for_level rows.
var fallbackTable = [MaxLevel + 1]int64{
	0,      // 0 (unused)
	0,      // 1
	400,    // 2
	900,    // 3
	1400,   // 4
	2100,   // 5
	2800,   // 6
	3600,   // 7
	4500,   // 8
	5400,   // 9
	6500,   // 10
	7600,   // 11
	8700,   // 12
	9800,   // 13
	11000,  // 14
	12300,  // 15
	13600,  // 16
	15000,  // 17
	16400,  // 18
	17800,  // 19
	19300,  // 20
	20800,  // 21
	22400,  // 22
	24000,  // 23
	25500,  // 24
	27200,  // 25
	28900,  // 26
	30500,  // 27
	32200,  // 28
	33900,  // 29
	36300,  // 30
	38800,  // 31
	41600,  // 32
	44600,  // 33
	48000,  // 34
	51400,  // 35
	55000,  // 36
	58700,  // 37
	62400,  // 38
	66200,  // 39
	70200,  // 40
	74300,  // 41
	78500,  // 42
	82800,  // 43
	87100,  // 44
	91600,  // 45
	96300,  // 46
	101000, // 47
	105800, // 48
	110700, // 49
	115700, // 50
	120900, // 51
	126100, // 52
	131500, // 53
	137000, // 54
	142500, // 55
	148200, // 56
	154000, // 57
	159900, // 58
	165800, // 59
	171900, // 60
}

// LevelUpResult reports the outcome of one XP grant.
// CumulativeXP carries the full total since level 1, not the progress
// into the new level, so it compares directly against the table.
type LevelUpResult struct {
	NewLevel     int32
	CumulativeXP int64
	LevelsGained int32
}

// Stats is the derived per-level XP breakdown used for display.
type Stats struct {
	Level        int32
	CumulativeXP int64
	XPIntoLevel  int64
	XPNeeded     int64
	XPRemaining  int64
	Progress     float64
}

// Ledger answers all level/XP questions from one threshold table.
type Ledger struct {
	table [MaxLevel + 1]int64
}

// NewLedger builds a ledger from a cumulative threshold table indexed
// by level (index 0 unused, table[1] == 0). A nil or short table falls
// back to the built-in one.
func NewLedger(table []int64) *Ledger {
	l := &Ledger{table: fallbackTable}
	if len(table) >= MaxLevel+1 {
		copy(l.table[:], table[:MaxLevel+1])
	}
	return l
}

// XPForLevel returns the cumulative XP required to reach the level.
// Levels outside [1, MaxLevel] return 0.
func (l *Ledger) XPForLevel(level int32) int64 {
	if level < 1 || level > MaxLevel {
		return 0
	}
	return l.table[level]
}

// XPToNextLevel returns how much more XP is needed to level, 0 at cap.
func (l *Ledger) XPToNextLevel(level int32, currentXP int64) int64 {
	if level >= MaxLevel {
		return 0
	}
	rest := l.XPForLevel(level+1) - currentXP
	if rest < 0 {
		return 0
	}
	return rest
}

// AddExperience applies an XP grant, cascading through as many
// level-ups as the total supports. At the cap the grant is discarded.
func (l *Ledger) AddExperience(level int32, currentXP, gained int64) LevelUpResult {
	if level >= MaxLevel {
		return LevelUpResult{NewLevel: MaxLevel, CumulativeXP: currentXP}
	}

	xp := currentXP + gained
	var gainedLevels int32
	for level < MaxLevel && xp >= l.XPForLevel(level+1) {
		level++
		gainedLevels++
	}

	return LevelUpResult{NewLevel: level, CumulativeXP: xp, LevelsGained: gainedLevels}
}

// ProgressToNextLevel returns the percentage into the current level,
// clamped to [0,100]. 100 at the cap.
func (l *Ledger) ProgressToNextLevel(level int32, currentXP int64) float64 {
	if level >= MaxLevel {
		return 100
	}
	base := l.XPForLevel(level)
	next := l.XPForLevel(level + 1)
	if next <= base {
		return 0
	}
	p := float64(currentXP-base) / float64(next-base) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ExperienceStats returns the full XP breakdown for a level/XP pair.
func (l *Ledger) ExperienceStats(level int32, currentXP int64) Stats {
	base := l.XPForLevel(level)
	return Stats{
		Level:        level,
		CumulativeXP: currentXP,
		XPIntoLevel:  currentXP - base,
		XPNeeded:     l.XPForLevel(level+1) - base,
		XPRemaining:  l.XPToNextLevel(level, currentXP),
		Progress:     l.ProgressToNextLevel(level, currentXP),
	}
}

// CalculateMobXP returns the XP for killing a mob of the given level.
// Base is 50 XP per mob level, scaled by the level delta; a mob seven
// or more levels below the player is gray and yields nothing.
func CalculateMobXP(mobLevel, playerLevel int32) int64 {
	delta := mobLevel - playerLevel
	base := float64(mobLevel) * 50

	var multiplier float64
	switch {
	case delta >= 5:
		multiplier = 1.2
	case delta >= 3:
		multiplier = 1.1
	case delta >= -2:
		multiplier = 1.0
	case delta >= -4:
		multiplier = 0.8
	case delta >= -6:
		multiplier = 0.5
	default:
		return 0
	}

	return int64(math.Floor(base * multiplier))
}

// FormatXP renders an XP amount as "512", "1.5K" or "2.3M".
func FormatXP(xp int64) string {
	switch {
	case xp >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(xp)/1_000_000)
	case xp >= 1_000:
		return fmt.Sprintf("%.1fK", float64(xp)/1_000)
	default:
		return fmt.Sprintf("%d", xp)
	}
}
