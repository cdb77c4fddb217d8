// Package data reads the static world database: quests, creatures,
// items, loot tables and player creation info. The database is the
// classic content snapshot shipped alongside the server binary and is
// never written to at runtime.
package data

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rathgar/idlebot/internal/model"
)

// ErrNotFound reports a lookup that matched no row.
var ErrNotFound = errors.New("data: not found")

const maxLevel = 60

// Requirement is one decoded id/count pair from a quest row. The raw
// rows spread these across numbered columns; decoding happens once at
// load so callers never see empty slots.
type Requirement struct {
	ID    int32
	Count int32
}

// Quest is one quest_template row with its slot columns decoded.
type Quest struct {
	Entry      int32
	Title      string
	QuestLevel int32
	MinLevel   int32

	KillRequirements []Requirement
	ItemRequirements []Requirement
	Rewards          []Requirement
	ChoiceRewards    []Requirement

	RewXP    int64
	RewMoney int64
}

// CreatureSpawn is one placed creature in the world.
type CreatureSpawn struct {
	GUID     int32
	Entry    int32
	Position model.Position
}

// CreatureTemplate describes a creature kind.
type CreatureTemplate struct {
	Entry    int32
	Name     string
	MinLevel int32
	MaxLevel int32
	Rank     int32
}

// Item is one item_template row.
type Item struct {
	Entry          int32
	Name           string
	Quality        int32
	InventoryType  int32
	RequiredLevel  int32
	Class          int32
	Subclass       int32
	Stackable      int32
	AllowableClass int32
	Armor          int32
}

// LootRow is one loot table entry. A negative MinCountOrRef points at
// a reference loot table; a negative Chance marks a quest-only drop.
type LootRow struct {
	Entry         int32
	Item          int32
	Chance        float64
	GroupID       int32
	MinCountOrRef int32
	MaxCount      int32
}

// Store answers static world data queries over one SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens the static content database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("data: empty database path")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("data: %s: %w", p, err)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetQuest loads one quest by entry, decoding its requirement and
// reward slots.
func (s *Store) GetQuest(entry int32) (*Quest, error) {
	row := s.db.QueryRow(`
		SELECT entry, Title, QuestLevel, MinLevel,
		       ReqCreatureOrGOId1, ReqCreatureOrGOCount1,
		       ReqCreatureOrGOId2, ReqCreatureOrGOCount2,
		       ReqCreatureOrGOId3, ReqCreatureOrGOCount3,
		       ReqCreatureOrGOId4, ReqCreatureOrGOCount4,
		       ReqItemId1, ReqItemCount1,
		       ReqItemId2, ReqItemCount2,
		       ReqItemId3, ReqItemCount3,
		       ReqItemId4, ReqItemCount4,
		       ReqItemId5, ReqItemCount5,
		       ReqItemId6, ReqItemCount6,
		       RewItemId1, RewItemCount1,
		       RewItemId2, RewItemCount2,
		       RewItemId3, RewItemCount3,
		       RewItemId4, RewItemCount4,
		       RewChoiceItemId1, RewChoiceItemCount1,
		       RewChoiceItemId2, RewChoiceItemCount2,
		       RewChoiceItemId3, RewChoiceItemCount3,
		       RewChoiceItemId4, RewChoiceItemCount4,
		       RewChoiceItemId5, RewChoiceItemCount5,
		       RewChoiceItemId6, RewChoiceItemCount6,
		       RewXP, RewOrReqMoney
		FROM quest_template
		WHERE entry = ?`, entry)

	var q Quest
	kills := make([]int32, 8)
	items := make([]int32, 12)
	rews := make([]int32, 8)
	choices := make([]int32, 12)

	dest := []any{&q.Entry, &q.Title, &q.QuestLevel, &q.MinLevel}
	for i := range kills {
		dest = append(dest, &kills[i])
	}
	for i := range items {
		dest = append(dest, &items[i])
	}
	for i := range rews {
		dest = append(dest, &rews[i])
	}
	for i := range choices {
		dest = append(dest, &choices[i])
	}
	dest = append(dest, &q.RewXP, &q.RewMoney)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("data: quest %d: %w", entry, ErrNotFound)
		}
		return nil, fmt.Errorf("data: quest %d: %w", entry, err)
	}

	q.KillRequirements = decodeSlots(kills)
	q.ItemRequirements = decodeSlots(items)
	q.Rewards = decodeSlots(rews)
	q.ChoiceRewards = decodeSlots(choices)
	// Negative RewOrReqMoney means the quest demands money instead of
	// granting it; the executor never accepts those, so floor at zero.
	if q.RewMoney < 0 {
		q.RewMoney = 0
	}
	return &q, nil
}

// decodeSlots converts interleaved id/count pairs into a compact list,
// skipping empty slots.
func decodeSlots(pairs []int32) []Requirement {
	var reqs []Requirement
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] == 0 {
			continue
		}
		count := pairs[i+1]
		if count < 1 {
			count = 1
		}
		reqs = append(reqs, Requirement{ID: pairs[i], Count: count})
	}
	return reqs
}

// GetQuestsByLevel lists quests whose QuestLevel falls in [min, max].
func (s *Store) GetQuestsByLevel(minQL, maxQL int32) ([]Quest, error) {
	rows, err := s.db.Query(`
		SELECT entry FROM quest_template
		WHERE QuestLevel BETWEEN ? AND ?
		ORDER BY QuestLevel, entry`, minQL, maxQL)
	if err != nil {
		return nil, fmt.Errorf("data: quests by level: %w", err)
	}
	defer rows.Close()

	var entries []int32
	for rows.Next() {
		var entry int32
		if err := rows.Scan(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	quests := make([]Quest, 0, len(entries))
	for _, entry := range entries {
		q, err := s.GetQuest(entry)
		if err != nil {
			return nil, err
		}
		quests = append(quests, *q)
	}
	return quests, nil
}

// GetCreatureSpawns lists all world placements of a creature kind.
func (s *Store) GetCreatureSpawns(entry int32) ([]CreatureSpawn, error) {
	rows, err := s.db.Query(`
		SELECT guid, id, map, position_x, position_y, position_z
		FROM creature
		WHERE id = ?`, entry)
	if err != nil {
		return nil, fmt.Errorf("data: spawns of %d: %w", entry, err)
	}
	defer rows.Close()

	var spawns []CreatureSpawn
	for rows.Next() {
		var sp CreatureSpawn
		if err := rows.Scan(&sp.GUID, &sp.Entry, &sp.Position.Map,
			&sp.Position.X, &sp.Position.Y, &sp.Position.Z); err != nil {
			return nil, err
		}
		spawns = append(spawns, sp)
	}
	return spawns, rows.Err()
}

// GetCreatureTemplate loads one creature kind by entry.
func (s *Store) GetCreatureTemplate(entry int32) (*CreatureTemplate, error) {
	var ct CreatureTemplate
	err := s.db.QueryRow(`
		SELECT entry, Name, MinLevel, MaxLevel, Rank
		FROM creature_template
		WHERE entry = ?`, entry).
		Scan(&ct.Entry, &ct.Name, &ct.MinLevel, &ct.MaxLevel, &ct.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("data: creature %d: %w", entry, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("data: creature %d: %w", entry, err)
	}
	return &ct, nil
}

// GetQuestGivers lists creature entries that offer the quest.
func (s *Store) GetQuestGivers(questID int32) ([]int32, error) {
	return s.relatedCreatures("creature_questrelation", questID)
}

// GetQuestEnders lists creature entries that accept the completed quest.
func (s *Store) GetQuestEnders(questID int32) ([]int32, error) {
	return s.relatedCreatures("creature_involvedrelation", questID)
}

func (s *Store) relatedCreatures(table string, questID int32) ([]int32, error) {
	rows, err := s.db.Query(
		fmt.Sprintf("SELECT id FROM %s WHERE quest = ?", table), questID)
	if err != nil {
		return nil, fmt.Errorf("data: %s for quest %d: %w", table, questID, err)
	}
	defer rows.Close()

	var entries []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		entries = append(entries, id)
	}
	return entries, rows.Err()
}

// GetItem loads one item by entry.
func (s *Store) GetItem(entry int32) (*Item, error) {
	var it Item
	err := s.db.QueryRow(`
		SELECT entry, name, Quality, InventoryType, RequiredLevel,
		       class, subclass, stackable, AllowableClass, armor
		FROM item_template
		WHERE entry = ?`, entry).
		Scan(&it.Entry, &it.Name, &it.Quality, &it.InventoryType,
			&it.RequiredLevel, &it.Class, &it.Subclass, &it.Stackable,
			&it.AllowableClass, &it.Armor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("data: item %d: %w", entry, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("data: item %d: %w", entry, err)
	}
	return &it, nil
}

// GetLootTable lists the drop rows for a creature kind.
func (s *Store) GetLootTable(entry int32) ([]LootRow, error) {
	return s.lootRows("creature_loot_template", entry)
}

// GetReferenceLootTable lists the rows of a shared reference table.
func (s *Store) GetReferenceLootTable(ref int32) ([]LootRow, error) {
	return s.lootRows("reference_loot_template", ref)
}

func (s *Store) lootRows(table string, entry int32) ([]LootRow, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT entry, item, ChanceOrQuestChance, groupid, mincountOrRef, maxcount
		FROM %s
		WHERE entry = ?`, table), entry)
	if err != nil {
		return nil, fmt.Errorf("data: %s %d: %w", table, entry, err)
	}
	defer rows.Close()

	var out []LootRow
	for rows.Next() {
		var lr LootRow
		if err := rows.Scan(&lr.Entry, &lr.Item, &lr.Chance,
			&lr.GroupID, &lr.MinCountOrRef, &lr.MaxCount); err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// GetStartPosition returns the creation position for a race/class pair.
func (s *Store) GetStartPosition(raceID, classID int32) (*model.Position, error) {
	var pos model.Position
	err := s.db.QueryRow(`
		SELECT map, position_x, position_y, position_z
		FROM playercreateinfo
		WHERE race = ? AND class = ?`, raceID, classID).
		Scan(&pos.Map, &pos.X, &pos.Y, &pos.Z)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("data: createinfo race %d class %d: %w", raceID, classID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("data: createinfo race %d class %d: %w", raceID, classID, err)
	}
	return &pos, nil
}

// ExperienceTable builds the cumulative level threshold table from the
// per-level rows, indexed by level with index 0 unused. Returns nil if
// the table is absent or incomplete so callers fall back to built-in
// values.
func (s *Store) ExperienceTable() []int64 {
	rows, err := s.db.Query(`
		SELECT lvl, xp_for_next_level
		FROM player_xp_for_level
		ORDER BY lvl`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	perLevel := make(map[int32]int64)
	for rows.Next() {
		var lvl int32
		var xp int64
		if err := rows.Scan(&lvl, &xp); err != nil {
			return nil
		}
		perLevel[lvl] = xp
	}
	if rows.Err() != nil {
		return nil
	}

	table := make([]int64, maxLevel+1)
	for lvl := int32(2); lvl <= maxLevel; lvl++ {
		step, ok := perLevel[lvl-1]
		if !ok {
			return nil
		}
		table[lvl] = table[lvl-1] + step
	}
	return table
}
