package data

import (
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	stmts := []string{
		`CREATE TABLE quest_template (
			entry INTEGER PRIMARY KEY, Title TEXT, QuestLevel INTEGER, MinLevel INTEGER,
			ReqCreatureOrGOId1 INTEGER DEFAULT 0, ReqCreatureOrGOCount1 INTEGER DEFAULT 0,
			ReqCreatureOrGOId2 INTEGER DEFAULT 0, ReqCreatureOrGOCount2 INTEGER DEFAULT 0,
			ReqCreatureOrGOId3 INTEGER DEFAULT 0, ReqCreatureOrGOCount3 INTEGER DEFAULT 0,
			ReqCreatureOrGOId4 INTEGER DEFAULT 0, ReqCreatureOrGOCount4 INTEGER DEFAULT 0,
			ReqItemId1 INTEGER DEFAULT 0, ReqItemCount1 INTEGER DEFAULT 0,
			ReqItemId2 INTEGER DEFAULT 0, ReqItemCount2 INTEGER DEFAULT 0,
			ReqItemId3 INTEGER DEFAULT 0, ReqItemCount3 INTEGER DEFAULT 0,
			ReqItemId4 INTEGER DEFAULT 0, ReqItemCount4 INTEGER DEFAULT 0,
			ReqItemId5 INTEGER DEFAULT 0, ReqItemCount5 INTEGER DEFAULT 0,
			ReqItemId6 INTEGER DEFAULT 0, ReqItemCount6 INTEGER DEFAULT 0,
			RewItemId1 INTEGER DEFAULT 0, RewItemCount1 INTEGER DEFAULT 0,
			RewItemId2 INTEGER DEFAULT 0, RewItemCount2 INTEGER DEFAULT 0,
			RewItemId3 INTEGER DEFAULT 0, RewItemCount3 INTEGER DEFAULT 0,
			RewItemId4 INTEGER DEFAULT 0, RewItemCount4 INTEGER DEFAULT 0,
			RewChoiceItemId1 INTEGER DEFAULT 0, RewChoiceItemCount1 INTEGER DEFAULT 0,
			RewChoiceItemId2 INTEGER DEFAULT 0, RewChoiceItemCount2 INTEGER DEFAULT 0,
			RewChoiceItemId3 INTEGER DEFAULT 0, RewChoiceItemCount3 INTEGER DEFAULT 0,
			RewChoiceItemId4 INTEGER DEFAULT 0, RewChoiceItemCount4 INTEGER DEFAULT 0,
			RewChoiceItemId5 INTEGER DEFAULT 0, RewChoiceItemCount5 INTEGER DEFAULT 0,
			RewChoiceItemId6 INTEGER DEFAULT 0, RewChoiceItemCount6 INTEGER DEFAULT 0,
			RewXP INTEGER DEFAULT 0, RewOrReqMoney INTEGER DEFAULT 0
		)`,
		`CREATE TABLE creature (
			guid INTEGER PRIMARY KEY, id INTEGER, map INTEGER,
			position_x REAL, position_y REAL, position_z REAL
		)`,
		`CREATE TABLE creature_template (
			entry INTEGER PRIMARY KEY, Name TEXT,
			MinLevel INTEGER, MaxLevel INTEGER, Rank INTEGER
		)`,
		`CREATE TABLE item_template (
			entry INTEGER PRIMARY KEY, name TEXT, Quality INTEGER,
			InventoryType INTEGER, RequiredLevel INTEGER, class INTEGER,
			subclass INTEGER, stackable INTEGER, AllowableClass INTEGER, armor INTEGER
		)`,
		`CREATE TABLE creature_loot_template (
			entry INTEGER, item INTEGER, ChanceOrQuestChance REAL,
			groupid INTEGER, mincountOrRef INTEGER, maxcount INTEGER
		)`,
		`CREATE TABLE reference_loot_template (
			entry INTEGER, item INTEGER, ChanceOrQuestChance REAL,
			groupid INTEGER, mincountOrRef INTEGER, maxcount INTEGER
		)`,
		`CREATE TABLE creature_questrelation (id INTEGER, quest INTEGER)`,
		`CREATE TABLE creature_involvedrelation (id INTEGER, quest INTEGER)`,
		`CREATE TABLE playercreateinfo (
			race INTEGER, class INTEGER, map INTEGER,
			position_x REAL, position_y REAL, position_z REAL
		)`,
		`CREATE TABLE player_xp_for_level (lvl INTEGER PRIMARY KEY, xp_for_next_level INTEGER)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return s
}

func TestStore_GetQuestDecodesSlots(t *testing.T) {
	s := openTestStore(t)
	mustExec(t, s, `INSERT INTO quest_template
		(entry, Title, QuestLevel, MinLevel,
		 ReqCreatureOrGOId1, ReqCreatureOrGOCount1,
		 ReqItemId1, ReqItemCount1, ReqItemId2, ReqItemCount2,
		 RewItemId1, RewItemCount1,
		 RewChoiceItemId1, RewChoiceItemCount1,
		 RewXP, RewOrReqMoney)
		VALUES (7, 'Kobold Camp Cleanup', 2, 1, 80, 10, 1251, 4, 2589, 6, 117, 1, 25, 1, 250, 75)`)

	q, err := s.GetQuest(7)
	if err != nil {
		t.Fatalf("GetQuest: %v", err)
	}
	if q.Title != "Kobold Camp Cleanup" || q.QuestLevel != 2 {
		t.Errorf("quest header = %+v", q)
	}
	if len(q.KillRequirements) != 1 || q.KillRequirements[0] != (Requirement{ID: 80, Count: 10}) {
		t.Errorf("KillRequirements = %+v", q.KillRequirements)
	}
	if len(q.ItemRequirements) != 2 || q.ItemRequirements[1] != (Requirement{ID: 2589, Count: 6}) {
		t.Errorf("ItemRequirements = %+v", q.ItemRequirements)
	}
	if len(q.Rewards) != 1 || len(q.ChoiceRewards) != 1 {
		t.Errorf("rewards = %+v / %+v", q.Rewards, q.ChoiceRewards)
	}
	if q.RewXP != 250 || q.RewMoney != 75 {
		t.Errorf("RewXP/RewMoney = %d/%d", q.RewXP, q.RewMoney)
	}
}

func TestStore_GetQuestNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetQuest(99999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_GetQuestMoneyFloor(t *testing.T) {
	s := openTestStore(t)
	mustExec(t, s, `INSERT INTO quest_template (entry, Title, QuestLevel, MinLevel, RewOrReqMoney)
		VALUES (10, 'Tax Collection', 5, 1, -500)`)

	q, err := s.GetQuest(10)
	if err != nil {
		t.Fatal(err)
	}
	if q.RewMoney != 0 {
		t.Errorf("RewMoney = %d, want 0 for money-demanding quests", q.RewMoney)
	}
}

func TestStore_CreatureLookups(t *testing.T) {
	s := openTestStore(t)
	mustExec(t, s, `INSERT INTO creature_template VALUES (80, 'Kobold Worker', 1, 2, 0)`)
	mustExec(t, s, `INSERT INTO creature VALUES (1, 80, 0, -8900, -200, 80)`)
	mustExec(t, s, `INSERT INTO creature VALUES (2, 80, 0, -8910, -210, 80)`)

	ct, err := s.GetCreatureTemplate(80)
	if err != nil {
		t.Fatalf("GetCreatureTemplate: %v", err)
	}
	if ct.Name != "Kobold Worker" || ct.MinLevel != 1 || ct.MaxLevel != 2 {
		t.Errorf("template = %+v", ct)
	}

	spawns, err := s.GetCreatureSpawns(80)
	if err != nil {
		t.Fatalf("GetCreatureSpawns: %v", err)
	}
	if len(spawns) != 2 {
		t.Fatalf("got %d spawns, want 2", len(spawns))
	}
	if spawns[0].Position.X != -8900 || spawns[0].Position.Map != 0 {
		t.Errorf("spawn = %+v", spawns[0])
	}
}

func TestStore_QuestRelations(t *testing.T) {
	s := openTestStore(t)
	mustExec(t, s, `INSERT INTO creature_questrelation VALUES (197, 7)`)
	mustExec(t, s, `INSERT INTO creature_involvedrelation VALUES (197, 7)`)
	mustExec(t, s, `INSERT INTO creature_involvedrelation VALUES (240, 7)`)

	givers, err := s.GetQuestGivers(7)
	if err != nil || len(givers) != 1 || givers[0] != 197 {
		t.Errorf("givers = %v, err %v", givers, err)
	}
	enders, err := s.GetQuestEnders(7)
	if err != nil || len(enders) != 2 {
		t.Errorf("enders = %v, err %v", enders, err)
	}
}

func TestStore_LootTables(t *testing.T) {
	s := openTestStore(t)
	mustExec(t, s, `INSERT INTO creature_loot_template VALUES (80, 117, 40.5, 0, 1, 1)`)
	mustExec(t, s, `INSERT INTO creature_loot_template VALUES (80, 0, 100, 0, -34001, 1)`)
	mustExec(t, s, `INSERT INTO reference_loot_template VALUES (34001, 2589, 25, 1, 1, 3)`)

	loot, err := s.GetLootTable(80)
	if err != nil {
		t.Fatalf("GetLootTable: %v", err)
	}
	if len(loot) != 2 {
		t.Fatalf("got %d rows, want 2", len(loot))
	}
	if loot[1].MinCountOrRef != -34001 {
		t.Errorf("reference row = %+v", loot[1])
	}

	ref, err := s.GetReferenceLootTable(34001)
	if err != nil || len(ref) != 1 || ref[0].MaxCount != 3 {
		t.Errorf("reference table = %+v, err %v", ref, err)
	}
}

func TestStore_StartPositionAndXPTable(t *testing.T) {
	s := openTestStore(t)
	mustExec(t, s, `INSERT INTO playercreateinfo VALUES (1, 1, 0, -8949.95, -132.49, 83.53)`)
	for lvl := 1; lvl < 60; lvl++ {
		mustExec(t, s, `INSERT INTO player_xp_for_level VALUES (?, 100)`, lvl)
	}

	pos, err := s.GetStartPosition(1, 1)
	if err != nil {
		t.Fatalf("GetStartPosition: %v", err)
	}
	if pos.Map != 0 || pos.X != -8949.95 {
		t.Errorf("position = %+v", pos)
	}
	if _, err := s.GetStartPosition(9, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing createinfo err = %v", err)
	}

	table := s.ExperienceTable()
	if table == nil {
		t.Fatal("ExperienceTable returned nil")
	}
	if table[1] != 0 || table[2] != 100 || table[60] != 5900 {
		t.Errorf("table[1,2,60] = %d, %d, %d", table[1], table[2], table[60])
	}
}

func TestStore_ExperienceTableIncomplete(t *testing.T) {
	s := openTestStore(t)
	mustExec(t, s, `INSERT INTO player_xp_for_level VALUES (1, 400)`)

	if table := s.ExperienceTable(); table != nil {
		t.Errorf("incomplete table should yield nil, got %d rows", len(table))
	}
}

func mustExec(t *testing.T, s *Store, stmt string, args ...any) {
	t.Helper()
	if _, err := s.db.Exec(stmt, args...); err != nil {
		t.Fatalf("exec %q: %v", stmt, err)
	}
}
