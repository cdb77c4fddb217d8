// Package loot rolls creature drops and quest rewards against the
// static loot tables.
package loot

import (
	"fmt"
	"math/rand/v2"

	"github.com/rathgar/idlebot/internal/data"
)

// Store is the slice of the data layer the generator needs.
type Store interface {
	GetLootTable(entry int32) ([]data.LootRow, error)
	GetReferenceLootTable(ref int32) ([]data.LootRow, error)
	GetItem(entry int32) (*data.Item, error)
	GetQuest(entry int32) (*data.Quest, error)
}

// Drop is one rolled item stack.
type Drop struct {
	Item      *data.Item
	Count     int32
	QuestItem bool
}

// Result is everything a single kill yields.
type Result struct {
	Items []Drop
	Gold  int64
}

// Generator rolls loot. The random source is injected so tests can
// pin outcomes.
type Generator struct {
	store Store
	rng   *rand.Rand
}

// NewGenerator builds a generator with a fresh PCG source.
func NewGenerator(store Store) *Generator {
	return &Generator{
		store: store,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewGeneratorWithRand builds a generator over a caller-owned source.
func NewGeneratorWithRand(store Store, rng *rand.Rand) *Generator {
	return &Generator{store: store, rng: rng}
}

// GenerateMobLoot rolls the drops for one killed creature.
//
// Quest-flagged rows (negative chance) only drop while a quest in
// activeQuestIDs still needs the item, and never push the held count
// past what that quest requires. itemCounts holds the player's current
// per-item totals.
func (g *Generator) GenerateMobLoot(creatureID, mobLevel int32, activeQuestIDs []int32, itemCounts map[int32]int32) (*Result, error) {
	table, err := g.store.GetLootTable(creatureID)
	if err != nil {
		return nil, fmt.Errorf("loot: table for creature %d: %w", creatureID, err)
	}

	res := &Result{Gold: g.rollGold(mobLevel)}
	for _, row := range table {
		drop, err := g.rollRow(row, activeQuestIDs, itemCounts)
		if err != nil {
			return nil, err
		}
		if drop != nil {
			res.Items = append(res.Items, *drop)
		}
	}
	return res, nil
}

// rollRow resolves one loot table row into at most one drop.
func (g *Generator) rollRow(row data.LootRow, activeQuestIDs []int32, itemCounts map[int32]int32) (*Drop, error) {
	// Negative mincountOrRef points at a shared reference table: roll
	// the row's chance once, then pick one reference row uniformly.
	if row.MinCountOrRef < 0 {
		chance := row.Chance
		if chance < 0 {
			chance = -chance
		}
		if g.rng.Float64()*100 >= chance {
			return nil, nil
		}
		ref, err := g.store.GetReferenceLootTable(-row.MinCountOrRef)
		if err != nil {
			return nil, fmt.Errorf("loot: reference %d: %w", -row.MinCountOrRef, err)
		}
		if len(ref) == 0 {
			return nil, nil
		}
		picked := ref[g.rng.IntN(len(ref))]
		return g.materialize(picked, false)
	}

	// Negative chance marks a quest drop, gated on an active quest
	// still needing the item.
	if row.Chance < 0 {
		needed := g.questItemNeeded(row.Item, activeQuestIDs, itemCounts)
		if !needed {
			return nil, nil
		}
		if g.rng.Float64()*100 >= -row.Chance {
			return nil, nil
		}
		return g.materialize(row, true)
	}

	if g.rng.Float64()*100 >= row.Chance {
		return nil, nil
	}
	return g.materialize(row, false)
}

// questItemNeeded reports whether any active quest still wants more of
// the item than the player holds.
func (g *Generator) questItemNeeded(itemID int32, activeQuestIDs []int32, itemCounts map[int32]int32) bool {
	held := itemCounts[itemID]
	for _, questID := range activeQuestIDs {
		q, err := g.store.GetQuest(questID)
		if err != nil {
			continue
		}
		for _, req := range q.ItemRequirements {
			if req.ID == itemID && held < req.Count {
				return true
			}
		}
	}
	return false
}

// materialize turns a won roll into a drop with a concrete count.
func (g *Generator) materialize(row data.LootRow, questItem bool) (*Drop, error) {
	item, err := g.store.GetItem(row.Item)
	if err != nil {
		// Content snapshots have dangling item ids; skip them.
		return nil, nil
	}

	minCount := row.MinCountOrRef
	if minCount < 1 {
		minCount = 1
	}
	maxCount := row.MaxCount
	if maxCount < minCount {
		maxCount = minCount
	}
	count := minCount
	if maxCount > minCount {
		count += g.rng.Int32N(maxCount - minCount + 1)
	}
	return &Drop{Item: item, Count: count, QuestItem: questItem}, nil
}

// rollGold returns the copper dropped by a mob of the given level:
// a uniform roll up to five times the level, plus the level itself.
func (g *Generator) rollGold(mobLevel int32) int64 {
	if mobLevel < 1 {
		mobLevel = 1
	}
	return int64(g.rng.Int32N(mobLevel*5+1)) + int64(mobLevel)
}

// QuestRewards resolves a quest's guaranteed reward items.
func (g *Generator) QuestRewards(questID int32) ([]Drop, error) {
	q, err := g.store.GetQuest(questID)
	if err != nil {
		return nil, fmt.Errorf("loot: quest %d: %w", questID, err)
	}
	var drops []Drop
	for _, rew := range q.Rewards {
		item, err := g.store.GetItem(rew.ID)
		if err != nil {
			continue
		}
		drops = append(drops, Drop{Item: item, Count: rew.Count})
	}
	return drops, nil
}

// QuestGoldReward returns the copper granted on turn-in.
func (g *Generator) QuestGoldReward(questID int32) (int64, error) {
	q, err := g.store.GetQuest(questID)
	if err != nil {
		return 0, fmt.Errorf("loot: quest %d: %w", questID, err)
	}
	return q.RewMoney, nil
}
