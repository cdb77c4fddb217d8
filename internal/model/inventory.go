package model

import (
	"fmt"
	"sync"
)

// ItemInstance is a stack of one item in a bag or equipment slot.
type ItemInstance struct {
	ItemID int32 `json:"itemId"`
	Count  int32 `json:"count"`
}

// EquipSlot names one of the 17 equipment slots.
type EquipSlot string

const (
	SlotHead     EquipSlot = "head"
	SlotNeck     EquipSlot = "neck"
	SlotShoulder EquipSlot = "shoulder"
	SlotBack     EquipSlot = "back"
	SlotChest    EquipSlot = "chest"
	SlotWrist    EquipSlot = "wrist"
	SlotHands    EquipSlot = "hands"
	SlotWaist    EquipSlot = "waist"
	SlotLegs     EquipSlot = "legs"
	SlotFeet     EquipSlot = "feet"
	SlotFinger1  EquipSlot = "finger1"
	SlotFinger2  EquipSlot = "finger2"
	SlotTrinket1 EquipSlot = "trinket1"
	SlotTrinket2 EquipSlot = "trinket2"
	SlotMainHand EquipSlot = "mainHand"
	SlotOffHand  EquipSlot = "offHand"
	SlotRanged   EquipSlot = "ranged"
)

// EquipSlots lists every equipment slot in display order.
var EquipSlots = []EquipSlot{
	SlotHead, SlotNeck, SlotShoulder, SlotBack, SlotChest, SlotWrist,
	SlotHands, SlotWaist, SlotLegs, SlotFeet, SlotFinger1, SlotFinger2,
	SlotTrinket1, SlotTrinket2, SlotMainHand, SlotOffHand, SlotRanged,
}

// Inventory type ids from item_template.InventoryType.
const (
	InvTypeHead          int32 = 1
	InvTypeNeck          int32 = 2
	InvTypeShoulder      int32 = 3
	InvTypeChest         int32 = 5
	InvTypeWaist         int32 = 6
	InvTypeLegs          int32 = 7
	InvTypeFeet          int32 = 8
	InvTypeWrist         int32 = 9
	InvTypeHands         int32 = 10
	InvTypeFinger        int32 = 11
	InvTypeTrinket       int32 = 12
	InvTypeWeapon        int32 = 13
	InvTypeShield        int32 = 14
	InvTypeRanged        int32 = 15
	InvTypeBack          int32 = 16
	InvTypeTwoHand       int32 = 17
	InvTypeRobe          int32 = 20
	InvTypeMainHand      int32 = 21
	InvTypeOffHand       int32 = 22
	InvTypeRangedRight   int32 = 26
)

var slotByInvType = map[int32]EquipSlot{
	InvTypeHead:        SlotHead,
	InvTypeNeck:        SlotNeck,
	InvTypeShoulder:    SlotShoulder,
	InvTypeBack:        SlotBack,
	InvTypeChest:       SlotChest,
	InvTypeRobe:        SlotChest,
	InvTypeWrist:       SlotWrist,
	InvTypeHands:       SlotHands,
	InvTypeWaist:       SlotWaist,
	InvTypeLegs:        SlotLegs,
	InvTypeFeet:        SlotFeet,
	InvTypeFinger:      SlotFinger1,
	InvTypeTrinket:     SlotTrinket1,
	InvTypeWeapon:      SlotMainHand,
	InvTypeMainHand:    SlotMainHand,
	InvTypeTwoHand:     SlotMainHand,
	InvTypeOffHand:     SlotOffHand,
	InvTypeShield:      SlotOffHand,
	InvTypeRanged:      SlotRanged,
	InvTypeRangedRight: SlotRanged,
}

// SlotForInventoryType maps an item_template inventory type to an
// equipment slot. Returns "" for items that cannot be equipped.
func SlotForInventoryType(invType int32) EquipSlot {
	return slotByInvType[invType]
}

// Class bitmask values from item_template.AllowableClass.
var classMasks = map[string]int32{
	"Warrior": 1,
	"Paladin": 2,
	"Hunter":  4,
	"Rogue":   8,
	"Priest":  16,
	"Shaman":  64,
	"Mage":    128,
	"Warlock": 256,
	"Druid":   1024,
}

// CanEquip checks class and level restrictions for an item.
// allowableClass of -1 means any class.
func CanEquip(allowableClass, requiredLevel, playerLevel int32, playerClass string) (bool, string) {
	if requiredLevel > playerLevel {
		return false, fmt.Sprintf("requires level %d", requiredLevel)
	}
	if allowableClass != -1 {
		if allowableClass&classMasks[playerClass] == 0 {
			return false, "wrong class"
		}
	}
	return true, ""
}

// Inventory holds the character's bags, equipment and money.
// Thread-safe via mutex. Gold is stored in copper.
type Inventory struct {
	mu        sync.Mutex
	bags      []ItemInstance
	equipment map[EquipSlot]*ItemInstance
	gold      int64
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		equipment: make(map[EquipSlot]*ItemInstance, len(EquipSlots)),
	}
}

// AddItem adds count of an item. Stackable items merge into one stack.
func (inv *Inventory) AddItem(itemID int32, count int32, stackable bool) {
	if count <= 0 {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if stackable {
		for i := range inv.bags {
			if inv.bags[i].ItemID == itemID {
				inv.bags[i].Count += count
				return
			}
		}
	}
	inv.bags = append(inv.bags, ItemInstance{ItemID: itemID, Count: count})
}

// RemoveItem removes count of an item. A stack at zero or below is
// deleted. Returns false when the inventory holds fewer than count.
func (inv *Inventory) RemoveItem(itemID int32, count int32) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for i := range inv.bags {
		if inv.bags[i].ItemID != itemID {
			continue
		}
		if inv.bags[i].Count < count {
			return false
		}
		inv.bags[i].Count -= count
		if inv.bags[i].Count <= 0 {
			inv.bags = append(inv.bags[:i], inv.bags[i+1:]...)
		}
		return true
	}
	return false
}

// AddGold adds copper. Negative amounts that would take the balance
// below zero are clamped.
func (inv *Inventory) AddGold(copper int64) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.gold += copper
	if inv.gold < 0 {
		inv.gold = 0
	}
}

// Gold returns the current balance in copper.
func (inv *Inventory) Gold() int64 {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.gold
}

// ItemCounts returns a snapshot of bag contents keyed by item id.
// Used by the loot generator for quest-item gating.
func (inv *Inventory) ItemCounts() map[int32]int32 {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	counts := make(map[int32]int32, len(inv.bags))
	for _, it := range inv.bags {
		counts[it.ItemID] += it.Count
	}
	return counts
}

// Count returns how many of one item the bags hold.
func (inv *Inventory) Count(itemID int32) int32 {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	var n int32
	for _, it := range inv.bags {
		if it.ItemID == itemID {
			n += it.Count
		}
	}
	return n
}

// Bags returns a copy of the bag contents.
func (inv *Inventory) Bags() []ItemInstance {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]ItemInstance, len(inv.bags))
	copy(out, inv.bags)
	return out
}

// Equipped returns the item in a slot, or nil.
func (inv *Inventory) Equipped(slot EquipSlot) *ItemInstance {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if it := inv.equipment[slot]; it != nil {
		cp := *it
		return &cp
	}
	return nil
}

// Equip moves an item from the bags into the slot for its inventory
// type. Rings and trinkets fill the first free of their two slots,
// replacing the first when both are taken. The displaced item goes
// back to the bags.
func (inv *Inventory) Equip(itemID, invType int32) error {
	slot := SlotForInventoryType(invType)
	if slot == "" {
		return fmt.Errorf("item %d cannot be equipped", itemID)
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if !inv.removeLocked(itemID, 1) {
		return fmt.Errorf("item %d not in inventory", itemID)
	}
	switch slot {
	case SlotFinger1:
		slot = inv.pickDoubleSlot(SlotFinger1, SlotFinger2)
	case SlotTrinket1:
		slot = inv.pickDoubleSlot(SlotTrinket1, SlotTrinket2)
	}
	if prev := inv.equipment[slot]; prev != nil {
		inv.addLocked(prev.ItemID, prev.Count)
	}
	inv.equipment[slot] = &ItemInstance{ItemID: itemID, Count: 1}
	return nil
}

// Unequip moves the item in a slot back to the bags.
func (inv *Inventory) Unequip(slot EquipSlot) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	it := inv.equipment[slot]
	if it == nil {
		return false
	}
	inv.addLocked(it.ItemID, it.Count)
	inv.equipment[slot] = nil
	return true
}

// EquippedCount returns the number of filled equipment slots.
func (inv *Inventory) EquippedCount() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n := 0
	for _, it := range inv.equipment {
		if it != nil {
			n++
		}
	}
	return n
}

func (inv *Inventory) pickDoubleSlot(first, second EquipSlot) EquipSlot {
	if inv.equipment[first] == nil {
		return first
	}
	if inv.equipment[second] == nil {
		return second
	}
	return first
}

func (inv *Inventory) addLocked(itemID, count int32) {
	for i := range inv.bags {
		if inv.bags[i].ItemID == itemID {
			inv.bags[i].Count += count
			return
		}
	}
	inv.bags = append(inv.bags, ItemInstance{ItemID: itemID, Count: count})
}

func (inv *Inventory) removeLocked(itemID, count int32) bool {
	for i := range inv.bags {
		if inv.bags[i].ItemID != itemID {
			continue
		}
		if inv.bags[i].Count < count {
			return false
		}
		inv.bags[i].Count -= count
		if inv.bags[i].Count <= 0 {
			inv.bags = append(inv.bags[:i], inv.bags[i+1:]...)
		}
		return true
	}
	return false
}

// FormatGold renders copper as "Xg Ys Zc".
func FormatGold(copper int64) string {
	gold := copper / 10000
	silver := (copper % 10000) / 100
	c := copper % 100
	switch {
	case gold > 0:
		return fmt.Sprintf("%dg %ds %dc", gold, silver, c)
	case silver > 0:
		return fmt.Sprintf("%ds %dc", silver, c)
	default:
		return fmt.Sprintf("%dc", c)
	}
}
