package model

import "testing"

func TestInventory_AddItemStacking(t *testing.T) {
	inv := NewInventory()
	inv.AddItem(100, 3, true)
	inv.AddItem(100, 2, true)
	inv.AddItem(200, 1, false)
	inv.AddItem(200, 1, false)

	bags := inv.Bags()
	if len(bags) != 3 {
		t.Fatalf("got %d stacks, want 3", len(bags))
	}
	if inv.Count(100) != 5 {
		t.Errorf("Count(100) = %d, want 5", inv.Count(100))
	}
	if inv.Count(200) != 2 {
		t.Errorf("Count(200) = %d, want 2", inv.Count(200))
	}
}

func TestInventory_RemoveItem(t *testing.T) {
	inv := NewInventory()
	inv.AddItem(100, 5, true)

	if !inv.RemoveItem(100, 3) {
		t.Fatal("RemoveItem(100, 3) failed")
	}
	if inv.Count(100) != 2 {
		t.Errorf("Count(100) = %d, want 2", inv.Count(100))
	}

	// Removing more than held fails and changes nothing.
	if inv.RemoveItem(100, 3) {
		t.Error("RemoveItem should fail when count exceeds holdings")
	}
	if inv.Count(100) != 2 {
		t.Errorf("Count(100) after failed remove = %d, want 2", inv.Count(100))
	}

	// Emptying a stack deletes the slot.
	if !inv.RemoveItem(100, 2) {
		t.Fatal("RemoveItem(100, 2) failed")
	}
	if len(inv.Bags()) != 0 {
		t.Error("empty stack should be deleted from bags")
	}
}

func TestInventory_Gold(t *testing.T) {
	inv := NewInventory()
	inv.AddGold(12345)
	if inv.Gold() != 12345 {
		t.Errorf("Gold() = %d, want 12345", inv.Gold())
	}
	inv.AddGold(-20000)
	if inv.Gold() != 0 {
		t.Errorf("gold must never go negative, got %d", inv.Gold())
	}
}

func TestInventory_ItemCounts(t *testing.T) {
	inv := NewInventory()
	inv.AddItem(1, 4, true)
	inv.AddItem(2, 1, false)

	counts := inv.ItemCounts()
	if counts[1] != 4 || counts[2] != 1 {
		t.Errorf("ItemCounts() = %v", counts)
	}
}

func TestInventory_EquipAndUnequip(t *testing.T) {
	inv := NewInventory()
	inv.AddItem(500, 1, false)

	if err := inv.Equip(500, InvTypeChest); err != nil {
		t.Fatalf("Equip: %v", err)
	}
	if inv.Count(500) != 0 {
		t.Error("equipped item should leave the bags")
	}
	eq := inv.Equipped(SlotChest)
	if eq == nil || eq.ItemID != 500 {
		t.Fatalf("Equipped(chest) = %+v", eq)
	}

	// Equipping into an occupied slot swaps the old item back.
	inv.AddItem(501, 1, false)
	if err := inv.Equip(501, InvTypeChest); err != nil {
		t.Fatalf("Equip replacement: %v", err)
	}
	if inv.Count(500) != 1 {
		t.Error("displaced item should return to the bags")
	}

	if !inv.Unequip(SlotChest) {
		t.Fatal("Unequip failed")
	}
	if inv.Count(501) != 1 {
		t.Error("unequipped item should return to the bags")
	}
	if inv.Unequip(SlotChest) {
		t.Error("Unequip of empty slot should fail")
	}
}

func TestInventory_EquipRings(t *testing.T) {
	inv := NewInventory()
	inv.AddItem(601, 1, false)
	inv.AddItem(602, 1, false)
	inv.AddItem(603, 1, false)

	if err := inv.Equip(601, InvTypeFinger); err != nil {
		t.Fatal(err)
	}
	if err := inv.Equip(602, InvTypeFinger); err != nil {
		t.Fatal(err)
	}
	if inv.Equipped(SlotFinger1).ItemID != 601 || inv.Equipped(SlotFinger2).ItemID != 602 {
		t.Fatal("rings should fill finger1 then finger2")
	}

	// Third ring replaces finger1.
	if err := inv.Equip(603, InvTypeFinger); err != nil {
		t.Fatal(err)
	}
	if inv.Equipped(SlotFinger1).ItemID != 603 {
		t.Error("third ring should replace finger1")
	}
	if inv.Count(601) != 1 {
		t.Error("replaced ring should return to the bags")
	}
}

func TestCanEquip(t *testing.T) {
	tests := []struct {
		name           string
		allowableClass int32
		requiredLevel  int32
		playerLevel    int32
		playerClass    string
		want           bool
	}{
		{"any class ok", -1, 1, 10, "Mage", true},
		{"level too low", -1, 20, 10, "Mage", false},
		{"class match", 1, 1, 10, "Warrior", true},
		{"class mismatch", 1, 1, 10, "Mage", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := CanEquip(tt.allowableClass, tt.requiredLevel, tt.playerLevel, tt.playerClass)
			if got != tt.want {
				t.Errorf("CanEquip() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatGold(t *testing.T) {
	tests := []struct {
		copper int64
		want   string
	}{
		{45, "45c"},
		{245, "2s 45c"},
		{12345, "1g 23s 45c"},
		{0, "0c"},
	}
	for _, tt := range tests {
		if got := FormatGold(tt.copper); got != tt.want {
			t.Errorf("FormatGold(%d) = %q, want %q", tt.copper, got, tt.want)
		}
	}
}
