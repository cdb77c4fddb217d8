package model

import "math/rand/v2"

// Faction is the side a race belongs to.
type Faction string

const (
	FactionAlliance Faction = "Alliance"
	FactionHorde    Faction = "Horde"
)

// Character is the simulated player. Owned exclusively by the engine;
// mutated only through its XP-award and arrival-update paths.
//
// Experience is cumulative since level 1 (NOT progress within the
// current level), matching the cumulative thresholds of the experience
// ledger.
type Character struct {
	Name             string   `json:"name"`
	Race             string   `json:"race"`
	Class            string   `json:"class"`
	Level            int32    `json:"level"`
	Experience       int64    `json:"experience"`
	ExperienceToNext int64    `json:"experienceToNext"`
	Position         Position `json:"position"`
}

// RaceInfo describes a playable race.
type RaceInfo struct {
	Name           string
	Faction        Faction
	StartZone      string
	AllowedClasses []string
}

// Races holds the playable race table.
var Races = map[string]RaceInfo{
	"Human": {
		Name:           "Human",
		Faction:        FactionAlliance,
		StartZone:      "Elwynn Forest",
		AllowedClasses: []string{"Warrior", "Paladin", "Rogue", "Priest", "Mage", "Warlock"},
	},
	"Dwarf": {
		Name:           "Dwarf",
		Faction:        FactionAlliance,
		StartZone:      "Dun Morogh",
		AllowedClasses: []string{"Warrior", "Paladin", "Hunter", "Rogue", "Priest"},
	},
	"Night Elf": {
		Name:           "Night Elf",
		Faction:        FactionAlliance,
		StartZone:      "Teldrassil",
		AllowedClasses: []string{"Warrior", "Hunter", "Rogue", "Priest", "Druid"},
	},
	"Gnome": {
		Name:           "Gnome",
		Faction:        FactionAlliance,
		StartZone:      "Dun Morogh",
		AllowedClasses: []string{"Warrior", "Rogue", "Mage", "Warlock"},
	},
	"Orc": {
		Name:           "Orc",
		Faction:        FactionHorde,
		StartZone:      "Durotar",
		AllowedClasses: []string{"Warrior", "Hunter", "Rogue", "Shaman", "Warlock"},
	},
	"Undead": {
		Name:           "Undead",
		Faction:        FactionHorde,
		StartZone:      "Tirisfal Glades",
		AllowedClasses: []string{"Warrior", "Rogue", "Priest", "Mage", "Warlock"},
	},
	"Tauren": {
		Name:           "Tauren",
		Faction:        FactionHorde,
		StartZone:      "Mulgore",
		AllowedClasses: []string{"Warrior", "Hunter", "Shaman", "Druid"},
	},
	"Troll": {
		Name:           "Troll",
		Faction:        FactionHorde,
		StartZone:      "Durotar",
		AllowedClasses: []string{"Warrior", "Hunter", "Rogue", "Priest", "Shaman", "Mage"},
	},
}

var namePrefixes = map[string][]string{
	"Human":     {"Arn", "Thal", "Mar", "Gar", "Bren", "Var", "Ced", "Lor"},
	"Dwarf":     {"Bram", "Thor", "Mag", "Grim", "Dun", "Brog", "Kaz"},
	"Night Elf": {"Ilid", "Tyr", "Mal", "Shan", "Dorn", "Elun", "Tal"},
	"Gnome":     {"Fiz", "Giz", "Wiz", "Niz", "Tink", "Spark", "Cog"},
	"Orc":       {"Grom", "Thrall", "Gar", "Mog", "Drok", "Karg", "Zug"},
	"Undead":    {"Mort", "Grim", "Nec", "Shade", "Dark", "Bone", "Gore"},
	"Tauren":    {"Baine", "Mok", "Tahu", "Mah", "Kah", "Horn", "Bull"},
	"Troll":     {"Vol", "Zul", "Jin", "Rak", "Taz", "Voo", "Drak"},
}

var nameSuffixes = map[string][]string{
	"Human":     {"old", "ric", "wald", "mar", "ius", "en", "ron"},
	"Dwarf":     {"fist", "beard", "hammer", "stone", "iron", "forge"},
	"Night Elf": {"ande", "strasza", "dorei", "furion", "theron", "ion"},
	"Gnome":     {"sprocket", "wick", "blast", "bolt", "zap", "fizz"},
	"Orc":       {"osh", "mash", "tar", "gar", "krul", "thok"},
	"Undead":    {"us", "is", "ius", "rim", "mor", "death"},
	"Tauren":    {"hoof", "mane", "horn", "wind", "fury", "storm"},
	"Troll":     {"jin", "zar", "rak", "mon", "dar"},
}

// GenerateName produces a random character name in the style of the
// given race. Falls back to the Human pools for unknown races.
func GenerateName(race string) string {
	prefixes, ok := namePrefixes[race]
	if !ok {
		prefixes = namePrefixes["Human"]
	}
	suffixes, ok := nameSuffixes[race]
	if !ok {
		suffixes = nameSuffixes["Human"]
	}
	return prefixes[rand.IntN(len(prefixes))] + suffixes[rand.IntN(len(suffixes))]
}

// ClassAllowed reports whether the class is playable for the race.
func ClassAllowed(race, class string) bool {
	info, ok := Races[race]
	if !ok {
		return false
	}
	for _, c := range info.AllowedClasses {
		if c == class {
			return true
		}
	}
	return false
}
