// Package zone maps world coordinates to named zones and their points
// of interest, and derives the manual actions available at a location.
package zone

import (
	"sort"

	"github.com/rathgar/idlebot/internal/model"
)

// POIType classifies a point of interest.
type POIType string

const (
	POIInn               POIType = "inn"
	POIVendor            POIType = "vendor"
	POIClassTrainer      POIType = "class-trainer"
	POIProfessionTrainer POIType = "profession-trainer"
	POIFlightMaster      POIType = "flight-master"
)

// Bounds is an axis-aligned rectangle in world coordinates.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Contains reports whether the point lies inside the rectangle.
func (b Bounds) Contains(p model.Position) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

func (b Bounds) area() float64 {
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// Zone is one named region of a map.
type Zone struct {
	ID     int32
	Name   string
	Map    int32
	Bounds Bounds
}

// POI is a named world location the bot can be sent to.
type POI struct {
	Name     string
	Type     POIType
	ZoneID   int32
	Position model.Position
}

// Action is one manual command the presentation layer may issue.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Registry answers zone and POI queries over a fixed world model.
type Registry struct {
	zones []Zone
	pois  []POI
}

// NewRegistry builds the registry over the built-in world model.
func NewRegistry() *Registry {
	return NewRegistryWith(defaultZones, defaultPOIs)
}

// NewRegistryWith builds a registry over caller-supplied data.
func NewRegistryWith(zones []Zone, pois []POI) *Registry {
	return &Registry{zones: zones, pois: pois}
}

// CurrentZone returns the zone containing the position. Overlapping
// zones resolve to the smallest one, so towns win over their parent
// region. Nil outside every known zone.
func (r *Registry) CurrentZone(p model.Position) *Zone {
	var best *Zone
	for i := range r.zones {
		z := &r.zones[i]
		if z.Map != p.Map || !z.Bounds.Contains(p) {
			continue
		}
		if best == nil || z.Bounds.area() < best.Bounds.area() {
			best = z
		}
	}
	return best
}

// POIsInZone lists every POI registered to the zone.
func (r *Registry) POIsInZone(zoneID int32) []POI {
	var out []POI
	for _, poi := range r.pois {
		if poi.ZoneID == zoneID {
			out = append(out, poi)
		}
	}
	return out
}

// POIsByType lists every POI of one type in the zone.
func (r *Registry) POIsByType(zoneID int32, t POIType) []POI {
	var out []POI
	for _, poi := range r.pois {
		if poi.ZoneID == zoneID && poi.Type == t {
			out = append(out, poi)
		}
	}
	return out
}

// NearestPOI returns the closest POI of the type in the zone
// containing the position. Nil when the position is outside every
// known zone or the zone has no POI of that type.
func (r *Registry) NearestPOI(p model.Position, t POIType) *POI {
	z := r.CurrentZone(p)
	if z == nil {
		return nil
	}
	candidates := make([]POI, 0, 4)
	for _, poi := range r.pois {
		if poi.ZoneID == z.ID && poi.Type == t {
			candidates = append(candidates, poi)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return p.Distance(candidates[i].Position) < p.Distance(candidates[j].Position)
	})
	return &candidates[0]
}

// AvailableActions derives the manual actions at a position. Farming
// and quest handling are always offered; travel actions appear only
// when the current zone has a matching POI.
func (r *Registry) AvailableActions(p model.Position) []Action {
	actions := []Action{
		{ID: "farm-nearby-mobs", Label: "Farm nearby mobs"},
		{ID: "handle-quests", Label: "Handle quests"},
	}
	travel := []struct {
		id    string
		label string
		t     POIType
	}{
		{"go-to-inn", "Go to the inn", POIInn},
		{"go-to-vendor", "Go to a vendor", POIVendor},
		{"go-to-class-trainer", "Go to the class trainer", POIClassTrainer},
		{"go-to-profession-trainer", "Go to a profession trainer", POIProfessionTrainer},
	}
	for _, tr := range travel {
		if r.NearestPOI(p, tr.t) != nil {
			actions = append(actions, Action{ID: tr.id, Label: tr.label})
		}
	}
	return actions
}

// Info bundles the zone of a position with its POIs for display.
type Info struct {
	Zone *Zone
	POIs []POI
}

// ZoneInfo returns the display bundle for a position.
func (r *Registry) ZoneInfo(p model.Position) Info {
	z := r.CurrentZone(p)
	if z == nil {
		return Info{}
	}
	return Info{Zone: z, POIs: r.POIsInZone(z.ID)}
}

// Built-in world model for the human starting experience. Bounds are
// coarse rectangles, good enough to label the bot's position.
var defaultZones = []Zone{
	{ID: 9, Name: "Northshire Valley", Map: 0, Bounds: Bounds{MinX: -8960, MaxX: -8640, MinY: -240, MaxY: 0}},
	{ID: 12, Name: "Elwynn Forest", Map: 0, Bounds: Bounds{MinX: -9530, MaxX: -8970, MinY: -1440, MaxY: 960}},
	{ID: 1519, Name: "Stormwind City", Map: 0, Bounds: Bounds{MinX: -9100, MaxX: -8300, MinY: 300, MaxY: 1200}},
	{ID: 85, Name: "Goldshire", Map: 0, Bounds: Bounds{MinX: -9530, MaxX: -9400, MinY: 0, MaxY: 150}},
}

var defaultPOIs = []POI{
	{Name: "Northshire Abbey", Type: POIClassTrainer, ZoneID: 9, Position: model.Position{X: -8913, Y: -133, Z: 81, Map: 0}},
	{Name: "Brother Danil", Type: POIVendor, ZoneID: 9, Position: model.Position{X: -8920, Y: -130, Z: 81, Map: 0}},
	{Name: "Lion's Pride Inn", Type: POIInn, ZoneID: 85, Position: model.Position{X: -9459, Y: 42, Z: 57, Map: 0}},
	{Name: "Smith Argus", Type: POIProfessionTrainer, ZoneID: 85, Position: model.Position{X: -9454, Y: 86, Z: 58, Map: 0}},
	{Name: "Corina Steele", Type: POIVendor, ZoneID: 85, Position: model.Position{X: -9462, Y: 38, Z: 57, Map: 0}},
	{Name: "Gryphon Roost", Type: POIFlightMaster, ZoneID: 1519, Position: model.Position{X: -8837, Y: 494, Z: 109, Map: 0}},
}
