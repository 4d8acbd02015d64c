package engine

import "github.com/zyedidia/generic/mapset"

// RailCandidates is the fixed candidate list validOptions enumerates, in order
var RailCandidates = []TerrainKind{BridgeRail, CurveRail, MountainRail, StraightRail}

// forbidden maps existing terrain to the rail kinds that may never be placed over it.
// Every clause is an absolute veto, so lookup order does not matter.
var forbidden = map[TerrainKind]mapset.Set[TerrainKind]{
	Oasis:        railSet(BridgeRail, CurveRail, MountainRail, StraightRail),
	Bridge:       railSet(CurveRail, StraightRail, MountainRail),
	Mountain:     railSet(CurveRail, StraightRail, BridgeRail),
	CurveRail:    railSet(MountainRail, BridgeRail, CurveRail),
	StraightRail: railSet(MountainRail, BridgeRail, StraightRail),
	BridgeRail:   railSet(BridgeRail, CurveRail, MountainRail, StraightRail),
	MountainRail: railSet(BridgeRail, CurveRail, MountainRail, StraightRail),
	Empty:        railSet(MountainRail, BridgeRail),
}

func railSet(kinds ...TerrainKind) mapset.Set[TerrainKind] {
	s := mapset.New[TerrainKind]()
	for _, k := range kinds {
		s.Put(k)
	}
	return s
}

// CanPlace reports whether candidate may be placed over the existing terrain.
// Candidates that are not rail kinds are never placeable.
func CanPlace(candidate, existing TerrainKind) bool {
	if !candidate.IsRail() {
		return false
	}
	if vetoed, ok := forbidden[existing]; ok && vetoed.Has(candidate) {
		return false
	}
	return true
}

// ValidOptions returns the rail kinds that may be placed over terrain,
// in RailCandidates order.
func ValidOptions(terrain TerrainKind) []TerrainKind {
	var options []TerrainKind
	for _, candidate := range RailCandidates {
		if CanPlace(candidate, terrain) {
			options = append(options, candidate)
		}
	}
	return options
}
