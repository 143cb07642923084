package battle

// SelectTarget returns the adjacent enemy of unit id with the fewest hit
// points, ties broken by reading order of position.
//
// Precondition: id was issued by this battle.
// Postcondition: Returns (target, true) for a live enemy adjacent to id, or
// (0, false) if there is none. No state is modified.
func (b *Battle) SelectTarget(id UnitID) (UnitID, bool) {
	u := &b.units[id]
	enemy := u.Faction.Opponent()
	var (
		best  UnitID
		found bool
	)
	// Neighbors are in reading order, so a strict comparison keeps the
	// earliest of equally weak enemies.
	for _, p := range u.Position.Neighbors() {
		oid, ok := b.occupied.get(p)
		if !ok || b.units[oid].Faction != enemy {
			continue
		}
		if !found || b.units[oid].HitPoints < b.units[best].HitPoints {
			best, found = oid, true
		}
	}
	return best, found
}
