package battle

// InRange returns the open, unoccupied tiles orthogonally adjacent to any live
// unit of the opponent of attacker.
func (b *Battle) InRange(attacker Faction) map[Position]bool {
	enemy := attacker.Opponent()
	tiles := make(map[Position]bool)
	for i := range b.units {
		u := &b.units[i]
		if u.Faction != enemy || !u.Alive() {
			continue
		}
		for _, p := range u.Position.Neighbors() {
			if b.passable(p) {
				tiles[p] = true
			}
		}
	}
	return tiles
}

// NextStep returns the tile unit id should step onto this turn.
//
// The destination is the nearest reachable in-range tile, ties broken by
// reading order. The step is the reading-order-first neighbor of the unit
// that lies on some shortest path to that destination.
//
// Precondition: id was issued by this battle and is alive.
// Postcondition: Returns (step, true) with step orthogonally adjacent to the
// unit, or (Position{}, false) if no in-range tile is reachable.
func (b *Battle) NextStep(id UnitID) (Position, bool) {
	origin := b.units[id].Position
	targets := b.InRange(b.units[id].Faction)
	if len(targets) == 0 {
		return Position{}, false
	}
	dest, dist, ok := b.nearest(origin, targets)
	if !ok {
		return Position{}, false
	}
	back := b.flood(dest, dist-1)
	for _, p := range origin.Neighbors() {
		if d, ok := back[p]; ok && d == dist-1 {
			return p, true
		}
	}
	return Position{}, false
}

// nearest runs a breadth-first search from origin over passable tiles and
// returns the reading-order-first target at the smallest distance.
func (b *Battle) nearest(origin Position, targets map[Position]bool) (Position, int, bool) {
	seen := map[Position]bool{origin: true}
	frontier := []Position{origin}
	for dist := 1; len(frontier) > 0; dist++ {
		var next []Position
		var (
			best  Position
			found bool
		)
		for _, from := range frontier {
			for _, p := range from.Neighbors() {
				if seen[p] || !b.passable(p) {
					continue
				}
				seen[p] = true
				next = append(next, p)
				if targets[p] && (!found || p.Less(best)) {
					best, found = p, true
				}
			}
		}
		if found {
			return best, dist, true
		}
		frontier = next
	}
	return Position{}, 0, false
}

// flood returns the distance from origin to every passable tile within limit
// steps. origin itself is at distance 0.
func (b *Battle) flood(origin Position, limit int) map[Position]int {
	dist := map[Position]int{origin: 0}
	frontier := []Position{origin}
	for d := 1; d <= limit && len(frontier) > 0; d++ {
		var next []Position
		for _, from := range frontier {
			for _, p := range from.Neighbors() {
				if _, ok := dist[p]; ok || !b.passable(p) {
					continue
				}
				dist[p] = d
				next = append(next, p)
			}
		}
		frontier = next
	}
	return dist
}
