package battle

import "fmt"

// occupancy maps the position of every live unit to its handle.
//
// Invariant: bijective over live units. Violations are programming errors
// and panic.
type occupancy struct {
	byPos map[Position]UnitID
}

func newOccupancy(size int) *occupancy {
	return &occupancy{byPos: make(map[Position]UnitID, size)}
}

func (o *occupancy) get(p Position) (UnitID, bool) {
	id, ok := o.byPos[p]
	return id, ok
}

func (o *occupancy) insert(p Position, id UnitID) {
	if prev, ok := o.byPos[p]; ok {
		panic(fmt.Sprintf("battle: %s already occupied by unit %d", p, prev))
	}
	o.byPos[p] = id
}

func (o *occupancy) remove(p Position, id UnitID) {
	got, ok := o.byPos[p]
	if !ok || got != id {
		panic(fmt.Sprintf("battle: unit %d not indexed at %s", id, p))
	}
	delete(o.byPos, p)
}

func (o *occupancy) move(from, to Position, id UnitID) {
	o.remove(from, id)
	o.insert(to, id)
}

func (o *occupancy) len() int { return len(o.byPos) }
