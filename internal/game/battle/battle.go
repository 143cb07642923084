package battle

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// ErrStalemate is returned by Run when a full round changes nothing, so no
// later round can either.
var ErrStalemate = errors.New("battle: stalemate")

// State is the combat state machine.
type State int

const (
	Running State = iota
	Ended
)

// String returns a human-readable state label.
func (s State) String() string {
	if s == Ended {
		return "ended"
	}
	return "running"
}

// Option configures a Battle.
type Option func(*Battle)

// WithLogger sets the logger used for round and death events.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Battle) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Spawn is the initial placement of one unit.
type Spawn struct {
	Faction  Faction
	Position Position
}

// Battle is one combat simulation over a fixed grid.
// A Battle is not safe for concurrent use; run independent battles instead.
type Battle struct {
	grid     *Grid
	units    []Unit
	occupied *occupancy
	rounds   int
	state    State
	// changed records whether any unit moved or took damage this round.
	changed bool
	logger  *zap.Logger
}

// New places one unit per spawn on grid.
//
// Precondition: every spawn lies on an Open tile; no two spawns share a tile;
// hitPoints > 0; powers holds a positive value for both factions.
// Postcondition: Returns a Running battle whose unit IDs follow spawn order,
// or a non-nil error.
func New(grid *Grid, spawns []Spawn, hitPoints int, powers Powers, opts ...Option) (*Battle, error) {
	if hitPoints <= 0 {
		return nil, fmt.Errorf("hit points must be > 0, got %d", hitPoints)
	}
	for _, f := range Factions {
		if powers[f] <= 0 {
			return nil, fmt.Errorf("%s attack power must be > 0, got %d", f, powers[f])
		}
	}
	b := &Battle{
		grid:     grid,
		units:    make([]Unit, 0, len(spawns)),
		occupied: newOccupancy(len(spawns)),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	for i, s := range spawns {
		if !grid.Passable(s.Position) {
			return nil, fmt.Errorf("spawn %d at %s is not an open tile", i, s.Position)
		}
		if other, ok := b.occupied.get(s.Position); ok {
			return nil, fmt.Errorf("spawn %d at %s collides with spawn %d", i, s.Position, other)
		}
		id := UnitID(i)
		b.units = append(b.units, Unit{
			ID:          id,
			Faction:     s.Faction,
			Position:    s.Position,
			HitPoints:   hitPoints,
			AttackPower: powers[s.Faction],
		})
		b.occupied.insert(s.Position, id)
	}
	return b, nil
}

// Grid returns the battle's grid.
func (b *Battle) Grid() *Grid { return b.grid }

// Rounds returns the number of fully completed rounds.
func (b *Battle) Rounds() int { return b.rounds }

// State returns the current combat state.
func (b *Battle) State() State { return b.state }

// Unit returns a copy of the unit with the given handle.
//
// Precondition: id was issued by this battle.
func (b *Battle) Unit(id UnitID) Unit { return b.units[id] }

// Units returns a copy of every unit, dead ones included, in ID order.
func (b *Battle) Units() []Unit { return slices.Clone(b.units) }

// UnitAt returns the live unit standing on p.
func (b *Battle) UnitAt(p Position) (Unit, bool) {
	id, ok := b.occupied.get(p)
	if !ok {
		return Unit{}, false
	}
	return b.units[id], true
}

// SetHitPoints overrides a unit's hit points, removing it from play at 0.
// Used to stage mid-combat positions.
//
// Precondition: hp >= 0; the unit is alive.
func (b *Battle) SetHitPoints(id UnitID, hp int) {
	u := &b.units[id]
	if !u.Alive() {
		return
	}
	u.HitPoints = max(hp, 0)
	if !u.Alive() {
		b.occupied.remove(u.Position, id)
	}
}

// Living returns the number of live units in faction f.
func (b *Battle) Living(f Faction) int {
	n := 0
	for i := range b.units {
		if b.units[i].Faction == f && b.units[i].Alive() {
			n++
		}
	}
	return n
}

// eliminated reports whether fewer than two factions have live members.
func (b *Battle) eliminated() bool {
	return b.Living(Elf) == 0 || b.Living(Goblin) == 0
}

// passable reports whether p is Open and unoccupied.
func (b *Battle) passable(p Position) bool {
	if !b.grid.Passable(p) {
		return false
	}
	_, taken := b.occupied.get(p)
	return !taken
}

// turnOrder returns live unit handles sorted by current position in reading
// order.
func (b *Battle) turnOrder() []UnitID {
	order := make([]UnitID, 0, b.occupied.len())
	for i := range b.units {
		if b.units[i].Alive() {
			order = append(order, b.units[i].ID)
		}
	}
	slices.SortFunc(order, func(x, y UnitID) int {
		return comparePositions(b.units[x].Position, b.units[y].Position)
	})
	return order
}

// Turn executes one unit's turn: attack an adjacent enemy if there is one,
// otherwise step toward the nearest in-range tile and then attack if an
// enemy became adjacent. Dead units do nothing.
//
// Precondition: id was issued by this battle.
func (b *Battle) Turn(id UnitID) {
	u := &b.units[id]
	if !u.Alive() {
		return
	}
	target, ok := b.SelectTarget(id)
	if !ok {
		if step, moved := b.NextStep(id); moved {
			b.occupied.move(u.Position, step, id)
			u.Position = step
			b.changed = true
		}
		target, ok = b.SelectTarget(id)
	}
	if ok {
		b.attack(u, &b.units[target])
	}
}

func (b *Battle) attack(attacker, target *Unit) {
	b.changed = true
	if target.ApplyDamage(attacker.AttackPower) {
		b.occupied.remove(target.Position, target.ID)
		b.logger.Debug("unit killed",
			zap.Int("round", b.rounds+1),
			zap.String("faction", target.Faction.String()),
			zap.Int("unit", int(target.ID)),
			zap.Stringer("position", target.Position),
			zap.Int("killer", int(attacker.ID)),
		)
	}
}

// Round plays one round. Turn order is frozen at round start; a unit killed
// before its turn is skipped. Before each turn the battle ends if a faction
// has no live members, discarding the rest of the round.
//
// Postcondition: Rounds is incremented iff the round ran to completion.
func (b *Battle) Round() State {
	if b.state == Ended {
		return Ended
	}
	if b.eliminated() {
		b.state = Ended
		return Ended
	}
	b.changed = false
	for _, id := range b.turnOrder() {
		if !b.units[id].Alive() {
			continue
		}
		if b.eliminated() {
			b.state = Ended
			return Ended
		}
		b.Turn(id)
	}
	b.rounds++
	b.logger.Debug("round complete",
		zap.Int("round", b.rounds),
		zap.Int("elves", b.Living(Elf)),
		zap.Int("goblins", b.Living(Goblin)),
	)
	return Running
}

// Run plays rounds until one faction is eliminated.
//
// Postcondition: Returns the final Result, or ErrStalemate if a full round
// produced no movement and no damage while both factions were alive.
func (b *Battle) Run() (Result, error) {
	for b.Round() == Running {
		if !b.changed {
			return b.Result(), fmt.Errorf("after %d rounds: %w", b.rounds, ErrStalemate)
		}
	}
	return b.Result(), nil
}

// Result summarizes the battle as it stands.
type Result struct {
	// Rounds is the number of fully completed rounds.
	Rounds int
	// HitPoints is the sum of hit points over all live units.
	HitPoints int
	// Outcome is Rounds * HitPoints.
	Outcome int
	// Winner is the only faction with live members; meaningful once Ended.
	Winner    Faction
	Survivors map[Faction]int
	Losses    map[Faction]int
}

// Result computes the current Result.
func (b *Battle) Result() Result {
	r := Result{
		Rounds:    b.rounds,
		Survivors: make(map[Faction]int, len(Factions)),
		Losses:    make(map[Faction]int, len(Factions)),
	}
	for i := range b.units {
		u := &b.units[i]
		if u.Alive() {
			r.HitPoints += u.HitPoints
			r.Survivors[u.Faction]++
		} else {
			r.Losses[u.Faction]++
		}
	}
	r.Outcome = r.Rounds * r.HitPoints
	if r.Survivors[Elf] == 0 {
		r.Winner = Goblin
	} else {
		r.Winner = Elf
	}
	return r
}
