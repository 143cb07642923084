package battle

import (
	"fmt"
	"strings"
)

// Faction is one of the two sides in a battle.
type Faction int

const (
	Elf Faction = iota
	Goblin
)

// Factions lists both factions in a fixed order.
var Factions = [2]Faction{Elf, Goblin}

// Opponent returns the opposing faction.
func (f Faction) Opponent() Faction {
	if f == Elf {
		return Goblin
	}
	return Elf
}

// Marker returns the board character for the faction.
func (f Faction) Marker() byte {
	if f == Elf {
		return 'E'
	}
	return 'G'
}

// String returns the lowercase faction name.
func (f Faction) String() string {
	switch f {
	case Elf:
		return "elf"
	case Goblin:
		return "goblin"
	default:
		return "unknown"
	}
}

// factionForMarker maps a board character to a faction.
func factionForMarker(c byte) (Faction, bool) {
	switch c {
	case 'E':
		return Elf, true
	case 'G':
		return Goblin, true
	}
	return 0, false
}

// ParseFaction converts a case-insensitive faction name into a Faction.
//
// Postcondition: Returns an error for any name other than "elf" or "goblin".
func ParseFaction(name string) (Faction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "elf":
		return Elf, nil
	case "goblin":
		return Goblin, nil
	}
	return 0, fmt.Errorf("unknown faction %q", name)
}

const (
	// DefaultHitPoints is the starting hit points of every unit.
	DefaultHitPoints = 200
	// DefaultAttackPower is the baseline attack power of both factions.
	DefaultAttackPower = 3
)

// Powers holds the attack power applied to every unit of each faction.
type Powers map[Faction]int

// DefaultPowers returns DefaultAttackPower for both factions.
func DefaultPowers() Powers {
	return Powers{Elf: DefaultAttackPower, Goblin: DefaultAttackPower}
}

// UnitID is a stable handle into a battle's unit arena.
type UnitID int

// Unit is one combatant. Dead units remain in the arena with HitPoints == 0.
type Unit struct {
	ID          UnitID
	Faction     Faction
	Position    Position
	HitPoints   int
	AttackPower int
}

// Alive reports whether the unit still has hit points.
func (u *Unit) Alive() bool { return u.HitPoints > 0 }

// ApplyDamage reduces HitPoints by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: HitPoints >= 0; returns true iff this call killed the unit.
func (u *Unit) ApplyDamage(amount int) bool {
	if !u.Alive() {
		return false
	}
	u.HitPoints -= amount
	if u.HitPoints <= 0 {
		u.HitPoints = 0
		return true
	}
	return false
}
