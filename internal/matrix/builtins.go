// Built-in delta templates for the 14 supported matrix kinds.
//
// Conventions: position bounds are authored as transfers (what one side
// loses the other gains), so zero-sum holds by construction. "C" means the
// cooperative reading of each matrix (swerve in chicken, concede in war of
// attrition, comply in inspection, volunteer in volunteer's dilemma).
package matrix

import "fmt"

func bounds(lo, hi float64) Bounds { return Bounds{Min: lo, Max: hi} }

// cell builds a cell from a position transfer toward B (negative favors A),
// per-side resource costs, and a shared risk band.
func cell(posLo, posHi float64, costA, costB, riskLo, riskHi float64) Cell {
	return Cell{
		PosA:     bounds(-posHi, -posLo),
		PosB:     bounds(posLo, posHi),
		ResCostA: bounds(0, costA),
		ResCostB: bounds(0, costB),
		Risk:     bounds(riskLo, riskHi),
	}
}

// even builds a cell with no systematic position shift.
func even(costA, costB, riskLo, riskHi float64) Cell {
	return cell(0, 0, costA, costB, riskLo, riskHi)
}

// mirror swaps the two sides of a cell; DC cells are authored as the
// mirror of CD unless the matrix is genuinely asymmetric.
func mirror(c Cell) Cell {
	return Cell{
		PosA:     c.PosB,
		PosB:     c.PosA,
		ResCostA: c.ResCostB,
		ResCostB: c.ResCostA,
		Risk:     c.Risk,
	}
}

var builtins = buildBuiltins()

func buildBuiltins() map[Kind]Template {
	m := make(map[Kind]Template, 14)

	add := func(kind Kind, cc, cd, dd Cell) {
		t, err := NewTemplate(kind, cc, cd, mirror(cd), dd)
		if err != nil {
			panic(fmt.Sprintf("builtin template %s: %v", kind, err))
		}
		m[kind] = t
	}
	addAsym := func(kind Kind, cc, cd, dc, dd Cell) {
		t, err := NewTemplate(kind, cc, cd, dc, dd)
		if err != nil {
			panic(fmt.Sprintf("builtin template %s: %v", kind, err))
		}
		m[kind] = t
	}

	// Classic social dilemmas. CC creates no direct position shift (the
	// value goes to the cooperation surplus); CD transfers position to
	// the defector; DD burns resources and raises risk.
	add(PrisonersDilemma,
		even(0.2, 0.2, -0.5, -0.1),
		cell(0.6, 1.0, 0.3, 0.1, 0.2, 0.6),
		even(0.6, 0.6, 0.8, 1.4))

	// Brinkmanship: swerving costs little, a collision is catastrophic.
	add(Chicken,
		even(0.1, 0.1, -0.6, -0.2),
		cell(0.3, 0.5, 0.1, 0.2, 0.0, 0.2),
		even(0.8, 0.8, 1.4, 2.0))

	// Joint venture: defecting alone strands the cooperator.
	add(StagHunt,
		even(0.1, 0.1, -0.6, -0.2),
		cell(0.4, 0.8, 0.4, 0.1, 0.0, 0.3),
		even(0.2, 0.2, 0.1, 0.3))

	// Aligned interests: defection is strictly worse for everyone.
	add(Harmony,
		even(0.1, 0.1, -1.0, -0.6),
		cell(0.1, 0.3, 0.1, 0.2, 0.0, 0.2),
		even(0.3, 0.3, 0.3, 0.7))

	// Both prefer mutual defection to being the lone cooperator.
	add(Deadlock,
		even(0.1, 0.1, -0.2, 0.0),
		cell(0.2, 0.6, 0.2, 0.1, 0.1, 0.4),
		even(0.3, 0.3, 0.4, 0.8))

	// Coordination with conflicting preferences over which equilibrium.
	add(BattleOfSexes,
		even(0.1, 0.1, -0.4, -0.2),
		cell(0.2, 0.4, 0.2, 0.1, 0.1, 0.3),
		even(0.3, 0.3, 0.5, 0.9))

	// One side must move first; both moving means a clash.
	add(Leader,
		even(0.2, 0.2, 0.2, 0.4),
		cell(0.3, 0.5, 0.1, 0.1, 0.0, 0.2),
		even(0.5, 0.5, 1.0, 1.6))

	// Pure conflict: A wants to match, B wants to mismatch.
	addAsym(MatchingPennies,
		Cell{PosA: bounds(0.3, 0.7), PosB: bounds(-0.7, -0.3),
			ResCostA: bounds(0, 0.1), ResCostB: bounds(0, 0.1), Risk: bounds(0.0, 0.2)},
		Cell{PosA: bounds(-0.7, -0.3), PosB: bounds(0.3, 0.7),
			ResCostA: bounds(0, 0.1), ResCostB: bounds(0, 0.1), Risk: bounds(0.0, 0.2)},
		Cell{PosA: bounds(-0.7, -0.3), PosB: bounds(0.3, 0.7),
			ResCostA: bounds(0, 0.1), ResCostB: bounds(0, 0.1), Risk: bounds(0.0, 0.2)},
		Cell{PosA: bounds(0.3, 0.7), PosB: bounds(-0.7, -0.3),
			ResCostA: bounds(0, 0.1), ResCostB: bounds(0, 0.1), Risk: bounds(0.0, 0.2)})

	// Either matched pair is fine; miscoordination wastes effort.
	addAsym(PureCoordination,
		even(0.1, 0.1, -0.8, -0.4),
		even(0.4, 0.4, 0.2, 0.4),
		even(0.4, 0.4, 0.2, 0.4),
		even(0.1, 0.1, -0.8, -0.4))

	// Defensive buildup read as hostile: lone restraint is exposed.
	add(SecurityDilemma,
		even(0.2, 0.2, -0.6, -0.2),
		cell(0.8, 1.2, 0.2, 0.3, 0.3, 0.7),
		even(0.5, 0.5, 1.0, 1.6))

	// Somebody has to absorb the cost; nobody volunteering is the disaster.
	add(VolunteersDilemma,
		even(0.4, 0.4, -0.8, -0.4),
		cell(0.2, 0.4, 0.6, 0.0, -0.6, -0.2),
		even(0.1, 0.1, 1.2, 1.8))

	// Holding out bleeds resources; conceding cedes position.
	add(WarOfAttrition,
		even(0.1, 0.1, -0.4, -0.2),
		cell(0.4, 0.8, 0.1, 0.2, -0.2, 0.0),
		even(0.9, 0.9, 0.6, 1.0))

	// Intelligence exchange vs one-sided probing.
	add(Reconnaissance,
		even(0.2, 0.2, -0.4, -0.2),
		cell(0.1, 0.3, 0.1, 0.2, 0.1, 0.3),
		even(0.3, 0.3, 0.4, 0.8))

	// Verification regime: cheating while the other complies pays.
	add(Inspection,
		even(0.1, 0.1, -0.6, -0.2),
		cell(0.4, 0.6, 0.2, 0.1, 0.2, 0.4),
		even(0.2, 0.2, 0.8, 1.2))

	return m
}

// BuiltinTemplate returns the validated built-in template for a kind.
func BuiltinTemplate(kind Kind) (Template, error) {
	t, ok := builtins[kind]
	if !ok {
		return Template{}, fmt.Errorf("no builtin template for matrix kind %q", kind)
	}
	return t, nil
}
