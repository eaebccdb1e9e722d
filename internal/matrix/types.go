// Package matrix defines the payoff structures of the crisis game: the 14
// matrix kinds, their bounded state-delta templates, and the resolution of
// a simultaneous pair of choices into concrete deltas.
//
// This package is PURE domain logic. It performs no I/O, holds no mutable
// state, and never touches a GameState directly; it only reports what a
// turn's deltas should be.
package matrix

// Kind identifies one of the supported payoff matrices.
type Kind string

const (
	PrisonersDilemma  Kind = "prisoners_dilemma"
	Chicken           Kind = "chicken"
	StagHunt          Kind = "stag_hunt"
	Harmony           Kind = "harmony"
	Deadlock          Kind = "deadlock"
	BattleOfSexes     Kind = "battle_of_sexes"
	Leader            Kind = "leader"
	MatchingPennies   Kind = "matching_pennies"
	PureCoordination  Kind = "pure_coordination"
	SecurityDilemma   Kind = "security_dilemma"
	VolunteersDilemma Kind = "volunteers_dilemma"
	WarOfAttrition    Kind = "war_of_attrition"
	Reconnaissance    Kind = "reconnaissance"
	Inspection        Kind = "inspection"
)

// Kinds lists every supported matrix kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		PrisonersDilemma, Chicken, StagHunt, Harmony, Deadlock,
		BattleOfSexes, Leader, MatchingPennies, PureCoordination,
		SecurityDilemma, VolunteersDilemma, WarOfAttrition,
		Reconnaissance, Inspection,
	}
}

// Known reports whether k names a supported matrix kind.
func Known(k Kind) bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Choice is the type of a submitted action: every action is either
// cooperative or competitive for matrix purposes.
type Choice uint8

const (
	Cooperate Choice = iota
	Defect
)

func (c Choice) String() string {
	if c == Cooperate {
		return "cooperate"
	}
	return "defect"
}

// Outcome is the cell selected by a simultaneous pair of choices, side A
// first: "CD" means A cooperated and B defected.
type Outcome string

const (
	CC Outcome = "CC"
	CD Outcome = "CD"
	DC Outcome = "DC"
	DD Outcome = "DD"
)

// OutcomeOf maps a pair of choices to the matrix cell they select.
func OutcomeOf(a, b Choice) Outcome {
	switch {
	case a == Cooperate && b == Cooperate:
		return CC
	case a == Cooperate && b == Defect:
		return CD
	case a == Defect && b == Cooperate:
		return DC
	default:
		return DD
	}
}

// Outcomes lists the four cells in canonical order.
func Outcomes() []Outcome {
	return []Outcome{CC, CD, DC, DD}
}

// ChoiceA returns side A's choice encoded in the outcome.
func (o Outcome) ChoiceA() Choice {
	if o == CC || o == CD {
		return Cooperate
	}
	return Defect
}

// ChoiceB returns side B's choice encoded in the outcome.
func (o Outcome) ChoiceB() Choice {
	if o == CC || o == DC {
		return Cooperate
	}
	return Defect
}
