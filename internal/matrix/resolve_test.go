package matrix

import (
	"math"
	"testing"

	"github.com/kuitang/brink-sub001/internal/params"
)

func almost(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestResolveMidpointActScaling(t *testing.T) {
	p := params.Defaults()
	tmpl, err := BuiltinTemplate(SecurityDilemma)
	if err != nil {
		t.Fatal(err)
	}
	cell := tmpl.Cell(CD)

	// Act I turn: everything scales by the early multiplier. CD has no
	// surplus risk adjustment, so the risk delta is purely the template's.
	res := Resolve(tmpl, Cooperate, Defect, nil, 1, 0, 0, p)
	if res.Outcome != CD {
		t.Fatalf("outcome = %s, want CD", res.Outcome)
	}
	almost(t, "DPosA", res.DPosA, cell.PosA.Mid()*p.ActEarlyMult)
	almost(t, "DPosB", res.DPosB, cell.PosB.Mid()*p.ActEarlyMult)
	almost(t, "DResA", res.DResA, -cell.ResCostA.Mid()*p.ActEarlyMult)
	almost(t, "DResB", res.DResB, -cell.ResCostB.Mid()*p.ActEarlyMult)
	almost(t, "DRisk", res.DRisk, cell.Risk.Mid()*p.ActEarlyMult)

	// Act III turn: late multiplier.
	late := Resolve(tmpl, Cooperate, Defect, nil, 9, 0, 0, p)
	almost(t, "late DPosA", late.DPosA, cell.PosA.Mid()*p.ActLateMult)
}

func TestResolveCCBuildsSurplus(t *testing.T) {
	p := params.Defaults()
	tmpl, err := BuiltinTemplate(PrisonersDilemma)
	if err != nil {
		t.Fatal(err)
	}

	res := Resolve(tmpl, Cooperate, Cooperate, nil, 5, 0, 0, p)
	almost(t, "SurplusAfter", res.SurplusAfter, p.CCSurplusBase)
	if res.StreakAfter != 1 {
		t.Errorf("StreakAfter = %d, want 1", res.StreakAfter)
	}
	almost(t, "CoopDelta", res.CoopDelta, 1)

	// Third consecutive CC: streak bonus scales with the prior streak.
	res = Resolve(tmpl, Cooperate, Cooperate, nil, 5, 2.0, 2, p)
	almost(t, "SurplusAfter", res.SurplusAfter, 2.0+p.CCSurplusBase+p.CCStreakBonus*2)
	if res.StreakAfter != 3 {
		t.Errorf("StreakAfter = %d, want 3", res.StreakAfter)
	}

	// CC risk relief applies on top of the act-scaled template delta.
	cell := tmpl.Cell(CC)
	almost(t, "DRisk", res.DRisk, cell.Risk.Mid()*p.ActMidMult-p.CCRiskReduction)
}

func TestResolveDefectionCapturesSurplus(t *testing.T) {
	p := params.Defaults()
	tmpl, err := BuiltinTemplate(PrisonersDilemma)
	if err != nil {
		t.Fatal(err)
	}

	// B defects against a 4.0 pool.
	res := Resolve(tmpl, Cooperate, Defect, nil, 5, 4.0, 3, p)
	almost(t, "CapturedB", res.CapturedB, 4.0*p.CaptureRate)
	almost(t, "CapturedA", res.CapturedA, 0)
	almost(t, "SurplusAfter", res.SurplusAfter, 4.0-4.0*p.CaptureRate)
	if res.StreakAfter != 0 {
		t.Errorf("streak not reset: %d", res.StreakAfter)
	}
	almost(t, "CoopDelta", res.CoopDelta, 0)

	// Mirror: A defects.
	res = Resolve(tmpl, Defect, Cooperate, nil, 5, 4.0, 3, p)
	almost(t, "CapturedA", res.CapturedA, 4.0*p.CaptureRate)
	almost(t, "CapturedB", res.CapturedB, 0)
}

func TestResolveMutualDefectionBurnsSurplus(t *testing.T) {
	p := params.Defaults()
	tmpl, err := BuiltinTemplate(PrisonersDilemma)
	if err != nil {
		t.Fatal(err)
	}

	res := Resolve(tmpl, Defect, Defect, nil, 5, 6.0, 0, p)
	almost(t, "SurplusAfter", res.SurplusAfter, 6.0-6.0*p.DDBurnRate)
	almost(t, "CapturedA", res.CapturedA, 0)
	almost(t, "CapturedB", res.CapturedB, 0)
	almost(t, "CoopDelta", res.CoopDelta, -1)

	cell := tmpl.Cell(DD)
	almost(t, "DRisk", res.DRisk, cell.Risk.Mid()*p.ActMidMult+p.DDRiskIncrease)
}

func TestResolvePinnedPoint(t *testing.T) {
	p := params.Defaults()
	tmpl, err := BuiltinTemplate(Chicken)
	if err != nil {
		t.Fatal(err)
	}
	cell := tmpl.Cell(DD)

	pt := Point{
		PosA:     cell.PosA.Min,
		PosB:     cell.PosB.Max,
		ResCostA: cell.ResCostA.Max,
		ResCostB: cell.ResCostB.Max,
		Risk:     cell.Risk.Max,
	}
	if err := CheckPoint(cell, pt); err != nil {
		t.Fatalf("test point invalid: %v", err)
	}

	res := Resolve(tmpl, Defect, Defect, &pt, 6, 0, 0, p)
	almost(t, "DPosA", res.DPosA, pt.PosA*p.ActMidMult)
	almost(t, "DRisk", res.DRisk, pt.Risk*p.ActMidMult+p.DDRiskIncrease)
	almost(t, "DResA", res.DResA, -pt.ResCostA*p.ActMidMult)
}
