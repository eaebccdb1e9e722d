package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kuitang/brink-sub001/internal/matrix"
)

func TestDefaultScenarioIsValid(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("builtin scenario invalid: %v", err)
	}
	if len(s.Schedule) < 10 {
		t.Errorf("builtin schedule has only %d turns", len(s.Schedule))
	}

	// Both readings must be coverable with the no-cost opener available.
	var hold *ActionSpec
	for i := range s.Actions {
		if s.Actions[i].Name == "hold_position" {
			hold = &s.Actions[i]
		}
	}
	if hold == nil || hold.Cost != 0 {
		t.Errorf("hold_position missing or not free: %+v", hold)
	}
}

const validYAML = `
name: border_dispute
description: A short test scenario.
start:
  position_a: 6
  position_b: 4
  risk: 3
schedule:
  - matrix: stag_hunt
  - matrix: chicken
    points:
      DD:
        pos_a: 0
        pos_b: 0
        res_cost_a: 0.8
        res_cost_b: 0.8
        risk: 1.5
actions:
  - name: hold
    type: cooperative
    category: standard
  - name: push
    type: competitive
    category: standard
    cost: 0.4
`

func TestParseYAML(t *testing.T) {
	s, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "border_dispute" {
		t.Errorf("name = %q", s.Name)
	}
	if s.Start.PositionA == nil || *s.Start.PositionA != 6 {
		t.Errorf("start position_a = %v", s.Start.PositionA)
	}
	if s.Start.Risk == nil || *s.Start.Risk != 3 {
		t.Errorf("start risk = %v", s.Start.Risk)
	}
	if s.Start.Stability != nil {
		t.Errorf("unset start stability decoded as %v", *s.Start.Stability)
	}
	pt, ok := s.Schedule[1].Points[matrix.DD]
	if !ok || pt.Risk != 1.5 {
		t.Errorf("pinned DD point = %+v, %v", pt, ok)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scn.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Actions) != 2 {
		t.Errorf("actions = %d, want 2", len(s.Actions))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("loading a missing file succeeded")
	}
}

func TestValidateRejections(t *testing.T) {
	base := func() *Scenario {
		s, err := Parse([]byte(validYAML))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		return s
	}

	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantMsg string
	}{
		{"empty name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"empty schedule", func(s *Scenario) { s.Schedule = nil }, "schedule is empty"},
		{"unknown matrix", func(s *Scenario) { s.Schedule[0].Matrix = "poker" }, "unknown matrix"},
		{"point outside bounds", func(s *Scenario) {
			s.Schedule[0].Points = map[matrix.Outcome]matrix.Point{
				matrix.CC: {Risk: 5},
			}
		}, "outside bounds"},
		{"unknown outcome key", func(s *Scenario) {
			s.Schedule[0].Points = map[matrix.Outcome]matrix.Point{"XX": {}}
		}, "unknown outcome"},
		{"no actions", func(s *Scenario) { s.Actions = nil }, "no actions"},
		{"duplicate action", func(s *Scenario) {
			s.Actions = append(s.Actions, s.Actions[0])
		}, "duplicate action"},
		{"bad action type", func(s *Scenario) { s.Actions[0].Type = "aggressive" }, "type must be"},
		{"bad category", func(s *Scenario) { s.Actions[0].Category = "sneaky" }, "unknown category"},
		{"negative cost", func(s *Scenario) { s.Actions[0].Cost = -1 }, "cost"},
		{"inverted risk window", func(s *Scenario) {
			s.Actions[0].MinRisk = 8
			s.Actions[0].MaxRisk = 2
		}, "risk window"},
		{"start out of range", func(s *Scenario) { s.Start.PositionA = fptr(12) }, "outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("validation passed")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %q, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestTurnSpecForRepeatsLastEntry(t *testing.T) {
	s, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := s.TurnSpecFor(1).Matrix; got != matrix.StagHunt {
		t.Errorf("turn 1 = %s", got)
	}
	if got := s.TurnSpecFor(2).Matrix; got != matrix.Chicken {
		t.Errorf("turn 2 = %s", got)
	}
	for _, turn := range []int{3, 50} {
		if got := s.TurnSpecFor(turn).Matrix; got != matrix.Chicken {
			t.Errorf("turn %d = %s, want last entry repeated", turn, got)
		}
	}
	if got := s.TurnSpecFor(0).Matrix; got != matrix.StagHunt {
		t.Errorf("clamped turn 0 = %s", got)
	}
}

func TestParseJSON(t *testing.T) {
	valid := `{
		"name": "upload",
		"schedule": [{"matrix": "harmony"}],
		"actions": [
			{"name": "hold", "type": "cooperative", "category": "standard"},
			{"name": "push", "type": "competitive", "category": "standard", "cost": 0.5}
		]
	}`
	s, err := ParseJSON([]byte(valid))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if s.Name != "upload" || len(s.Actions) != 2 {
		t.Errorf("decoded %+v", s)
	}

	rejections := []struct {
		name string
		doc  string
	}{
		{"not json", `{"name":`},
		{"missing required", `{"name": "x"}`},
		{"unknown top-level field", `{
			"name": "x", "author": "y",
			"schedule": [{"matrix": "harmony"}],
			"actions": [{"name": "a", "type": "cooperative", "category": "standard"}]
		}`},
		{"bad action type enum", `{
			"name": "x",
			"schedule": [{"matrix": "harmony"}],
			"actions": [{"name": "a", "type": "bold", "category": "standard"}]
		}`},
		{"bad points key", `{
			"name": "x",
			"schedule": [{"matrix": "harmony", "points": {"XY": {"risk": 0}}}],
			"actions": [{"name": "a", "type": "cooperative", "category": "standard"}]
		}`},
		{"semantically invalid matrix", `{
			"name": "x",
			"schedule": [{"matrix": "poker"}],
			"actions": [{"name": "a", "type": "cooperative", "category": "standard"}]
		}`},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(tt.doc)); err == nil {
				t.Error("invalid document accepted")
			}
		})
	}
}
