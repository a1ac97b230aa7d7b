package tournament

import (
	"errors"
	"slices"
	"testing"
)

func TestAliasTable(t *testing.T) {
	a := newAliasTable(2)
	if err := a.set("1A", ProgressR16, []string{"X", "Y"}); err != nil {
		t.Fatal(err)
	}
	if err := a.set("1A2B", ProgressQF, []string{"X", "Z"}); err != nil {
		t.Fatal(err)
	}
	if err := a.set("1A", ProgressR16, []string{"X", "Y"}); !errors.Is(err, ErrDuplicateAlias) {
		t.Errorf("duplicate key: got %v", err)
	}
	if err := a.set("2A", ProgressR16, []string{"X"}); err == nil {
		t.Error("expected error for short column")
	}

	if got := a.Keys(); !slices.Equal(got, []string{"1A", "1A2B"}) {
		t.Errorf("Keys = %v", got)
	}
	if teams, ok := a.Resolve("1A2B"); !ok || teams[1] != "Z" {
		t.Errorf("Resolve(1A2B) = %v, %v", teams, ok)
	}
	if _, ok := a.Resolve("2C"); ok {
		t.Error("unknown alias resolved")
	}

	if p, ok := a.Deepest("X", 0); !ok || p != ProgressQF {
		t.Errorf("Deepest(X, 0) = %s, %v", p, ok)
	}
	if p, ok := a.Deepest("Y", 1); !ok || p != ProgressR16 {
		t.Errorf("Deepest(Y, 1) = %s, %v", p, ok)
	}
	if a.Contains("Y", 0) {
		t.Error("Y is not in sample 0")
	}
}

func TestParseStage(t *testing.T) {
	for _, s := range []string{"Group", "R16", "QF", "SF", "F", " F "} {
		if _, err := ParseStage(s); err != nil {
			t.Errorf("ParseStage(%q): %v", s, err)
		}
	}
	if _, err := ParseStage("R32"); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("ParseStage(R32): %v", err)
	}
	if StageGroup.IsKnockout() || !StageFinal.IsKnockout() {
		t.Error("IsKnockout misclassifies stages")
	}
}

func TestProgressRank(t *testing.T) {
	for i := 1; i < len(ProgressOrder); i++ {
		if ProgressOrder[i].Rank() <= ProgressOrder[i-1].Rank() {
			t.Fatalf("%s should rank above %s", ProgressOrder[i], ProgressOrder[i-1])
		}
	}
	if Progress("X").Rank() != -1 {
		t.Error("unknown progress should rank -1")
	}
}
