package game

import "testing"

func TestCodeForTeamID(t *testing.T) {
	t.Parallel()

	code, ok := CodeForTeamID(1610612747)
	if !ok || code != "LAL" {
		t.Fatalf("expected LAL, got %q ok=%v", code, ok)
	}
	if _, ok := CodeForTeamID(42); ok {
		t.Fatal("unknown id must not resolve")
	}
}

func TestCodeForTeamName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Boston Celtics":         "BOS",
		"LA Clippers":            "LAC",
		"la lakers":              "LAL",
		"GOLDEN STATE":           "GSW",
		"Oklahoma City":          "OKC",
		"  Portland Trail Blazers ": "POR",
		"BKN":                    "BKN",
	}
	for name, want := range cases {
		got, ok := CodeForTeamName(name)
		if !ok || got != want {
			t.Errorf("CodeForTeamName(%q) = %q ok=%v, want %q", name, got, ok, want)
		}
	}

	if _, ok := CodeForTeamName("Seattle SuperSonics"); ok {
		t.Fatal("unrecognized name must return ok=false")
	}
	if _, ok := CodeForTeamName(""); ok {
		t.Fatal("empty name must return ok=false")
	}
}

func TestDegradedCode(t *testing.T) {
	t.Parallel()

	if got := DegradedCode("Seattle SuperSonics"); got != "SEA" {
		t.Fatalf("expected SEA, got %q", got)
	}
	if got := DegradedCode("ab"); got != "AB" {
		t.Fatalf("expected AB, got %q", got)
	}
}

func TestConferenceSplit(t *testing.T) {
	t.Parallel()

	east := 0
	for _, code := range KnownCodes() {
		if IsEasternConference(code) {
			east++
		}
	}
	if east != 15 {
		t.Fatalf("expected 15 eastern teams, got %d", east)
	}
	if len(KnownCodes()) != 30 {
		t.Fatalf("expected 30 teams, got %d", len(KnownCodes()))
	}
}

func TestHasFinalStatus(t *testing.T) {
	t.Parallel()

	if !HasFinalStatus("Final") || !HasFinalStatus("FINAL/OT") {
		t.Fatal("final statuses not detected")
	}
	if HasFinalStatus("7:30 pm ET") || HasFinalStatus("") {
		t.Fatal("non-final statuses misdetected")
	}
}
