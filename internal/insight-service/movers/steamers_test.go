package movers

import (
	"testing"
)

func TestDeriveSteamersFiltersDirectionAndThreshold(t *testing.T) {
	changes := []Change{
		{RaceID: "r1", HorseID: "h1", Direction: "out", ChangePct: -50, InitialPrice: 4, CurrentPrice: 8},
		{RaceID: "r1", HorseID: "h2", Direction: "in", ChangePct: -9.99, InitialPrice: 4, CurrentPrice: 3.8},
		{RaceID: "r1", HorseID: "h3", Direction: "in", ChangePct: -10.0, InitialPrice: 5, CurrentPrice: 4.5},
	}

	out := DeriveSteamers(changes)
	if len(out) != 1 {
		t.Fatalf("expected 1 steamer, got %d", len(out))
	}
	if out[0].HorseID != "h3" {
		t.Errorf("expected h3 (inclusive 10%% boundary), got %s", out[0].HorseID)
	}
	if out[0].OddsMovementPct != 10.0 {
		t.Errorf("movement pct: got %v want 10.0", out[0].OddsMovementPct)
	}
}

func TestDeriveSteamersDeduplicates(t *testing.T) {
	changes := []Change{
		{RaceID: "r1", HorseID: "h1", HorseName: "Sea Mist", Course: "Ascot", OffTime: "2:30",
			Direction: "in", ChangePct: -12, InitialPrice: 6.0, CurrentPrice: 5.0},
		{RaceID: "r1", HorseID: "h1", HorseName: "Sea Mist", Course: "Ascot", OffTime: "2:30",
			Direction: "in", ChangePct: -18, InitialPrice: 6.0, CurrentPrice: 4.5},
	}

	out := DeriveSteamers(changes)
	if len(out) != 1 {
		t.Fatalf("expected 1 deduplicated steamer, got %d", len(out))
	}
	s := out[0]
	if s.TotalMovements != 2 {
		t.Errorf("total_movements: got %d want 2", s.TotalMovements)
	}
	if s.OddsMovementPct != 18 {
		t.Errorf("odds_movement_pct should be the running max, got %v", s.OddsMovementPct)
	}
	if s.CurrentOdds != 4.5 {
		t.Errorf("current odds should follow the latest change, got %v", s.CurrentOdds)
	}
	if s.InitialOdds != 6.0 {
		t.Errorf("initial odds should come from the seeding change, got %v", s.InitialOdds)
	}
	if s.FractionalOdds != "7/2" {
		t.Errorf("fractional display should be recomputed, got %q", s.FractionalOdds)
	}
}

func TestToFractional(t *testing.T) {
	cases := []struct {
		decimal float64
		want    string
	}{
		{5.0, "4/1"},
		{3.5, "5/2"},
		{1.0, "EVS"},
		{0.8, "EVS"},
		{2.0, "EVS"},
		{4.33, "100/30"},
		{23.0, "22/1"}, // fora da escada e da tolerância
	}
	for _, c := range cases {
		if got := ToFractional(c.decimal); got != c.want {
			t.Errorf("ToFractional(%v) = %q, want %q", c.decimal, got, c.want)
		}
	}
}

func TestGroupByRaceOrdering(t *testing.T) {
	steamers := []Steamer{
		{RaceID: "r3", HorseID: "h3", Course: "York", OffTime: "4:10"},
		{RaceID: "r1", HorseID: "h1", Course: "Ascot", OffTime: "2:30"},
		{RaceID: "r2", HorseID: "h2", Course: "Ascot", OffTime: "11:45"},
		{RaceID: "r1", HorseID: "h4", Course: "Ascot", OffTime: "2:30"},
	}

	groups := GroupByRace(steamers)
	if len(groups) != 3 {
		t.Fatalf("expected 3 race groups, got %d", len(groups))
	}

	// 11:45 fica como manhã; 2:30 e 4:10 viram 14:30 e 16:10
	if groups[0].OffTime != "11:45" || groups[1].OffTime != "2:30" || groups[2].OffTime != "4:10" {
		t.Errorf("unexpected race order: %s, %s, %s",
			groups[0].OffTime, groups[1].OffTime, groups[2].OffTime)
	}
	if len(groups[1].Steamers) != 2 {
		t.Errorf("Ascot 2:30 should hold 2 steamers, got %d", len(groups[1].Steamers))
	}
}

func TestRaceClockMinutes(t *testing.T) {
	cases := []struct {
		off  string
		want int
	}{
		{"2:30", 14*60 + 30}, // heurística PM
		{"9:05", 21*60 + 5},
		{"10:15", 10*60 + 15}, // 10-12 ficam como estão
		{"12:00", 12 * 60},
		{"14:30", 14*60 + 30}, // entrada já em 24h passa direto
		{"garbage", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := RaceClockMinutes(c.off); got != c.want {
			t.Errorf("RaceClockMinutes(%q) = %d, want %d", c.off, got, c.want)
		}
	}
}

func TestIsUpcoming(t *testing.T) {
	now := 15 * 60 // 15:00
	if !IsUpcoming("3:30", now) {
		t.Error("3:30 (15:30 heurístico) should be upcoming at 15:00")
	}
	if IsUpcoming("2:30", now) {
		t.Error("2:30 (14:30 heurístico) should be past at 15:00")
	}
}
