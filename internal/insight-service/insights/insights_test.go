package insights

import (
	"testing"

	"github.com/radieske/race-insight-platform/internal/insight-service/repo"
)

func TestTrainerIntentsLoneRunner(t *testing.T) {
	entries := []repo.RaceEntry{
		{RaceID: "r1", HorseID: "h1", HorseName: "Sea Mist", Trainer: "J Gosden", Course: "Ascot", Ensemble: 0.4},
		{RaceID: "r1", HorseID: "h2", HorseName: "Night Owl", Trainer: "A O'Brien", Course: "Ascot", Ensemble: 0.6},
		{RaceID: "r2", HorseID: "h3", HorseName: "Dawn Call", Trainer: "A O'Brien", Course: "Ascot", Ensemble: 0.2},
		{RaceID: "r3", HorseID: "h4", HorseName: "No Name", Trainer: "", Course: "Ascot"},
	}

	out := TrainerIntents(entries)
	if len(out) != 1 {
		t.Fatalf("expected 1 lone runner, got %d", len(out))
	}
	if out[0].Trainer != "J Gosden" || out[0].HorseID != "h1" {
		t.Errorf("unexpected intent: %+v", out[0])
	}
}

func TestTrainerIntentsSeparateMeetings(t *testing.T) {
	// mesmo treinador, reuniões diferentes: cada uma conta sozinha
	entries := []repo.RaceEntry{
		{RaceID: "r1", HorseID: "h1", Trainer: "J Gosden", Course: "Ascot", Ensemble: 0.1},
		{RaceID: "r2", HorseID: "h2", Trainer: "J Gosden", Course: "York", Ensemble: 0.9},
	}

	out := TrainerIntents(entries)
	if len(out) != 2 {
		t.Fatalf("expected 2 intents across meetings, got %d", len(out))
	}
	if out[0].HorseID != "h2" {
		t.Errorf("intents should be ordered by ensemble desc, got %+v", out[0])
	}
}

func TestCourseSpecialists(t *testing.T) {
	records := []repo.CourseRecord{
		{HorseID: "h1", Course: "Ascot", Runs: 4, Wins: 2},  // 50%
		{HorseID: "h2", Course: "Ascot", Runs: 2, Wins: 2},  // poucas corridas
		{HorseID: "h3", Course: "Ascot", Runs: 10, Wins: 2}, // 20%
		{HorseID: "h4", Course: "Ascot", Runs: 4, Wins: 1},  // 25% inclusivo
	}

	out := CourseSpecialists(records)
	if len(out) != 2 {
		t.Fatalf("expected 2 specialists, got %d", len(out))
	}
	if out[0].HorseID != "h1" || out[1].HorseID != "h4" {
		t.Errorf("unexpected ordering: %+v", out)
	}
	if out[1].StrikeRate != 0.25 {
		t.Errorf("strike rate boundary should be inclusive, got %v", out[1].StrikeRate)
	}
}

func TestCourses(t *testing.T) {
	entries := []repo.RaceEntry{
		{Course: "Ascot"}, {Course: "York"}, {Course: "Ascot"}, {Course: ""},
	}
	got := Courses(entries)
	if len(got) != 2 || got[0] != "Ascot" || got[1] != "York" {
		t.Errorf("Courses = %v", got)
	}
}
