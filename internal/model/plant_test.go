package model

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestComputeDaysGrowing(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	plant := Plant{PlantedDate: now.AddDate(0, 0, -10)}
	plant.DaysGrowing = 999 // stale stored value must be overwritten
	plant.ComputeDaysGrowing(now)
	if plant.DaysGrowing != 10 {
		t.Fatalf("expected 10 days growing, got %d", plant.DaysGrowing)
	}

	// Partial days floor down
	plant = Plant{PlantedDate: now.Add(-36 * time.Hour)}
	plant.ComputeDaysGrowing(now)
	if plant.DaysGrowing != 1 {
		t.Fatalf("expected 1 day growing for 36h, got %d", plant.DaysGrowing)
	}

	// Zero planted date leaves the value untouched
	plant = Plant{DaysGrowing: 5}
	plant.ComputeDaysGrowing(now)
	if plant.DaysGrowing != 5 {
		t.Fatalf("expected untouched value 5, got %d", plant.DaysGrowing)
	}
}

func TestClampHealth(t *testing.T) {
	plant := Plant{Health: 150}
	plant.ClampHealth()
	if plant.Health != 100 {
		t.Fatalf("expected health clamped to 100, got %d", plant.Health)
	}

	plant.Health = -20
	plant.ClampHealth()
	if plant.Health != 0 {
		t.Fatalf("expected health clamped to 0, got %d", plant.Health)
	}

	plant.Health = 73
	plant.ClampHealth()
	if plant.Health != 73 {
		t.Fatalf("expected health unchanged at 73, got %d", plant.Health)
	}
}

func TestAppendNote(t *testing.T) {
	now := time.Now()
	plant := Plant{}

	plant.AppendNote(now, "first leaves", "")
	plant.AppendNote(now.Add(time.Hour), "aphids on stem", NoteIssue)

	notes := []PlantNote(plant.Notes)
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Type != NoteObservation {
		t.Fatalf("expected default note type %q, got %q", NoteObservation, notes[0].Type)
	}
	if notes[0].Content != "first leaves" || notes[1].Content != "aphids on stem" {
		t.Fatalf("notes out of order: %+v", notes)
	}
	if !notes[1].Date.After(notes[0].Date) {
		t.Fatalf("expected notes to keep insertion order")
	}
}

func TestAppendHarvestDefaultsDate(t *testing.T) {
	now := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	plant := Plant{}

	plant.AppendHarvest(now, HarvestEntry{Quantity: 2, Unit: "kg", Quality: "good"})
	entries := []HarvestEntry(plant.HarvestLog)
	if len(entries) != 1 {
		t.Fatalf("expected 1 harvest entry, got %d", len(entries))
	}
	if !entries[0].Date.Equal(now) {
		t.Fatalf("expected harvest date defaulted to now, got %v", entries[0].Date)
	}

	explicit := now.AddDate(0, 0, -1)
	plant.AppendHarvest(now, HarvestEntry{Date: explicit, Quantity: 1, Unit: "kg"})
	entries = []HarvestEntry(plant.HarvestLog)
	if !entries[1].Date.Equal(explicit) {
		t.Fatalf("expected explicit harvest date kept, got %v", entries[1].Date)
	}
}

func TestMergeCareSchedule(t *testing.T) {
	lastWatered := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	plant := Plant{
		CareSchedule: datatypes.NewJSONType(CareSchedule{
			Watering:    WateringSchedule{Frequency: "daily", LastWatered: &lastWatered},
			Fertilizing: FertilizingSchedule{Frequency: "monthly"},
			Pruning:     PruningSchedule{Frequency: "weekly"},
		}),
	}

	newFreq := "every 2 days"
	nextWatering := time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)
	plant.MergeCareSchedule(CareScheduleUpdate{
		Watering: &WateringUpdate{
			Frequency:    &newFreq,
			NextWatering: &nextWatering,
		},
	})

	cs := plant.CareSchedule.Data()
	if cs.Watering.Frequency != "every 2 days" {
		t.Fatalf("expected supplied frequency to overwrite, got %q", cs.Watering.Frequency)
	}
	if cs.Watering.LastWatered == nil || !cs.Watering.LastWatered.Equal(lastWatered) {
		t.Fatalf("expected omitted lastWatered to persist, got %v", cs.Watering.LastWatered)
	}
	if cs.Watering.NextWatering == nil || !cs.Watering.NextWatering.Equal(nextWatering) {
		t.Fatalf("expected nextWatering to be set, got %v", cs.Watering.NextWatering)
	}
	if cs.Fertilizing.Frequency != "monthly" {
		t.Fatalf("expected absent fertilizing sub-object untouched, got %q", cs.Fertilizing.Frequency)
	}
	if cs.Pruning.Frequency != "weekly" {
		t.Fatalf("expected absent pruning sub-object untouched, got %q", cs.Pruning.Frequency)
	}
}
