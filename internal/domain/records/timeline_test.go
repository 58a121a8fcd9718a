package records_test

import (
	"context"
	"testing"
	"time"

	"petrecord/internal/adapters/storage/memory"
	"petrecord/internal/domain/records"
)

func TestTimelineMergesAndSortsDescending(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRecordsRepo()
	svc := records.NewService(repo)

	petID := "pet-1"
	day := func(d int) time.Time {
		return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
	}

	if err := repo.AddLabResult(ctx, records.LabResult{
		ID: "lab-1", PetID: petID, PanelName: "Chemistry Panel",
		CollectionDate: day(10),
		Results:        []records.LabValue{{Test: "BUN", Value: "18"}},
	}); err != nil {
		t.Fatalf("add lab: %v", err)
	}
	if err := repo.AddMedicalRecord(ctx, records.MedicalRecord{
		ID: "rec-1", PetID: petID, RecordType: "CONSULTATION",
		DateOfService: day(15), VisitSummary: "Annual exam",
	}); err != nil {
		t.Fatalf("add record: %v", err)
	}
	if err := repo.AddVaccination(ctx, records.Vaccination{
		ID: "vac-1", PetID: petID, VaccineName: "Rabies",
		AdministrationDate: day(20),
	}); err != nil {
		t.Fatalf("add vaccination: %v", err)
	}

	events, err := svc.Timeline(ctx, petID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	wantTypes := []string{"vaccination", "record", "lab"}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Fatalf("event %d: expected type %q, got %q", i, want, events[i].Type)
		}
	}
	for i := 1; i < len(events); i++ {
		if events[i].Date.After(events[i-1].Date) {
			t.Fatalf("events not sorted descending at %d", i)
		}
	}

	if events[0].Subtype != "Rabies" {
		t.Fatalf("expected vaccination subtype Rabies, got %q", events[0].Subtype)
	}
	if events[1].Subtype != "CONSULTATION" {
		t.Fatalf("expected record subtype CONSULTATION, got %q", events[1].Subtype)
	}
	if events[2].Subtype != "Chemistry Panel" {
		t.Fatalf("expected lab subtype Chemistry Panel, got %q", events[2].Subtype)
	}
}

func TestTimelineEmpty(t *testing.T) {
	svc := records.NewService(memory.NewRecordsRepo())

	events, err := svc.Timeline(context.Background(), "pet-without-history")
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty timeline, got %d events", len(events))
	}
}

func TestActiveMedicationsFiltersCompleted(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRecordsRepo()
	svc := records.NewService(repo)

	petID := "pet-1"
	if err := repo.AddMedication(ctx, records.Medication{
		ID: "med-1", PetID: petID, DrugName: "Carprofen", Status: records.MedicationActive,
	}); err != nil {
		t.Fatalf("add medication: %v", err)
	}
	if err := repo.AddMedication(ctx, records.Medication{
		ID: "med-2", PetID: petID, DrugName: "Amoxicillin", Status: records.MedicationCompleted,
	}); err != nil {
		t.Fatalf("add medication: %v", err)
	}

	meds, err := svc.ActiveMedications(ctx, petID)
	if err != nil {
		t.Fatalf("active medications: %v", err)
	}
	if len(meds) != 1 || meds[0].DrugName != "Carprofen" {
		t.Fatalf("expected only Carprofen active, got %+v", meds)
	}
}
