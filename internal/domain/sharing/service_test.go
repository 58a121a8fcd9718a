package sharing_test

import (
	"context"
	"testing"
	"time"

	"petrecord/internal/adapters/storage/memory"
	"petrecord/internal/domain/pets"
	"petrecord/internal/domain/records"
	"petrecord/internal/domain/sharing"
)

type staticQR struct{}

func (staticQR) RenderDataURL(content string) (string, error) {
	return "data:image/png;base64,AAAA", nil
}

func setup(t *testing.T) (*sharing.Service, sharing.Repository, records.Repository, string) {
	t.Helper()

	recordsRepo := memory.NewRecordsRepo()
	sharesRepo := memory.NewSharingRepo()
	petsSvc := pets.NewService(memory.NewPetRepo(recordsRepo, sharesRepo))
	svc := sharing.NewService(sharesRepo, petsSvc, recordsRepo, staticQR{}, "http://localhost:5173")

	p, err := petsSvc.Create(context.Background(), "owner-1", pets.CreateInput{
		Name:    "Luna",
		Species: "CAT",
	})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	return svc, sharesRepo, recordsRepo, p.ID
}

func TestCreateAndAccessShare(t *testing.T) {
	svc, _, recordsRepo, petID := setup(t)
	ctx := context.Background()

	if err := recordsRepo.AddAllergy(ctx, records.Allergy{
		ID: "alg-1", PetID: petID, Allergen: "Chicken",
	}); err != nil {
		t.Fatalf("add allergy: %v", err)
	}
	if err := recordsRepo.AddMedicalRecord(ctx, records.MedicalRecord{
		ID: "rec-1", PetID: petID, RecordType: "CONSULTATION",
		DateOfService: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		VisitSummary:  "Checkup",
	}); err != nil {
		t.Fatalf("add record: %v", err)
	}

	res, err := svc.Create(ctx, "owner-1", sharing.CreateInput{
		PetID:           petID,
		PermissionLevel: "LIMITED",
		Duration:        "24h",
	})
	if err != nil {
		t.Fatalf("create share: %v", err)
	}
	if res.Share.Token == "" {
		t.Fatal("expected a token secret")
	}
	if res.ShareURL != "http://localhost:5173/shared/"+res.Share.Token {
		t.Fatalf("unexpected share URL %q", res.ShareURL)
	}
	if res.QRCode == "" {
		t.Fatal("expected QR data URL")
	}
	if res.Share.ValidUntil == nil {
		t.Fatal("expected valid_until to be set")
	}

	view, err := svc.Access(ctx, res.Share.Token)
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	if view.Pet.ID != petID {
		t.Fatalf("expected pet %s, got %s", petID, view.Pet.ID)
	}
	if len(view.Allergies) != 1 {
		t.Fatalf("expected 1 allergy, got %d", len(view.Allergies))
	}
	// LIMITED no incluye registros médicos ni labs
	if view.MedicalRecords != nil {
		t.Fatalf("LIMITED share must not expose medical records, got %d", len(view.MedicalRecords))
	}
}

func TestFullAccessShareIncludesRecordsAndLabs(t *testing.T) {
	svc, _, recordsRepo, petID := setup(t)
	ctx := context.Background()

	if err := recordsRepo.AddMedicalRecord(ctx, records.MedicalRecord{
		ID: "rec-1", PetID: petID, RecordType: "SURGERY",
		DateOfService: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("add record: %v", err)
	}
	if err := recordsRepo.AddLabResult(ctx, records.LabResult{
		ID: "lab-1", PetID: petID, PanelName: "Chemistry",
		CollectionDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Results:        []records.LabValue{{Test: "BUN", Value: "20"}},
	}); err != nil {
		t.Fatalf("add lab: %v", err)
	}

	res, err := svc.Create(ctx, "owner-1", sharing.CreateInput{
		PetID:           petID,
		PermissionLevel: "FULL_ACCESS",
		Duration:        "7d",
	})
	if err != nil {
		t.Fatalf("create share: %v", err)
	}

	view, err := svc.Access(ctx, res.Share.Token)
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	if len(view.MedicalRecords) != 1 {
		t.Fatalf("expected 1 medical record, got %d", len(view.MedicalRecords))
	}
	if len(view.LabResults) != 1 {
		t.Fatalf("expected 1 lab result, got %d", len(view.LabResults))
	}
}

func TestAccessExpiredShare(t *testing.T) {
	svc, repo, _, petID := setup(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, "owner-1", sharing.CreateInput{
		PetID:    petID,
		Duration: "1h",
	})
	if err != nil {
		t.Fatalf("create share: %v", err)
	}

	// Forzamos la expiración moviendo valid_until al pasado.
	expired := res.Share
	past := time.Now().Add(-time.Minute)
	expired.ValidUntil = &past
	if err := repo.Update(ctx, expired); err != nil {
		t.Fatalf("update share: %v", err)
	}

	if _, err := svc.Access(ctx, res.Share.Token); err != sharing.ErrExpired {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestRevokeShare(t *testing.T) {
	svc, _, _, petID := setup(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, "owner-1", sharing.CreateInput{
		PetID:    petID,
		Duration: "24h",
	})
	if err != nil {
		t.Fatalf("create share: %v", err)
	}

	// Solo el dueño puede revocar.
	if _, err := svc.Revoke(ctx, res.Share.ID, "intruder"); err != sharing.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	revoked, err := svc.Revoke(ctx, res.Share.ID, "owner-1")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.IsActive {
		t.Fatal("expected share to be inactive")
	}

	if _, err := svc.Access(ctx, res.Share.Token); err != sharing.ErrRevoked {
		t.Fatalf("expected ErrRevoked, got %v", err)
	}

	// Un share nuevo sobre la misma mascota es independiente del revocado.
	fresh, err := svc.Create(ctx, "owner-1", sharing.CreateInput{
		PetID:    petID,
		Duration: "24h",
	})
	if err != nil {
		t.Fatalf("create new share: %v", err)
	}
	if _, err := svc.Access(ctx, fresh.Share.Token); err != nil {
		t.Fatalf("access new share: %v", err)
	}

	// El listado del dueño filtra los revocados.
	list, err := svc.ListByUser(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list shares: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 active share, got %d", len(list))
	}
	if list[0].Share.ID != fresh.Share.ID {
		t.Fatalf("expected fresh share in listing")
	}
}

func TestCreateShareValidation(t *testing.T) {
	svc, _, _, petID := setup(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "owner-1", sharing.CreateInput{
		PetID:    petID,
		Duration: "90d",
	}); err != sharing.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for unknown duration, got %v", err)
	}

	if _, err := svc.Create(ctx, "someone-else", sharing.CreateInput{
		PetID:    petID,
		Duration: "24h",
	}); err != sharing.ErrForbidden {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	if _, err := svc.Create(ctx, "owner-1", sharing.CreateInput{
		PetID:           petID,
		PermissionLevel: "ADMIN",
		Duration:        "24h",
	}); err != sharing.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for bad permission, got %v", err)
	}
}
