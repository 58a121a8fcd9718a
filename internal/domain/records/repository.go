package records

import "context"

// Repository agrupa todas las entidades hijas de una mascota. Un solo
// contrato en vez de seis: siempre se leen y escriben juntas (merge,
// detalle, timeline, vista compartida).
type Repository interface {
	AddAllergy(ctx context.Context, a Allergy) error
	ListAllergies(ctx context.Context, petID string) ([]Allergy, error)

	AddCondition(ctx context.Context, c Condition) error
	ListConditions(ctx context.Context, petID string) ([]Condition, error)

	AddMedication(ctx context.Context, m Medication) error
	ListMedications(ctx context.Context, petID string) ([]Medication, error)

	AddVaccination(ctx context.Context, v Vaccination) error
	ListVaccinations(ctx context.Context, petID string) ([]Vaccination, error)

	AddMedicalRecord(ctx context.Context, m MedicalRecord) error
	ListMedicalRecords(ctx context.Context, petID string) ([]MedicalRecord, error)

	AddLabResult(ctx context.Context, l LabResult) error
	ListLabResults(ctx context.Context, petID string) ([]LabResult, error)

	AddWeight(ctx context.Context, w WeightRecord) error
	ListWeights(ctx context.Context, petID string) ([]WeightRecord, error)
}
