package memory

import (
	"context"
	"sync"

	"petrecord/internal/domain/records"
)

// RecordsRepo guarda todas las entidades hijas por mascota. Los slices
// conservan orden de inserción, que es lo que espera la timeline para
// desempatar fechas iguales.
type RecordsRepo struct {
	mu sync.RWMutex

	allergies    map[string][]records.Allergy
	conditions   map[string][]records.Condition
	medications  map[string][]records.Medication
	vaccinations map[string][]records.Vaccination
	medRecords   map[string][]records.MedicalRecord
	labResults   map[string][]records.LabResult
	weights      map[string][]records.WeightRecord
}

func NewRecordsRepo() *RecordsRepo {
	return &RecordsRepo{
		allergies:    make(map[string][]records.Allergy),
		conditions:   make(map[string][]records.Condition),
		medications:  make(map[string][]records.Medication),
		vaccinations: make(map[string][]records.Vaccination),
		medRecords:   make(map[string][]records.MedicalRecord),
		labResults:   make(map[string][]records.LabResult),
		weights:      make(map[string][]records.WeightRecord),
	}
}

var _ records.Repository = (*RecordsRepo)(nil)
var _ PetCascade = (*RecordsRepo)(nil)

func (r *RecordsRepo) AddAllergy(ctx context.Context, a records.Allergy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allergies[a.PetID] = append(r.allergies[a.PetID], a)
	return nil
}

func (r *RecordsRepo) ListAllergies(ctx context.Context, petID string) ([]records.Allergy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]records.Allergy(nil), r.allergies[petID]...), nil
}

func (r *RecordsRepo) AddCondition(ctx context.Context, c records.Condition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conditions[c.PetID] = append(r.conditions[c.PetID], c)
	return nil
}

func (r *RecordsRepo) ListConditions(ctx context.Context, petID string) ([]records.Condition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]records.Condition(nil), r.conditions[petID]...), nil
}

func (r *RecordsRepo) AddMedication(ctx context.Context, m records.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.medications[m.PetID] = append(r.medications[m.PetID], m)
	return nil
}

func (r *RecordsRepo) ListMedications(ctx context.Context, petID string) ([]records.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]records.Medication(nil), r.medications[petID]...), nil
}

func (r *RecordsRepo) AddVaccination(ctx context.Context, v records.Vaccination) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vaccinations[v.PetID] = append(r.vaccinations[v.PetID], v)
	return nil
}

func (r *RecordsRepo) ListVaccinations(ctx context.Context, petID string) ([]records.Vaccination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]records.Vaccination(nil), r.vaccinations[petID]...), nil
}

func (r *RecordsRepo) AddMedicalRecord(ctx context.Context, m records.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.medRecords[m.PetID] = append(r.medRecords[m.PetID], m)
	return nil
}

func (r *RecordsRepo) ListMedicalRecords(ctx context.Context, petID string) ([]records.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]records.MedicalRecord(nil), r.medRecords[petID]...), nil
}

func (r *RecordsRepo) AddLabResult(ctx context.Context, l records.LabResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labResults[l.PetID] = append(r.labResults[l.PetID], l)
	return nil
}

func (r *RecordsRepo) ListLabResults(ctx context.Context, petID string) ([]records.LabResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]records.LabResult(nil), r.labResults[petID]...), nil
}

func (r *RecordsRepo) AddWeight(ctx context.Context, w records.WeightRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weights[w.PetID] = append(r.weights[w.PetID], w)
	return nil
}

func (r *RecordsRepo) ListWeights(ctx context.Context, petID string) ([]records.WeightRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]records.WeightRecord(nil), r.weights[petID]...), nil
}

func (r *RecordsRepo) DeleteByPet(ctx context.Context, petID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.allergies, petID)
	delete(r.conditions, petID)
	delete(r.medications, petID)
	delete(r.vaccinations, petID)
	delete(r.medRecords, petID)
	delete(r.labResults, petID)
	delete(r.weights, petID)
	return nil
}
