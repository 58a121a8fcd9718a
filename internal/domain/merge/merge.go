// Package merge aplica un resultado de extracción sobre la historia clínica
// de una mascota: inserta lo nuevo, deduplica lo que ya existe y reporta
// qué quedó guardado. Cada entidad se procesa de forma independiente; un
// fallo en una no aborta las demás.
package merge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"petrecord/internal/domain/pets"
	"petrecord/internal/domain/records"
	"petrecord/internal/platform/logger"
	"petrecord/internal/ports/extraction"

	"github.com/google/uuid"
)

var ErrPetNotFound = errors.New("pet not found")

type Service struct {
	pets *pets.Service
	repo records.Repository
	log  logger.Logger
	now  func() time.Time

	// Serializa merges por mascota: dos uploads simultáneos del mismo
	// documento no deben duplicar alergias por el check-then-insert.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewService(petsSvc *pets.Service, repo records.Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		pets:  petsSvc,
		repo:  repo,
		log:   log,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// SavedSummary reporta qué insertó el merge. Los contadores y nombres son
// los que muestra la UI después de un upload.
type SavedSummary struct {
	Records      int                `json:"records"`
	Vaccinations []SavedVaccination `json:"vaccinations"`
	Medications  []SavedMedication  `json:"medications"`
	Labs         []SavedLab         `json:"labs"`
	Allergies    []SavedAllergy     `json:"allergies"`
	Conditions   []SavedCondition   `json:"conditions"`
	Skipped      []SkippedStep      `json:"skipped,omitempty"`
}

type SavedVaccination struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

type SavedMedication struct {
	DrugName string `json:"drug_name"`
	Dose     string `json:"dose"`
}

type SavedLab struct {
	Panel string `json:"panel"`
}

type SavedAllergy struct {
	Allergen string `json:"allergen"`
}

type SavedCondition struct {
	Condition string `json:"condition"`
}

// SkippedStep deja constancia de un paso que falló o se descartó. El merge
// nunca devuelve error por un paso individual.
type SkippedStep struct {
	Entity string `json:"entity"`
	Reason string `json:"reason"`
}

func (s *Service) petLock(petID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[petID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[petID] = mu
	}
	return mu
}

// Merge inserta el contenido de un resultado de extracción en la historia
// de la mascota. Devuelve error solo si la mascota no existe; los fallos
// por entidad se loguean y quedan en el summary.
func (s *Service) Merge(ctx context.Context, petID string, res extraction.Result) (SavedSummary, error) {
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return SavedSummary{}, ErrPetNotFound
	}

	mu := s.petLock(petID)
	mu.Lock()
	defer mu.Unlock()

	summary := SavedSummary{
		Vaccinations: []SavedVaccination{},
		Medications:  []SavedMedication{},
		Labs:         []SavedLab{},
		Allergies:    []SavedAllergy{},
		Conditions:   []SavedCondition{},
	}

	log := s.log.With(logger.F{"pet_id": petID})
	serviceDate := s.parseDate(res.DateOfService)

	s.mergeVaccinations(ctx, petID, res, serviceDate, &summary, log)
	s.mergeMedications(ctx, petID, res, serviceDate, &summary, log)
	s.mergeMedicalRecord(ctx, petID, res, serviceDate, &summary, log)
	s.mergeLabResults(ctx, petID, res, serviceDate, &summary, log)
	s.mergeAllergies(ctx, petID, res, &summary, log)
	s.mergeConditions(ctx, petID, res, &summary, log)
	s.mergeWeight(ctx, petID, res, serviceDate, &summary, log)

	return summary, nil
}

// Las vacunas son eventos, no estados: la misma vacuna aplicada dos veces
// son dos filas. Nunca se deduplica.
func (s *Service) mergeVaccinations(ctx context.Context, petID string, res extraction.Result, serviceDate time.Time, summary *SavedSummary, log logger.Logger) {
	for _, entry := range res.Vaccinations {
		name := strings.TrimSpace(entry.VaccineName)
		if name == "" {
			continue
		}

		adminDate := s.parseDateFallback(entry.AdministrationDate, serviceDate)
		v := records.Vaccination{
			ID:                 uuid.NewString(),
			PetID:              petID,
			VaccineName:        name,
			AdministrationDate: adminDate,
			FacilityName:       firstNonEmpty(entry.FacilityName, res.FacilityName),
			LotNumber:          strings.TrimSpace(entry.LotNumber),
			CreatedAt:          s.now(),
		}
		if until := s.parseDate(entry.ValidUntil); !until.IsZero() {
			v.ValidUntil = &until
		}

		if err := s.repo.AddVaccination(ctx, v); err != nil {
			log.Error("merge: vaccination insert failed", logger.F{"vaccine": name, "err": err.Error()})
			summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "vaccination", Reason: err.Error()})
			continue
		}
		summary.Vaccinations = append(summary.Vaccinations, SavedVaccination{
			Name: name,
			Date: adminDate.Format("2006-01-02"),
		})
	}
}

func (s *Service) mergeMedications(ctx context.Context, petID string, res extraction.Result, serviceDate time.Time, summary *SavedSummary, log logger.Logger) {
	for _, entry := range res.Medications {
		drug := strings.TrimSpace(entry.DrugName)
		if drug == "" {
			continue
		}

		start := serviceDate
		if start.IsZero() {
			start = s.now()
		}
		m := records.Medication{
			ID:           uuid.NewString(),
			PetID:        petID,
			DrugName:     drug,
			Dose:         strings.TrimSpace(entry.Dose),
			Frequency:    strings.TrimSpace(entry.Frequency),
			Indication:   strings.TrimSpace(entry.Indication),
			PrescribedBy: firstNonEmpty(entry.PrescribedBy, res.ProviderName),
			Status:       records.MedicationActive,
			StartDate:    &start,
			CreatedAt:    s.now(),
		}

		if err := s.repo.AddMedication(ctx, m); err != nil {
			log.Error("merge: medication insert failed", logger.F{"drug": drug, "err": err.Error()})
			summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "medication", Reason: err.Error()})
			continue
		}
		summary.Medications = append(summary.Medications, SavedMedication{DrugName: drug, Dose: m.Dose})
	}
}

// Un documento sin narrativa (solo labs, solo vacunas) no genera registro
// médico: sería una cáscara vacía en la timeline.
func (s *Service) mergeMedicalRecord(ctx context.Context, petID string, res extraction.Result, serviceDate time.Time, summary *SavedSummary, log logger.Logger) {
	narrative := firstNonEmpty(res.VisitSummary, res.ChiefComplaint, res.Diagnosis, res.Treatment)
	if narrative == "" {
		return
	}

	recordType := strings.ToUpper(strings.TrimSpace(res.DocumentType))
	if recordType == "" {
		recordType = "OTHER"
	}
	date := serviceDate
	if date.IsZero() {
		date = s.now()
	}

	rec := records.MedicalRecord{
		ID:             uuid.NewString(),
		PetID:          petID,
		RecordType:     recordType,
		DateOfService:  date,
		FacilityName:   strings.TrimSpace(res.FacilityName),
		ProviderName:   strings.TrimSpace(res.ProviderName),
		VisitSummary:   strings.TrimSpace(res.VisitSummary),
		ChiefComplaint: strings.TrimSpace(res.ChiefComplaint),
		Diagnosis:      strings.TrimSpace(res.Diagnosis),
		Treatment:      strings.TrimSpace(res.Treatment),
		Notes:          strings.TrimSpace(res.Notes),
		FollowUp:       strings.TrimSpace(res.FollowUp),
		CreatedAt:      s.now(),
	}

	if err := s.repo.AddMedicalRecord(ctx, rec); err != nil {
		log.Error("merge: medical record insert failed", logger.F{"err": err.Error()})
		summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "record", Reason: err.Error()})
		return
	}
	summary.Records++
}

func (s *Service) mergeLabResults(ctx context.Context, petID string, res extraction.Result, serviceDate time.Time, summary *SavedSummary, log logger.Logger) {
	panel := res.LabResults
	if panel == nil || len(panel.Results) == 0 {
		return
	}

	collected := s.parseDateFallback(panel.CollectionDate, serviceDate)
	values := make([]records.LabValue, 0, len(panel.Results))
	for _, v := range panel.Results {
		if strings.TrimSpace(v.Test) == "" {
			continue
		}
		values = append(values, records.LabValue{
			Test:  strings.TrimSpace(v.Test),
			Value: v.Value.String(),
			Unit:  strings.TrimSpace(v.Unit),
			Range: strings.TrimSpace(v.Range),
			Flag:  strings.TrimSpace(v.Flag),
		})
	}
	if len(values) == 0 {
		return
	}

	panelName := strings.TrimSpace(panel.PanelName)
	if panelName == "" {
		panelName = "Lab Panel"
	}

	l := records.LabResult{
		ID:             uuid.NewString(),
		PetID:          petID,
		PanelName:      panelName,
		CollectionDate: collected,
		Results:        values,
		Interpretation: strings.TrimSpace(panel.Interpretation),
		FacilityName:   strings.TrimSpace(res.FacilityName),
		CreatedAt:      s.now(),
	}

	if err := s.repo.AddLabResult(ctx, l); err != nil {
		log.Error("merge: lab result insert failed", logger.F{"panel": panelName, "err": err.Error()})
		summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "lab", Reason: err.Error()})
		return
	}
	summary.Labs = append(summary.Labs, SavedLab{Panel: panelName})
}

// Alergias y condiciones son estados: se deduplica por texto exacto sin
// distinguir mayúsculas. "Chicken" y "chicken" son la misma alergia;
// "Chicken" y "Chix" no (el matching difuso queda afuera).
func (s *Service) mergeAllergies(ctx context.Context, petID string, res extraction.Result, summary *SavedSummary, log logger.Logger) {
	if len(res.Allergies) == 0 {
		return
	}

	existing, err := s.repo.ListAllergies(ctx, petID)
	if err != nil {
		log.Error("merge: allergy list failed", logger.F{"err": err.Error()})
		summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "allergy", Reason: err.Error()})
		return
	}

	for _, entry := range res.Allergies {
		allergen := strings.TrimSpace(entry.Allergen)
		if allergen == "" {
			continue
		}
		if containsFold(existing, allergen, func(a records.Allergy) string { return a.Allergen }) {
			continue
		}

		a := records.Allergy{
			ID:        uuid.NewString(),
			PetID:     petID,
			Allergen:  allergen,
			Reaction:  strings.TrimSpace(entry.Reaction),
			Severity:  strings.TrimSpace(entry.Severity),
			CreatedAt: s.now(),
		}
		if err := s.repo.AddAllergy(ctx, a); err != nil {
			log.Error("merge: allergy insert failed", logger.F{"allergen": allergen, "err": err.Error()})
			summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "allergy", Reason: err.Error()})
			continue
		}
		existing = append(existing, a)
		summary.Allergies = append(summary.Allergies, SavedAllergy{Allergen: allergen})
	}
}

func (s *Service) mergeConditions(ctx context.Context, petID string, res extraction.Result, summary *SavedSummary, log logger.Logger) {
	if len(res.Conditions) == 0 {
		return
	}

	existing, err := s.repo.ListConditions(ctx, petID)
	if err != nil {
		log.Error("merge: condition list failed", logger.F{"err": err.Error()})
		summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "condition", Reason: err.Error()})
		return
	}

	for _, entry := range res.Conditions {
		name := strings.TrimSpace(entry.Condition)
		if name == "" {
			continue
		}
		if containsFold(existing, name, func(c records.Condition) string { return c.Condition }) {
			continue
		}

		c := records.Condition{
			ID:        uuid.NewString(),
			PetID:     petID,
			Condition: name,
			Status:    conditionStatus(entry.Status),
			CreatedAt: s.now(),
		}
		if d := s.parseDate(entry.DiagnosedDate); !d.IsZero() {
			c.DiagnosedDate = &d
		}

		if err := s.repo.AddCondition(ctx, c); err != nil {
			log.Error("merge: condition insert failed", logger.F{"condition": name, "err": err.Error()})
			summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "condition", Reason: err.Error()})
			continue
		}
		existing = append(existing, c)
		summary.Conditions = append(summary.Conditions, SavedCondition{Condition: name})
	}
}

// El peso siempre suma fila histórica y pisa el cache del perfil, aunque
// sea más viejo que el actual. Sin timestamps confiables en los documentos
// no hay forma robusta de decidir cuál es "más nuevo".
func (s *Service) mergeWeight(ctx context.Context, petID string, res extraction.Result, serviceDate time.Time, summary *SavedSummary, log logger.Logger) {
	if res.WeightKg == nil {
		return
	}
	kg := res.WeightKg.Float64()
	if kg <= 0 {
		return
	}

	recordedAt := serviceDate
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	w := records.WeightRecord{
		ID:         uuid.NewString(),
		PetID:      petID,
		WeightKg:   kg,
		RecordedAt: recordedAt,
		Source:     "extraction",
		CreatedAt:  s.now(),
	}
	if err := s.repo.AddWeight(ctx, w); err != nil {
		log.Error("merge: weight insert failed", logger.F{"err": err.Error()})
		summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "weight", Reason: err.Error()})
		return
	}

	if _, err := s.pets.SetWeight(ctx, petID, kg); err != nil {
		log.Error("merge: weight cache update failed", logger.F{"err": err.Error()})
		summary.Skipped = append(summary.Skipped, SkippedStep{Entity: "weight", Reason: err.Error()})
	}
}

func (s *Service) parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseDateFallback devuelve la fecha del campo, o la del documento, o hoy.
func (s *Service) parseDateFallback(raw string, fallback time.Time) time.Time {
	if t := s.parseDate(raw); !t.IsZero() {
		return t
	}
	if !fallback.IsZero() {
		return fallback
	}
	return s.now()
}

func conditionStatus(raw string) records.ConditionStatus {
	switch records.ConditionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case records.ConditionManaged:
		return records.ConditionManaged
	case records.ConditionResolved:
		return records.ConditionResolved
	default:
		return records.ConditionActive
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func containsFold[T any](items []T, target string, key func(T) string) bool {
	for _, it := range items {
		if strings.EqualFold(strings.TrimSpace(key(it)), target) {
			return true
		}
	}
	return false
}
