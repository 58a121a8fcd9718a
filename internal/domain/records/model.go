package records

import "time"

// ConditionStatus sigue el ciclo de una condición crónica o puntual.
type ConditionStatus string

const (
	ConditionActive   ConditionStatus = "active"
	ConditionManaged  ConditionStatus = "managed"
	ConditionResolved ConditionStatus = "resolved"
)

// MedicationStatus distingue tratamientos vigentes de los terminados.
type MedicationStatus string

const (
	MedicationActive       MedicationStatus = "ACTIVE"
	MedicationCompleted    MedicationStatus = "COMPLETED"
	MedicationDiscontinued MedicationStatus = "DISCONTINUED"
)

// Las entidades llevan tags JSON porque viajan tal cual en el detalle de
// mascota, la timeline y la vista compartida.

type Allergy struct {
	ID    string `json:"id"`
	PetID string `json:"pet_id"`

	Allergen string `json:"allergen"`
	Reaction string `json:"reaction,omitempty"`
	Severity string `json:"severity,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Condition struct {
	ID    string `json:"id"`
	PetID string `json:"pet_id"`

	Condition     string          `json:"condition"`
	Status        ConditionStatus `json:"status"`
	DiagnosedDate *time.Time      `json:"diagnosed_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Medication struct {
	ID    string `json:"id"`
	PetID string `json:"pet_id"`

	DrugName     string           `json:"drug_name"`
	Dose         string           `json:"dose,omitempty"`
	Frequency    string           `json:"frequency,omitempty"`
	Indication   string           `json:"indication,omitempty"`
	PrescribedBy string           `json:"prescribed_by,omitempty"`
	StartDate    *time.Time       `json:"start_date,omitempty"`
	EndDate      *time.Time       `json:"end_date,omitempty"`
	Status       MedicationStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

type Vaccination struct {
	ID    string `json:"id"`
	PetID string `json:"pet_id"`

	VaccineName        string     `json:"vaccine_name"`
	AdministrationDate time.Time  `json:"administration_date"`
	ValidUntil         *time.Time `json:"valid_until,omitempty"`
	FacilityName       string     `json:"facility_name,omitempty"`
	LotNumber          string     `json:"lot_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type MedicalRecord struct {
	ID    string `json:"id"`
	PetID string `json:"pet_id"`

	RecordType    string    `json:"record_type"` // CONSULTATION, SURGERY, EMERGENCY, OTHER, ...
	DateOfService time.Time `json:"date_of_service"`
	FacilityName  string    `json:"facility_name,omitempty"`
	ProviderName  string    `json:"provider_name,omitempty"`

	VisitSummary   string `json:"visit_summary,omitempty"`
	ChiefComplaint string `json:"chief_complaint,omitempty"`
	Diagnosis      string `json:"diagnosis,omitempty"`
	Treatment      string `json:"treatment,omitempty"`
	Notes          string `json:"notes,omitempty"`
	FollowUp       string `json:"follow_up,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// LabValue es una observación individual dentro de un panel. El slice
// completo se persiste como JSON en una columna de texto: el orden del
// documento original importa y el set de analitos es abierto.
type LabValue struct {
	Test  string `json:"test"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
	Range string `json:"range"`
	Flag  string `json:"flag"`
}

type LabResult struct {
	ID    string `json:"id"`
	PetID string `json:"pet_id"`

	PanelName      string     `json:"panel_name"`
	CollectionDate time.Time  `json:"collection_date"`
	Results        []LabValue `json:"results"`
	Interpretation string     `json:"interpretation,omitempty"`
	FacilityName   string     `json:"facility_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type WeightRecord struct {
	ID    string `json:"id"`
	PetID string `json:"pet_id"`

	WeightKg   float64   `json:"weight_kg"`
	RecordedAt time.Time `json:"recorded_at"`
	Source     string    `json:"source"` // extraction, manual

	CreatedAt time.Time `json:"created_at"`
}

// VaccinationCurrent se deriva en lectura, nunca se persiste.
func VaccinationCurrent(v Vaccination, now time.Time) bool {
	if v.ValidUntil == nil {
		return false
	}
	return !v.ValidUntil.Before(now)
}
