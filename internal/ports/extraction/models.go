package extraction

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PetContext es el contexto del paciente que acompaña cada pedido de
// extracción (mejora bastante la calidad de lo que devuelve el modelo).
type PetContext struct {
	Name    string
	Species string
	Breed   string
}

// Result es el esquema fijo de extracción. Todos los campos son opcionales:
// el adapter normaliza lo que falte a su zero value antes de entregarlo,
// así el merge engine nunca ve campos "undefined".
type Result struct {
	DocumentType  string `json:"document_type"`
	DateOfService string `json:"date_of_service"` // YYYY-MM-DD
	FacilityName  string `json:"facility_name"`
	ProviderName  string `json:"provider_name"`

	VisitSummary   string `json:"visit_summary"`
	ChiefComplaint string `json:"chief_complaint"`
	Diagnosis      string `json:"diagnosis"`
	Treatment      string `json:"treatment"`
	Notes          string `json:"notes"`
	FollowUp       string `json:"follow_up"`

	Vaccinations []VaccinationEntry `json:"vaccinations"`
	Medications  []MedicationEntry  `json:"medications"`
	Allergies    []AllergyEntry     `json:"allergies"`
	Conditions   []ConditionEntry   `json:"conditions"`

	LabResults *LabPanel  `json:"lab_results"`
	WeightKg   *FlexFloat `json:"weight_kg"`
}

type VaccinationEntry struct {
	VaccineName        string `json:"vaccine_name"`
	AdministrationDate string `json:"administration_date"`
	ValidUntil         string `json:"valid_until"`
	FacilityName       string `json:"facility_name"`
	LotNumber          string `json:"lot_number"`
}

type MedicationEntry struct {
	DrugName     string `json:"drug_name"`
	Dose         string `json:"dose"`
	Frequency    string `json:"frequency"`
	Indication   string `json:"indication"`
	PrescribedBy string `json:"prescribed_by"`
}

type AllergyEntry struct {
	Allergen string `json:"allergen"`
	Reaction string `json:"reaction"`
	Severity string `json:"severity"`
}

type ConditionEntry struct {
	Condition     string `json:"condition"`
	Status        string `json:"status"`
	DiagnosedDate string `json:"diagnosed_date"`
}

type LabPanel struct {
	PanelName      string     `json:"panel_name"`
	CollectionDate string     `json:"collection_date"`
	Results        []LabValue `json:"results"`
	Interpretation string     `json:"interpretation"`
}

type LabValue struct {
	Test  string     `json:"test"`
	Value FlexString `json:"value"`
	Unit  string     `json:"unit"`
	Range string     `json:"range"`
	Flag  string     `json:"flag"`
}

// FlexString acepta string o número JSON. Los modelos devuelven valores de
// laboratorio a veces como "6.2" y a veces como 6.2; acá da igual.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	// número, bool, etc: lo guardamos como texto tal cual
	*f = FlexString(strings.TrimSpace(string(data)))
	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f FlexString) String() string { return string(f) }

// FlexFloat acepta número o string numérico JSON.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

func (f FlexFloat) Float64() float64 { return float64(f) }
