package pets

import "time"

// Species define las especies soportadas.
// @Enum DOG, CAT, BIRD, OTHER
type Species string

const (
	SpeciesDog   Species = "DOG"
	SpeciesCat   Species = "CAT"
	SpeciesBird  Species = "BIRD"
	SpeciesOther Species = "OTHER"
)

// Sex incluye el estado reproductivo, como lo manejan las fichas clínicas.
// @Enum MALE, FEMALE, MALE_NEUTERED, FEMALE_SPAYED
type Sex string

const (
	SexMale         Sex = "MALE"
	SexFemale       Sex = "FEMALE"
	SexMaleNeutered Sex = "MALE_NEUTERED"
	SexFemaleSpayed Sex = "FEMALE_SPAYED"
)

// Pet representa el perfil básico de un paciente registrado en el sistema.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	DateOfBirth *time.Time

	// WeightKg es cache del último peso registrado. La historia vive en
	// weight_records; esto existe solo para mostrar el valor actual barato.
	WeightKg *float64

	MicrochipID string
	Notes       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidSpecies(s Species) bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesOther:
		return true
	}
	return false
}

func ValidSex(s Sex) bool {
	switch s {
	case SexMale, SexFemale, SexMaleNeutered, SexFemaleSpayed:
		return true
	}
	return false
}
