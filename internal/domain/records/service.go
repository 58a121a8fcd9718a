package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Repo() Repository { return s.repo }

// ActiveMedications filtra los tratamientos vigentes. Es lo que ven la vista
// compartida y el detalle de mascota; la lista completa queda para auditoría.
func (s *Service) ActiveMedications(ctx context.Context, petID string) ([]Medication, error) {
	meds, err := s.repo.ListMedications(ctx, petID)
	if err != nil {
		return nil, err
	}
	out := make([]Medication, 0, len(meds))
	for _, m := range meds {
		if m.Status == MedicationActive {
			out = append(out, m)
		}
	}
	return out, nil
}

// RecordWeight agrega una fila histórica de peso. El cache en el perfil de la
// mascota lo actualiza quien llama (handler o merge engine) vía pets.Service.
func (s *Service) RecordWeight(ctx context.Context, petID string, weightKg float64, recordedAt time.Time, source string) (WeightRecord, error) {
	if weightKg <= 0 {
		return WeightRecord{}, ErrInvalidInput
	}
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}
	if source == "" {
		source = "manual"
	}
	w := WeightRecord{
		ID:         uuid.NewString(),
		PetID:      petID,
		WeightKg:   weightKg,
		RecordedAt: recordedAt,
		Source:     source,
		CreatedAt:  s.now(),
	}
	if err := s.repo.AddWeight(ctx, w); err != nil {
		return WeightRecord{}, err
	}
	return w, nil
}
