package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

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

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	Sex         string
	DateOfBirth *time.Time
	WeightKg    *float64
	MicrochipID string
	Notes       string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}

	species := Species(strings.ToUpper(strings.TrimSpace(in.Species)))
	if !ValidSpecies(species) {
		return Pet{}, ErrInvalidInput
	}

	sex := Sex(strings.ToUpper(strings.TrimSpace(in.Sex)))
	if sex == "" {
		sex = SexMale
	}
	if !ValidSex(sex) {
		return Pet{}, ErrInvalidInput
	}

	if in.WeightKg != nil && *in.WeightKg <= 0 {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Species:     species,
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         sex,
		DateOfBirth: in.DateOfBirth,
		WeightKg:    in.WeightKg,
		MicrochipID: strings.TrimSpace(in.MicrochipID),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string
	Breed       *string
	Sex         *string
	DateOfBirth *time.Time
	MicrochipID *string
	Notes       *string
}

func (s *Service) UpdateProfile(ctx context.Context, petID, requesterID string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	if p.OwnerUserID != requesterID {
		return Pet{}, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		sex := Sex(strings.ToUpper(strings.TrimSpace(*in.Sex)))
		if !ValidSex(sex) {
			return Pet{}, ErrInvalidInput
		}
		p.Sex = sex
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = in.DateOfBirth
	}
	if in.MicrochipID != nil {
		p.MicrochipID = strings.TrimSpace(*in.MicrochipID)
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// SetWeight actualiza el cache de peso del perfil. La fila histórica la
// escribe quien llama (merge engine o handler de weights) en weight_records.
func (s *Service) SetWeight(ctx context.Context, petID string, weightKg float64) (Pet, error) {
	if weightKg <= 0 {
		return Pet{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	p.WeightKg = &weightKg
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, petID, requesterID string) error {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return ErrNotFound
	}
	if p.OwnerUserID != requesterID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, petID)
}
