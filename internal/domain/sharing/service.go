package sharing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"petrecord/internal/domain/pets"
	"petrecord/internal/domain/records"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrRevoked      = errors.New("share revoked")
	ErrExpired      = errors.New("share expired")
)

// durations son las ventanas de validez aceptadas. "3d" es alias de "72h"
// porque la UI histórica mandaba ambas formas.
var durations = map[string]time.Duration{
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
	"72h": 72 * time.Hour,
	"3d":  72 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// QRRenderer genera la imagen del link como data URL. Implementación real
// en adapters/qr.
type QRRenderer interface {
	RenderDataURL(content string) (string, error)
}

type Service struct {
	repo    Repository
	pets    *pets.Service
	records records.Repository
	qr      QRRenderer
	baseURL string
	now     func() time.Time
}

func NewService(repo Repository, petsSvc *pets.Service, recordsRepo records.Repository, qr QRRenderer, baseURL string) *Service {
	return &Service{
		repo:    repo,
		pets:    petsSvc,
		records: recordsRepo,
		qr:      qr,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

type CreateInput struct {
	PetID           string
	PermissionLevel string
	Duration        string
}

type CreateResult struct {
	Share    AccessToken
	ShareURL string
	QRCode   string // data URL PNG, vacío si el renderer no está configurado
}

// Create emite un token nuevo. Cada llamada crea un share independiente:
// revocar uno no afecta a los demás.
func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (CreateResult, error) {
	petID := strings.TrimSpace(in.PetID)
	if petID == "" || strings.TrimSpace(ownerUserID) == "" {
		return CreateResult{}, ErrInvalidInput
	}

	perm := PermissionLevel(strings.ToUpper(strings.TrimSpace(in.PermissionLevel)))
	if perm == "" {
		perm = PermissionLimited
	}
	if !ValidPermission(perm) {
		return CreateResult{}, ErrInvalidInput
	}

	d, ok := durations[strings.ToLower(strings.TrimSpace(in.Duration))]
	if !ok {
		return CreateResult{}, ErrInvalidInput
	}

	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return CreateResult{}, ErrNotFound
	}
	if p.OwnerUserID != ownerUserID {
		return CreateResult{}, ErrForbidden
	}

	secret, err := newSecret()
	if err != nil {
		return CreateResult{}, err
	}

	now := s.now()
	until := now.Add(d)
	t := AccessToken{
		ID:              uuid.NewString(),
		UserID:          ownerUserID,
		PetID:           petID,
		Token:           secret,
		PermissionLevel: perm,
		ValidUntil:      &until,
		IsActive:        true,
		CreatedAt:       now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return CreateResult{}, err
	}

	res := CreateResult{
		Share:    t,
		ShareURL: s.baseURL + "/shared/" + secret,
	}
	if s.qr != nil {
		// El QR es cosmético: si falla, el link sigue sirviendo.
		if qr, err := s.qr.RenderDataURL(res.ShareURL); err == nil {
			res.QRCode = qr
		}
	}
	return res, nil
}

// SharedView es lo que ve quien abre el link. LIMITED muestra los datos
// básicos, alergias, condiciones, medicación vigente y vacunas; FULL_ACCESS agrega
// registros médicos y laboratorios.
type SharedView struct {
	Pet               pets.PetResponse        `json:"pet"`
	PermissionLevel   PermissionLevel         `json:"permission_level"`
	ValidUntil        *time.Time              `json:"valid_until,omitempty"`
	Allergies         []records.Allergy       `json:"allergies"`
	Conditions        []records.Condition     `json:"conditions"`
	ActiveMedications []records.Medication    `json:"activeMedications"`
	Vaccinations      []records.Vaccination   `json:"vaccinations"`
	MedicalRecords    []records.MedicalRecord `json:"medicalRecords,omitempty"`
	LabResults        []records.LabResult     `json:"labResults,omitempty"`
}

// Access valida el token y devuelve la vista compartida. La expiración se
// decide acá contra el reloj, nunca mutando el registro.
func (s *Service) Access(ctx context.Context, token string) (SharedView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return SharedView{}, ErrNotFound
	}

	t, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return SharedView{}, ErrNotFound
	}
	if !t.IsActive {
		return SharedView{}, ErrRevoked
	}
	if t.ValidUntil != nil && s.now().After(*t.ValidUntil) {
		return SharedView{}, ErrExpired
	}

	p, err := s.pets.GetByID(ctx, t.PetID)
	if err != nil {
		return SharedView{}, ErrNotFound
	}

	view := SharedView{
		Pet:             pets.ToPetResponse(p),
		PermissionLevel: t.PermissionLevel,
		ValidUntil:      t.ValidUntil,
	}

	if view.Allergies, err = s.records.ListAllergies(ctx, t.PetID); err != nil {
		return SharedView{}, err
	}
	if view.Conditions, err = s.records.ListConditions(ctx, t.PetID); err != nil {
		return SharedView{}, err
	}
	meds, err := s.records.ListMedications(ctx, t.PetID)
	if err != nil {
		return SharedView{}, err
	}
	view.ActiveMedications = make([]records.Medication, 0, len(meds))
	for _, m := range meds {
		if m.Status == records.MedicationActive {
			view.ActiveMedications = append(view.ActiveMedications, m)
		}
	}
	if view.Vaccinations, err = s.records.ListVaccinations(ctx, t.PetID); err != nil {
		return SharedView{}, err
	}

	if t.PermissionLevel == PermissionFullAccess {
		if view.MedicalRecords, err = s.records.ListMedicalRecords(ctx, t.PetID); err != nil {
			return SharedView{}, err
		}
		if view.LabResults, err = s.records.ListLabResults(ctx, t.PetID); err != nil {
			return SharedView{}, err
		}
	}

	return view, nil
}

// Revoke desactiva el share. Es terminal e idempotente; el token no se
// puede reactivar.
func (s *Service) Revoke(ctx context.Context, tokenID, ownerUserID string) (AccessToken, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" || strings.TrimSpace(ownerUserID) == "" {
		return AccessToken{}, ErrInvalidInput
	}

	t, err := s.repo.GetByID(ctx, tokenID)
	if err != nil {
		return AccessToken{}, ErrNotFound
	}
	if t.UserID != ownerUserID {
		return AccessToken{}, ErrForbidden
	}
	if !t.IsActive {
		return t, nil
	}

	t.IsActive = false
	if err := s.repo.Update(ctx, t); err != nil {
		return AccessToken{}, err
	}
	return t, nil
}

// ShareStatus acompaña cada share en el listado del dueño. IsExpired se
// computa al leer; el registro no cambia.
type ShareStatus struct {
	Share     AccessToken
	IsExpired bool
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]ShareStatus, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]ShareStatus, 0, len(items))
	for _, t := range items {
		if !t.IsActive {
			continue
		}
		out = append(out, ShareStatus{
			Share:     t,
			IsExpired: t.ValidUntil != nil && now.After(*t.ValidUntil),
		})
	}
	return out, nil
}

func newSecret() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
