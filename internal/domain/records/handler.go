package records

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"petrecord/internal/domain/pets"
	"petrecord/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes cuelga las rutas de lectura clínica y el alta manual de
// pesos. El GET /pets/{petID} vive acá y no en pets porque el detalle
// embebe todas las entidades hijas.
func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Get("/pets/{petID}", getPetDetailHandler(svc, petsSvc))
	r.Get("/pets/{petID}/timeline", timelineHandler(svc, petsSvc))
	r.Post("/pets/{petID}/weights", addWeightHandler(svc, petsSvc))
}

type petDetailResponse struct {
	pets.PetResponse

	Allergies         []Allergy       `json:"allergies"`
	Conditions        []Condition     `json:"conditions"`
	ActiveMedications []Medication    `json:"activeMedications"`
	Vaccinations      []Vaccination   `json:"vaccinations"`
	WeightHistory     []WeightRecord  `json:"weightHistory"`
	MedicalRecords    []MedicalRecord `json:"medicalRecords"`
	LabResults        []LabResult     `json:"labResults"`
}

type addWeightRequest struct {
	WeightKg   float64 `json:"weight_kg"`
	RecordedAt string  `json:"recorded_at"` // YYYY-MM-DD opcional, default hoy
}

// authorizePetOwner resuelve la mascota y valida ownership. Devuelve la
// mascota para que el handler no la vuelva a buscar.
func authorizePetOwner(w http.ResponseWriter, r *http.Request, petsSvc *pets.Service) (pets.Pet, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return pets.Pet{}, false
	}

	petID := chi.URLParam(r, "petID")
	p, err := petsSvc.GetByID(r.Context(), petID)
	if err != nil {
		http.Error(w, "pet not found", http.StatusNotFound)
		return pets.Pet{}, false
	}
	if p.OwnerUserID != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return pets.Pet{}, false
	}
	return p, true
}

func getPetDetailHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePetOwner(w, r, petsSvc)
		if !ok {
			return
		}

		ctx := r.Context()
		repo := svc.Repo()

		allergies, err := repo.ListAllergies(ctx, p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		conditions, err := repo.ListConditions(ctx, p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		meds, err := svc.ActiveMedications(ctx, p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		vaccs, err := repo.ListVaccinations(ctx, p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		weights, err := repo.ListWeights(ctx, p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		recs, err := repo.ListMedicalRecords(ctx, p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		labs, err := repo.ListLabResults(ctx, p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, petDetailResponse{
			PetResponse:       pets.ToPetResponse(p),
			Allergies:         allergies,
			Conditions:        conditions,
			ActiveMedications: meds,
			Vaccinations:      vaccs,
			WeightHistory:     weights,
			MedicalRecords:    recs,
			LabResults:        labs,
		})
	}
}

func timelineHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePetOwner(w, r, petsSvc)
		if !ok {
			return
		}

		events, err := svc.Timeline(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func addWeightHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizePetOwner(w, r, petsSvc)
		if !ok {
			return
		}

		var req addWeightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var recordedAt time.Time
		if strings.TrimSpace(req.RecordedAt) != "" {
			t, err := time.Parse("2006-01-02", req.RecordedAt)
			if err != nil {
				http.Error(w, "recorded_at must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			recordedAt = t
		}

		rec, err := svc.RecordWeight(r.Context(), p.ID, req.WeightKg, recordedAt, "manual")
		if err != nil {
			if err == ErrInvalidInput {
				http.Error(w, "weight_kg must be positive", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Actualiza el cache del perfil; la fila histórica ya quedó escrita.
		if _, err := petsSvc.SetWeight(r.Context(), p.ID, req.WeightKg); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, rec)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
