package pets

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"petrecord/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registra el CRUD de mascotas. El detalle completo
// (GET /pets/{petID} con historia clínica embebida) vive en records,
// que importa este paquete; acá solo va lo que no necesita entidades hijas.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})
}

type createPetRequest struct {
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Breed       string   `json:"breed"`
	Sex         string   `json:"sex"`
	DateOfBirth string   `json:"date_of_birth"` // YYYY-MM-DD opcional
	WeightKg    *float64 `json:"weight_kg"`
	MicrochipID string   `json:"microchip_id"`
	Notes       string   `json:"notes"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string `json:"name"`
	Breed       *string `json:"breed"`
	Sex         *string `json:"sex"`
	DateOfBirth *string `json:"date_of_birth"` // YYYY-MM-DD
	MicrochipID *string `json:"microchip_id"`
	Notes       *string `json:"notes"`
}

// PetResponse es el shape público de una mascota. Exportado porque records
// y sharing lo embeben en sus propias respuestas.
type PetResponse struct {
	ID          string     `json:"id"`
	OwnerUserID string     `json:"owner_user_id"`
	Name        string     `json:"name"`
	Species     Species    `json:"species"`
	Breed       string     `json:"breed"`
	Sex         Sex        `json:"sex"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	WeightKg    *float64   `json:"weight_kg,omitempty"`
	MicrochipID string     `json:"microchip_id,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var dob *time.Time
		if strings.TrimSpace(req.DateOfBirth) != "" {
			t, err := time.Parse("2006-01-02", req.DateOfBirth)
			if err != nil {
				http.Error(w, "date_of_birth must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			dob = &t
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Sex:         req.Sex,
			DateOfBirth: dob,
			WeightKg:    req.WeightKg,
			MicrochipID: req.MicrochipID,
			Notes:       req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, ToPetResponse(p))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToPetResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var dob *time.Time
		if req.DateOfBirth != nil {
			t, err := time.Parse("2006-01-02", strings.TrimSpace(*req.DateOfBirth))
			if err != nil {
				http.Error(w, "date_of_birth must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			dob = &t
		}

		updated, err := svc.UpdateProfile(r.Context(), petID, claims.UserID, UpdateInput{
			Name:        req.Name,
			Breed:       req.Breed,
			Sex:         req.Sex,
			DateOfBirth: dob,
			MicrochipID: req.MicrochipID,
			Notes:       req.Notes,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrNotFound:
				http.Error(w, "pet not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, ToPetResponse(updated))
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		if err := svc.Delete(r.Context(), petID, claims.UserID); err != nil {
			switch err {
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrNotFound:
				http.Error(w, "pet not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "pet deleted"})
	}
}

// ToPetResponse también lo usan records y sharing para embeber la mascota.
func ToPetResponse(p Pet) PetResponse {
	return PetResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Sex:         p.Sex,
		DateOfBirth: p.DateOfBirth,
		WeightKg:    p.WeightKg,
		MicrochipID: p.MicrochipID,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
