package sharing

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"petrecord/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/share", func(sr chi.Router) {
		sr.Post("/quick-share", quickShareHandler(svc))
		sr.Get("/my-shares", mySharesHandler(svc))
		sr.Post("/{tokenID}/revoke", revokeShareHandler(svc))

		// Público: lo abre el veterinario desde el link, sin cuenta.
		sr.Post("/access/{token}", accessShareHandler(svc))
	})
}

type quickShareRequest struct {
	PetID           string `json:"pet_id"`
	PermissionLevel string `json:"permission_level"`
	Duration        string `json:"duration"`
}

type shareResponse struct {
	ID              string          `json:"id"`
	PetID           string          `json:"pet_id"`
	Token           string          `json:"token"`
	PermissionLevel PermissionLevel `json:"permission_level"`
	ValidUntil      *time.Time      `json:"valid_until,omitempty"`
	IsActive        bool            `json:"is_active"`
	IsExpired       bool            `json:"is_expired"`
	CreatedAt       time.Time       `json:"created_at"`
}

type quickShareResponse struct {
	Share    shareResponse `json:"share"`
	Token    string        `json:"token"`
	ShareURL string        `json:"shareUrl"`
	QRCode   string        `json:"qrCode,omitempty"`
}

func quickShareHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req quickShareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			PetID:           req.PetID,
			PermissionLevel: req.PermissionLevel,
			Duration:        req.Duration,
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

		writeJSON(w, http.StatusCreated, quickShareResponse{
			Share:    toShareResponse(res.Share, false),
			Token:    res.Share.Token,
			ShareURL: res.ShareURL,
			QRCode:   res.QRCode,
		})
	}
}

func mySharesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]shareResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toShareResponse(it.Share, it.IsExpired))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func revokeShareHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		tokenID := chi.URLParam(r, "tokenID")
		t, err := svc.Revoke(r.Context(), tokenID, claims.UserID)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toShareResponse(t, false))
	}
}

func accessShareHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		view, err := svc.Access(r.Context(), token)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "share not found", http.StatusNotFound)
			case ErrRevoked:
				http.Error(w, "share revoked", http.StatusGone)
			case ErrExpired:
				http.Error(w, "share expired", http.StatusGone)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func toShareResponse(t AccessToken, isExpired bool) shareResponse {
	return shareResponse{
		ID:              t.ID,
		PetID:           t.PetID,
		Token:           t.Token,
		PermissionLevel: t.PermissionLevel,
		ValidUntil:      t.ValidUntil,
		IsActive:        t.IsActive,
		IsExpired:       isExpired,
		CreatedAt:       t.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
