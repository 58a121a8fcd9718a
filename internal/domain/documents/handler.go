package documents

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"petrecord/internal/domain/pets"
	"petrecord/internal/middleware"
	"petrecord/internal/ports/extraction"

	"github.com/go-chi/chi/v5"
)

// Límite de upload. Los PDFs de laboratorio rondan 1-3 MB; 20 MB cubre
// fotos de celular sin comprimir.
const maxUploadBytes = 20 << 20

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Post("/pets/{petID}/upload", uploadHandler(svc, petsSvc))
	r.Get("/pets/{petID}/documents", listDocumentsHandler(svc, petsSvc))
	r.Get("/documents/{documentID}/file", documentFileHandler(svc, petsSvc))

	r.Post("/pets/{petID}/recordings", createRecordingHandler(svc, petsSvc))
	r.Get("/pets/{petID}/recordings", listRecordingsHandler(svc, petsSvc))
}

type documentResponse struct {
	ID               string           `json:"id"`
	PetID            string           `json:"pet_id"`
	Filename         string           `json:"filename"`
	MimeType         string           `json:"mimetype"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	UploadDate       time.Time        `json:"upload_date"`
}

type recordingResponse struct {
	ID               string           `json:"id"`
	PetID            string           `json:"pet_id"`
	Title            string           `json:"title"`
	DurationSeconds  int              `json:"duration_seconds"`
	Transcript       string           `json:"transcript,omitempty"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	CreatedAt        time.Time        `json:"created_at"`
}

type uploadResponse struct {
	Message   string             `json:"message"`
	Document  documentResponse   `json:"document"`
	Saved     any                `json:"saved,omitempty"`
	Extracted *extraction.Result `json:"extracted,omitempty"`
}

func authorizeOwner(w http.ResponseWriter, r *http.Request, petsSvc *pets.Service) (pets.Pet, bool) {
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

func uploadHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeOwner(w, r, petsSvc)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "file too large or invalid multipart body", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file field required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "could not read file", http.StatusBadRequest)
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		result, err := svc.ProcessUpload(r.Context(), p.ID, header.Filename, mimeType, data, petContext(p))
		if err != nil {
			writeUploadError(w, result.Document, err)
			return
		}

		writeJSON(w, http.StatusCreated, uploadResponse{
			Message:   "document processed",
			Document:  toDocumentResponse(result.Document),
			Saved:     result.Saved,
			Extracted: result.Extracted,
		})
	}
}

// writeUploadError responde 202: el documento quedó guardado aunque la
// extracción no haya funcionado, y el cliente debe reflejar eso.
func writeUploadError(w http.ResponseWriter, doc Document, err error) {
	msg := "document stored; automatic extraction failed"
	switch {
	case errors.Is(err, extraction.ErrNotConfigured):
		msg = "document stored; automatic extraction is not configured"
	case errors.Is(err, extraction.ErrParse), errors.Is(err, extraction.ErrEmptyResponse):
		msg = "document stored; the document could not be read automatically"
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "file required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{
		Message:  msg,
		Document: toDocumentResponse(doc),
	})
}

func listDocumentsHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeOwner(w, r, petsSvc)
		if !ok {
			return
		}

		docs, err := svc.ListDocuments(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]documentResponse, 0, len(docs))
		for _, d := range docs {
			out = append(out, toDocumentResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func documentFileHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		doc, err := svc.GetDocument(r.Context(), chi.URLParam(r, "documentID"))
		if err != nil {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}

		p, err := petsSvc.GetByID(r.Context(), doc.PetID)
		if err != nil || p.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Type", doc.MimeType)
		w.Header().Set("Content-Disposition", `inline; filename="`+doc.Filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc.Data)
	}
}

func createRecordingHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeOwner(w, r, petsSvc)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "audio too large or invalid multipart body", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("audio")
		if err != nil {
			http.Error(w, "audio field required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		audio, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "could not read audio", http.StatusBadRequest)
			return
		}

		duration, _ := strconv.Atoi(r.FormValue("duration_seconds"))
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "audio/webm"
		}

		result, err := svc.ProcessRecording(r.Context(), p.ID, RecordingInput{
			Title:           r.FormValue("title"),
			DurationSeconds: duration,
			MimeType:        mimeType,
			Audio:           audio,
		}, petContext(p))
		if err != nil {
			writeRecordingError(w, result.Recording, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message":   "recording processed",
			"recording": toRecordingResponse(result.Recording),
			"saved":     result.Saved,
			"extracted": result.Extracted,
		})
	}
}

func writeRecordingError(w http.ResponseWriter, rec Recording, err error) {
	if errors.Is(err, ErrInvalidInput) {
		http.Error(w, "audio required", http.StatusBadRequest)
		return
	}

	msg := "recording stored; automatic processing failed"
	if errors.Is(err, extraction.ErrNotConfigured) {
		msg = "recording stored; automatic processing is not configured"
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"message":   msg,
		"recording": toRecordingResponse(rec),
	})
}

func listRecordingsHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeOwner(w, r, petsSvc)
		if !ok {
			return
		}

		recs, err := svc.ListRecordings(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordingResponse, 0, len(recs))
		for _, rec := range recs {
			out = append(out, toRecordingResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func petContext(p pets.Pet) extraction.PetContext {
	return extraction.PetContext{
		Name:    p.Name,
		Species: string(p.Species),
		Breed:   p.Breed,
	}
}

func toDocumentResponse(d Document) documentResponse {
	return documentResponse{
		ID:               d.ID,
		PetID:            d.PetID,
		Filename:         d.Filename,
		MimeType:         d.MimeType,
		ProcessingStatus: d.ProcessingStatus,
		UploadDate:       d.UploadDate,
	}
}

func toRecordingResponse(rec Recording) recordingResponse {
	return recordingResponse{
		ID:               rec.ID,
		PetID:            rec.PetID,
		Title:            rec.Title,
		DurationSeconds:  rec.DurationSeconds,
		Transcript:       rec.Transcript,
		ProcessingStatus: rec.ProcessingStatus,
		CreatedAt:        rec.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
