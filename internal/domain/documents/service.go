package documents

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"petrecord/internal/domain/merge"
	"petrecord/internal/platform/logger"
	"petrecord/internal/ports/extraction"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo        Repository
	merge       *merge.Service
	extractor   extraction.Extractor
	transcriber extraction.Transcriber
	log         logger.Logger
	now         func() time.Time
}

// NewService acepta extractor y transcriber nil: el servicio sigue
// funcionando sin IA, todo entra como "manual".
func NewService(repo Repository, mergeSvc *merge.Service, ext extraction.Extractor, tr extraction.Transcriber, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:        repo,
		merge:       mergeSvc,
		extractor:   ext,
		transcriber: tr,
		log:         log,
		now:         time.Now,
	}
}

func (s *Service) AIEnabled() bool { return s.extractor != nil }

// UploadResult es lo que devuelve el pipeline completo de un upload.
type UploadResult struct {
	Document  Document
	Saved     merge.SavedSummary
	Extracted *extraction.Result
}

// ProcessUpload persiste el archivo, corre la extracción y mergea el
// resultado. El documento queda guardado siempre; si la extracción o el
// merge fallan queda en "manual" y el error sube tipado al handler. Nunca
// se mergea un resultado parcial.
func (s *Service) ProcessUpload(ctx context.Context, petID, filename, mimeType string, data []byte, pet extraction.PetContext) (UploadResult, error) {
	if strings.TrimSpace(petID) == "" || len(data) == 0 {
		return UploadResult{}, ErrInvalidInput
	}

	doc := Document{
		ID:               uuid.NewString(),
		PetID:            petID,
		Filename:         strings.TrimSpace(filename),
		MimeType:         mimeType,
		Data:             data,
		ProcessingStatus: StatusPending,
		UploadDate:       s.now(),
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return UploadResult{}, err
	}

	log := s.log.With(logger.F{"pet_id": petID, "document_id": doc.ID})

	if s.extractor == nil {
		s.markDocumentManual(ctx, doc, log)
		return UploadResult{Document: doc}, extraction.ErrNotConfigured
	}

	res, err := s.extractor.ExtractDocument(ctx, data, mimeType, pet)
	if err != nil {
		log.Warn("upload: extraction failed", logger.F{"err": err.Error()})
		s.markDocumentManual(ctx, doc, log)
		return UploadResult{Document: doc}, err
	}

	saved, err := s.merge.Merge(ctx, petID, res)
	if err != nil {
		log.Error("upload: merge failed", logger.F{"err": err.Error()})
		s.markDocumentManual(ctx, doc, log)
		return UploadResult{Document: doc}, err
	}

	doc.Extracted, _ = json.Marshal(res)
	doc.ProcessingStatus = StatusCompleted
	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		log.Error("upload: document update failed", logger.F{"err": err.Error()})
	}

	return UploadResult{Document: doc, Saved: saved, Extracted: &res}, nil
}

type RecordingInput struct {
	Title           string
	DurationSeconds int
	MimeType        string
	Audio           []byte
}

type RecordingResult struct {
	Recording Recording
	Saved     merge.SavedSummary
	Extracted *extraction.Result
}

// ProcessRecording transcribe el audio, resume la transcripción y mergea
// el resultado. Misma política que los uploads: la grabación se guarda
// siempre, el merge es todo-o-nada.
func (s *Service) ProcessRecording(ctx context.Context, petID string, in RecordingInput, pet extraction.PetContext) (RecordingResult, error) {
	if strings.TrimSpace(petID) == "" || len(in.Audio) == 0 {
		return RecordingResult{}, ErrInvalidInput
	}

	rec := Recording{
		ID:               uuid.NewString(),
		PetID:            petID,
		Title:            strings.TrimSpace(in.Title),
		DurationSeconds:  in.DurationSeconds,
		MimeType:         in.MimeType,
		Audio:            in.Audio,
		ProcessingStatus: StatusPending,
		CreatedAt:        s.now(),
	}
	if rec.Title == "" {
		rec.Title = "Consulta " + rec.CreatedAt.Format("2006-01-02")
	}
	if err := s.repo.CreateRecording(ctx, rec); err != nil {
		return RecordingResult{}, err
	}

	log := s.log.With(logger.F{"pet_id": petID, "recording_id": rec.ID})

	if s.transcriber == nil || s.extractor == nil {
		s.markRecordingManual(ctx, rec, log)
		return RecordingResult{Recording: rec}, extraction.ErrNotConfigured
	}

	transcript, err := s.transcriber.Transcribe(ctx, in.Audio, in.MimeType)
	if err != nil {
		log.Warn("recording: transcription failed", logger.F{"err": err.Error()})
		s.markRecordingManual(ctx, rec, log)
		return RecordingResult{Recording: rec}, err
	}
	rec.Transcript = transcript

	res, err := s.extractor.SummarizeTranscript(ctx, transcript, pet)
	if err != nil {
		log.Warn("recording: summarization failed", logger.F{"err": err.Error()})
		s.markRecordingManual(ctx, rec, log)
		return RecordingResult{Recording: rec}, err
	}

	saved, err := s.merge.Merge(ctx, petID, res)
	if err != nil {
		log.Error("recording: merge failed", logger.F{"err": err.Error()})
		s.markRecordingManual(ctx, rec, log)
		return RecordingResult{Recording: rec}, err
	}

	rec.Extracted, _ = json.Marshal(res)
	rec.ProcessingStatus = StatusCompleted
	if err := s.repo.UpdateRecording(ctx, rec); err != nil {
		log.Error("recording: update failed", logger.F{"err": err.Error()})
	}

	return RecordingResult{Recording: rec, Saved: saved, Extracted: &res}, nil
}

func (s *Service) GetDocument(ctx context.Context, id string) (Document, error) {
	d, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (s *Service) ListDocuments(ctx context.Context, petID string) ([]Document, error) {
	return s.repo.ListDocumentsByPet(ctx, petID)
}

func (s *Service) ListRecordings(ctx context.Context, petID string) ([]Recording, error) {
	return s.repo.ListRecordingsByPet(ctx, petID)
}

func (s *Service) markDocumentManual(ctx context.Context, doc Document, log logger.Logger) {
	doc.ProcessingStatus = StatusManual
	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		log.Error("upload: status update failed", logger.F{"err": err.Error()})
	}
}

func (s *Service) markRecordingManual(ctx context.Context, rec Recording, log logger.Logger) {
	rec.ProcessingStatus = StatusManual
	if err := s.repo.UpdateRecording(ctx, rec); err != nil {
		log.Error("recording: status update failed", logger.F{"err": err.Error()})
	}
}
