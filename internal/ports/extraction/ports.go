package extraction

import (
	"context"
	"errors"
)

// Errores tipados del capability. El handler de upload los usa para decidir
// el mensaje al usuario ("extracción no disponible" vs "no pude leer el
// documento"). Ninguno se reintenta automáticamente: el upload es iniciado
// por el usuario y se puede re-subir.
var (
	ErrNotConfigured = errors.New("extraction capability not configured")
	ErrService       = errors.New("extraction service error")
	ErrEmptyResponse = errors.New("extraction response empty")
	ErrParse         = errors.New("extraction response not parseable")
)

// Extractor convierte documentos o transcripciones en un Result tipado.
type Extractor interface {
	ExtractDocument(ctx context.Context, data []byte, mimeType string, pet PetContext) (Result, error)
	SummarizeTranscript(ctx context.Context, transcript string, pet PetContext) (Result, error)
}

// Transcriber convierte audio en texto plano.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}
