package documents

import "time"

// ProcessingStatus indica cómo quedó el documento después del pipeline de
// extracción. "manual" significa que la extracción falló y el contenido
// queda para carga a mano; "email" marca documentos que entraron por la
// casilla de reenvío.
type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusCompleted ProcessingStatus = "completed"
	StatusManual    ProcessingStatus = "manual"
	StatusEmail     ProcessingStatus = "email"
)

// Document es un archivo clínico subido (PDF, imagen). Los bytes viven en
// el mismo store que los metadatos.
type Document struct {
	ID    string
	PetID string

	Filename string
	MimeType string
	Data     []byte

	// Extracted guarda el JSON crudo que devolvió la extracción, para
	// auditar qué se mergeó.
	Extracted        []byte
	ProcessingStatus ProcessingStatus

	UploadDate time.Time
}

// Recording es una consulta grabada: audio, su transcripción y el resumen
// estructurado que salió de ella.
type Recording struct {
	ID    string
	PetID string

	Title           string
	DurationSeconds int
	MimeType        string
	Audio           []byte

	Transcript       string
	Extracted        []byte
	ProcessingStatus ProcessingStatus

	CreatedAt time.Time
}
