package documents

import "context"

type Repository interface {
	CreateDocument(ctx context.Context, d Document) error
	UpdateDocument(ctx context.Context, d Document) error
	GetDocument(ctx context.Context, id string) (Document, error)
	ListDocumentsByPet(ctx context.Context, petID string) ([]Document, error)

	CreateRecording(ctx context.Context, rec Recording) error
	UpdateRecording(ctx context.Context, rec Recording) error
	ListRecordingsByPet(ctx context.Context, petID string) ([]Recording, error)
}
