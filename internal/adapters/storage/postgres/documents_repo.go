package postgres

import (
	"context"
	"database/sql"

	"petrecord/internal/domain/documents"
)

// DocumentsRepo guarda archivos y grabaciones con sus bytes en el mismo
// store relacional. El volumen esperado (fichas de mascotas de un dueño)
// no justifica un object store aparte.
type DocumentsRepo struct {
	db *sql.DB
}

func NewDocumentsRepo(db *sql.DB) *DocumentsRepo {
	return &DocumentsRepo{db: db}
}

func (r *DocumentsRepo) CreateDocument(ctx context.Context, d documents.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, pet_id, filename, mimetype, data, extracted,
			processing_status, upload_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, d.ID, d.PetID, d.Filename, d.MimeType, d.Data, nullBytes(d.Extracted),
		d.ProcessingStatus, d.UploadDate)
	return err
}

func (r *DocumentsRepo) UpdateDocument(ctx context.Context, d documents.Document) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET extracted = $2, processing_status = $3
		WHERE id = $1
	`, d.ID, nullBytes(d.Extracted), d.ProcessingStatus)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DocumentsRepo) GetDocument(ctx context.Context, id string) (documents.Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, pet_id, filename, mimetype, data, extracted,
		       processing_status, upload_date
		FROM documents
		WHERE id = $1
	`, id)

	var d documents.Document
	if err := row.Scan(&d.ID, &d.PetID, &d.Filename, &d.MimeType, &d.Data, &d.Extracted,
		&d.ProcessingStatus, &d.UploadDate); err != nil {
		if err == sql.ErrNoRows {
			return documents.Document{}, ErrNotFound
		}
		return documents.Document{}, err
	}
	return d, nil
}

func (r *DocumentsRepo) ListDocumentsByPet(ctx context.Context, petID string) ([]documents.Document, error) {
	// El listado no trae los bytes del archivo; para eso está GetDocument.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, filename, mimetype, processing_status, upload_date
		FROM documents
		WHERE pet_id = $1
		ORDER BY upload_date ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]documents.Document, 0)
	for rows.Next() {
		var d documents.Document
		if err := rows.Scan(&d.ID, &d.PetID, &d.Filename, &d.MimeType,
			&d.ProcessingStatus, &d.UploadDate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentsRepo) CreateRecording(ctx context.Context, rec documents.Recording) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recordings (
			id, pet_id, title, duration_seconds, mimetype, audio,
			transcript, extracted, processing_status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, rec.ID, rec.PetID, rec.Title, rec.DurationSeconds, rec.MimeType, rec.Audio,
		rec.Transcript, nullBytes(rec.Extracted), rec.ProcessingStatus, rec.CreatedAt)
	return err
}

func (r *DocumentsRepo) UpdateRecording(ctx context.Context, rec documents.Recording) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recordings
		SET transcript = $2, extracted = $3, processing_status = $4
		WHERE id = $1
	`, rec.ID, rec.Transcript, nullBytes(rec.Extracted), rec.ProcessingStatus)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DocumentsRepo) ListRecordingsByPet(ctx context.Context, petID string) ([]documents.Recording, error) {
	// Sin los bytes de audio, igual que el listado de documentos.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, title, duration_seconds, mimetype,
		       transcript, processing_status, created_at
		FROM recordings
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]documents.Recording, 0)
	for rows.Next() {
		var rec documents.Recording
		if err := rows.Scan(&rec.ID, &rec.PetID, &rec.Title, &rec.DurationSeconds, &rec.MimeType,
			&rec.Transcript, &rec.ProcessingStatus, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
