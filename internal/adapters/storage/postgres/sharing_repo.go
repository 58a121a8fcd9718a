package postgres

import (
	"context"
	"database/sql"

	"petrecord/internal/domain/sharing"
)

type SharingRepo struct {
	db *sql.DB
}

func NewSharingRepo(db *sql.DB) *SharingRepo {
	return &SharingRepo{db: db}
}

func (r *SharingRepo) Create(ctx context.Context, t sharing.AccessToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_tokens (
			id, user_id, pet_id, token, permission_level,
			valid_until, is_active, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, t.ID, t.UserID, t.PetID, t.Token, t.PermissionLevel,
		toNullDate(t.ValidUntil), t.IsActive, t.CreatedAt)
	return err
}

func (r *SharingRepo) Update(ctx context.Context, t sharing.AccessToken) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE access_tokens
		SET permission_level = $2, valid_until = $3, is_active = $4
		WHERE id = $1
	`, t.ID, t.PermissionLevel, toNullDate(t.ValidUntil), t.IsActive)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SharingRepo) GetByID(ctx context.Context, id string) (sharing.AccessToken, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *SharingRepo) GetByToken(ctx context.Context, token string) (sharing.AccessToken, error) {
	return r.get(ctx, `WHERE token = $1`, token)
}

func (r *SharingRepo) get(ctx context.Context, where, arg string) (sharing.AccessToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, pet_id, token, permission_level,
		       valid_until, is_active, created_at
		FROM access_tokens
	`+where, arg)

	var t sharing.AccessToken
	var until sql.NullTime
	if err := row.Scan(&t.ID, &t.UserID, &t.PetID, &t.Token, &t.PermissionLevel,
		&until, &t.IsActive, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return sharing.AccessToken{}, ErrNotFound
		}
		return sharing.AccessToken{}, err
	}
	if until.Valid {
		u := until.Time
		t.ValidUntil = &u
	}
	return t, nil
}

func (r *SharingRepo) ListByUser(ctx context.Context, userID string) ([]sharing.AccessToken, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, pet_id, token, permission_level,
		       valid_until, is_active, created_at
		FROM access_tokens
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]sharing.AccessToken, 0)
	for rows.Next() {
		var t sharing.AccessToken
		var until sql.NullTime
		if err := rows.Scan(&t.ID, &t.UserID, &t.PetID, &t.Token, &t.PermissionLevel,
			&until, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		if until.Valid {
			u := until.Time
			t.ValidUntil = &u
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
