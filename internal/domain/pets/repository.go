package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)

	// Delete borra la mascota y sus entidades hijas. La cascada es contrato
	// del storage: FKs ON DELETE CASCADE en postgres, limpieza de mapas en
	// el adapter in-memory.
	Delete(ctx context.Context, id string) error
}
