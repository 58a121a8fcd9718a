package sharing

import "context"

type Repository interface {
	Create(ctx context.Context, t AccessToken) error
	Update(ctx context.Context, t AccessToken) error
	GetByID(ctx context.Context, id string) (AccessToken, error)
	GetByToken(ctx context.Context, token string) (AccessToken, error)
	ListByUser(ctx context.Context, userID string) ([]AccessToken, error)
}
