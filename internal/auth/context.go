package auth

import (
	"context"

	"signal_board/internal/models"
)

type ctxKey struct{}

// WithUser кладёт текущего пользователя в контекст.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext — текущий пользователь, ok=false если его нет.
func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(models.User)
	if !ok || u.ID == "" {
		return models.User{}, false
	}
	return u, true
}
