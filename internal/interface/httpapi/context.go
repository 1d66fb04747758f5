package httpapi

import (
	"context"

	"flightplan-service/internal/domain/entity"
)

type userKey struct{}

func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func UserFromContext(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(userKey{}).(*entity.User)
	return u, ok && u != nil
}
