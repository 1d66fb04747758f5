package repository

import (
	"context"

	"flightplan-service/internal/domain/entity"
)

// UserService verifies a credential pair. A nil user with a nil error means
// the credentials were rejected.
type UserService interface {
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
}
