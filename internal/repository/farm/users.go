package farm

import (
	"context"

	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/storage"
)

// UserRepository reads the static user list written by the seed.
type UserRepository struct {
	coll *storage.Collection[models.AppUser]
}

func (u *UserRepository) GetAll(ctx context.Context) ([]models.AppUser, error) {
	return u.coll.GetAll(ctx)
}

func (u *UserRepository) GetByID(ctx context.Context, id string) (models.AppUser, bool, error) {
	users, err := u.coll.GetAll(ctx)
	if err != nil {
		return models.AppUser{}, false, err
	}
	for _, user := range users {
		if user.ID == id {
			return user, true, nil
		}
	}
	return models.AppUser{}, false, nil
}

// ByRole returns the first user holding role.
func (u *UserRepository) ByRole(ctx context.Context, role models.Role) (models.AppUser, bool, error) {
	users, err := u.coll.GetAll(ctx)
	if err != nil {
		return models.AppUser{}, false, err
	}
	for _, user := range users {
		if user.Role == role {
			return user, true, nil
		}
	}
	return models.AppUser{}, false, nil
}

func (u *UserRepository) setAll(ctx context.Context, users []models.AppUser) error {
	return u.coll.SetAll(ctx, users)
}
