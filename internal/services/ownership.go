package services

import (
	"errors"

	"storedir/internal/models"
)

// ErrNotOwner is returned when a user edits a store they did not create.
var ErrNotOwner = errors.New("user does not own the store")

// ConfirmOwner returns ErrNotOwner unless user is the store's author.
func ConfirmOwner(store *models.Store, user *models.User) error {
	if store == nil || user == nil || store.AuthorID != user.ID {
		return ErrNotOwner
	}
	return nil
}
