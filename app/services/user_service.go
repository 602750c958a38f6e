package services

import (
	"context"
	"errors"
	"strings"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/pkg/apperr"
	"github.com/saydalia/saydalia/pkg/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgUserNotFound = "لم يتم العثور على المستخدم"

type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// ProfileInput carries the profile update payload. Empty fields keep
// their stored values.
type ProfileInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// Get returns a user by id, password blanked.
func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, apperr.NewNotFound(msgUserNotFound)
		}
		return models.User{}, apperr.NewInternal(err)
	}
	return u.Sanitize(), nil
}

// UpdateProfile edits a profile. Users may only edit themselves; a
// mismatched id is rejected, not masked, since account identity is not
// secret to its owner.
func (s *UserService) UpdateProfile(ctx context.Context, targetID primitive.ObjectID, actor models.User, in ProfileInput) (models.User, error) {
	if targetID != actor.ID {
		return models.User{}, apperr.NewForbidden(msgForbidden)
	}

	u, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, apperr.NewNotFound(msgUserNotFound)
		}
		return models.User{}, apperr.NewInternal(err)
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if email := strings.TrimSpace(strings.ToLower(in.Email)); email != "" {
		u.Email = email
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return models.User{}, apperr.NewInternal(err)
		}
		u.Password = hash
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if in.Address != "" {
		u.Address = in.Address
	}
	if in.City != "" {
		u.City = in.City
	}
	if in.PostalCode != "" {
		u.PostalCode = in.PostalCode
	}

	if err := s.users.Update(ctx, &u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, apperr.NewConflict(msgEmailTaken)
		}
		return models.User{}, apperr.NewInternal(err)
	}

	return u.Sanitize(), nil
}
