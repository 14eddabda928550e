package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/storage"
)

var validate = validator.New()

type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
}

func ValidateCreateUserRequest(req *CreateUserRequest) error {
	return validate.Struct(req)
}

// CreateOrGetUser is idempotent: a repeated username returns the existing
// record and never creates a duplicate.
func CreateOrGetUser(ctx context.Context, userRepo storage.UserRepository, username string) (*internal.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, internal.NewValidationError("username must not be empty")
	}

	user := &internal.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now(),
	}
	// The store resolves the username race: it either inserts this record
	// or hands back the one that won.
	return userRepo.CreateUser(ctx, user)
}
