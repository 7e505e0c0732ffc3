package handler

import (
	"context"
	"errors"

	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/goevery/orderrelay/internal/presence"
	"github.com/goevery/orderrelay/internal/user"
)

type CreateProfileRequest struct {
	Id    string        `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
	Role  presence.Role `json:"role"`
}

type ProfileResponse struct {
	User user.Profile `json:"user"`
}

type UserHandlerInterface interface {
	CreateProfile(ctx context.Context, req CreateProfileRequest) (ProfileResponse, error)
}

// UserHandler stores the profile of a user the auth provider has already
// created.
type UserHandler struct {
	store user.Store
}

func NewUserHandler(store user.Store) *UserHandler {
	return &UserHandler{
		store,
	}
}

func (h *UserHandler) CreateProfile(ctx context.Context, req CreateProfileRequest) (ProfileResponse, error) {
	if req.Id == "" || req.Email == "" || req.Name == "" || req.Role == "" {
		return ProfileResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Missing required fields"))
	}

	if !req.Role.Valid() {
		return ProfileResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Invalid role"))
	}

	created, err := h.store.Create(ctx, user.NewProfile{
		Id:    req.Id,
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		return ProfileResponse{}, err
	}

	return ProfileResponse{User: created}, nil
}
