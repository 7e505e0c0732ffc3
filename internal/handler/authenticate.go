package handler

import (
	"context"
	"errors"

	"github.com/goevery/orderrelay/internal/event"
	"github.com/goevery/orderrelay/internal/presence"
	"github.com/goevery/orderrelay/internal/relay"
	"go.uber.org/zap"
)

type TokenVerifier interface {
	Verify(token string, userId string, role presence.Role) error
}

type AuthenticateHandlerInterface interface {
	Handle(ctx context.Context, e event.Authenticate) error
}

type AuthenticateHandler struct {
	logger   *zap.Logger
	registry presence.Registry
	verifier TokenVerifier
}

// NewAuthenticateHandler accepts a nil verifier, in which case the claimed
// identity is trusted as sent.
func NewAuthenticateHandler(
	logger *zap.Logger,
	registry presence.Registry,
	verifier TokenVerifier,
) *AuthenticateHandler {
	return &AuthenticateHandler{
		logger,
		registry,
		verifier,
	}
}

func (h *AuthenticateHandler) Handle(ctx context.Context, e event.Authenticate) error {
	connection, ok := relay.ConnectionFromContext(ctx)
	if !ok {
		return errors.New("connection not found in context")
	}

	if h.verifier != nil {
		if err := h.verifier.Verify(e.Token, e.UserId, e.Role); err != nil {
			return err
		}
	}

	h.registry.Authenticate(connection.Id, e.UserId, e.Role)
	connection.SetIdentity(relay.Identity{
		UserId: e.UserId,
		Role:   e.Role,
	})

	h.logger.Info("user authenticated",
		zap.String("connectionId", connection.Id),
		zap.String("userId", e.UserId),
		zap.String("role", string(e.Role)))

	return nil
}
