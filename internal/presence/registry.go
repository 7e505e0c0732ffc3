// Package presence tracks which application users are reachable on which live
// connection, and which of them are currently acting as couriers.
package presence

import (
	"sync"

	"go.uber.org/zap"
)

type Registry interface {
	// Authenticate binds userId to connectionId, replacing any previous binding.
	Authenticate(connectionId string, userId string, role Role)

	// Resolve returns the connection currently bound to userId.
	Resolve(userId string) (string, bool)

	// ResolveCourier returns the connection of userId only while it is
	// authenticated with the delivery role.
	ResolveCourier(userId string) (string, bool)

	// Forget drops every binding that still points at connectionId.
	Forget(connectionId string)
}

type entry struct {
	connectionId string
	role         Role
}

type InMemoryRegistry struct {
	logger *zap.Logger
	mu     sync.RWMutex

	users             map[string]entry
	couriers          map[string]string
	usersByConnection map[string]map[string]struct{}
}

func NewInMemoryRegistry(logger *zap.Logger) *InMemoryRegistry {
	return &InMemoryRegistry{
		logger:            logger,
		users:             make(map[string]entry),
		couriers:          make(map[string]string),
		usersByConnection: make(map[string]map[string]struct{}),
	}
}

func (r *InMemoryRegistry) Authenticate(connectionId string, userId string, role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.users[userId]; ok && previous.connectionId != connectionId {
		r.unindexLocked(previous.connectionId, userId)

		r.logger.Debug("user binding superseded",
			zap.String("userId", userId),
			zap.String("previousConnectionId", previous.connectionId),
			zap.String("connectionId", connectionId))
	}

	r.users[userId] = entry{connectionId: connectionId, role: role}

	if role.IsCourier() {
		r.couriers[userId] = connectionId
	} else {
		delete(r.couriers, userId)
	}

	if _, ok := r.usersByConnection[connectionId]; !ok {
		r.usersByConnection[connectionId] = make(map[string]struct{})
	}
	r.usersByConnection[connectionId][userId] = struct{}{}
}

func (r *InMemoryRegistry) Resolve(userId string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.users[userId]

	return e.connectionId, ok
}

func (r *InMemoryRegistry) ResolveCourier(userId string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connectionId, ok := r.couriers[userId]

	return connectionId, ok
}

func (r *InMemoryRegistry) Forget(connectionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userIds, ok := r.usersByConnection[connectionId]
	if !ok {
		return
	}

	for userId := range userIds {
		if e, ok := r.users[userId]; ok && e.connectionId == connectionId {
			delete(r.users, userId)
			delete(r.couriers, userId)
		}
	}

	delete(r.usersByConnection, connectionId)
}

// IMPORTANT: It must be called only when a write lock is already held.
func (r *InMemoryRegistry) unindexLocked(connectionId string, userId string) {
	userIds, ok := r.usersByConnection[connectionId]
	if !ok {
		return
	}

	delete(userIds, userId)
	if len(userIds) == 0 {
		delete(r.usersByConnection, connectionId)
	}
}
