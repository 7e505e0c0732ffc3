// Package room keeps the set of connections following each order.
package room

import "sync"

type Table interface {
	Join(orderId string, connectionId string)
	Members(orderId string) []string
	Leave(connectionId string)
}

type InMemoryTable struct {
	mu sync.RWMutex

	connectionsByOrder map[string]map[string]struct{}
	ordersByConnection map[string]map[string]struct{}
}

func NewInMemoryTable() *InMemoryTable {
	return &InMemoryTable{
		connectionsByOrder: make(map[string]map[string]struct{}),
		ordersByConnection: make(map[string]map[string]struct{}),
	}
}

func (t *InMemoryTable) Join(orderId string, connectionId string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.connectionsByOrder[orderId]; !ok {
		t.connectionsByOrder[orderId] = make(map[string]struct{})
	}
	t.connectionsByOrder[orderId][connectionId] = struct{}{}

	if _, ok := t.ordersByConnection[connectionId]; !ok {
		t.ordersByConnection[connectionId] = make(map[string]struct{})
	}
	t.ordersByConnection[connectionId][orderId] = struct{}{}
}

// Members returns a snapshot; callers may use it after the lock is released.
func (t *InMemoryTable) Members(orderId string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	connectionIds := t.connectionsByOrder[orderId]
	members := make([]string, 0, len(connectionIds))
	for connectionId := range connectionIds {
		members = append(members, connectionId)
	}

	return members
}

func (t *InMemoryTable) Leave(connectionId string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	orderIds, ok := t.ordersByConnection[connectionId]
	if !ok {
		return
	}

	for orderId := range orderIds {
		orderConnections, ok := t.connectionsByOrder[orderId]
		if !ok {
			panic("inconsistent state: order not found in connectionsByOrder")
		}

		delete(orderConnections, connectionId)
		if len(orderConnections) == 0 {
			delete(t.connectionsByOrder, orderId)
		}
	}

	delete(t.ordersByConnection, connectionId)
}
