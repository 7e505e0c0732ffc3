package relay

import "sync"

// Directory maps connection ids to the live connections of this process.
type Directory struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

func NewDirectory() *Directory {
	return &Directory{
		connections: make(map[string]*Connection),
	}
}

func (d *Directory) Add(connection *Connection) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.connections[connection.Id] = connection
}

func (d *Directory) Remove(connectionId string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.connections, connectionId)
}

func (d *Directory) Get(connectionId string) (*Connection, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	connection, ok := d.connections[connectionId]

	return connection, ok
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.connections)
}
