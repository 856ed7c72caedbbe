package server

import (
	"log/slog"
	"sync"
)

// ConnectionManager tracks live connections so shutdown can close whatever is
// still open once the grace period runs out.
type ConnectionManager struct {
	clients map[string]*Connection
	// every live connection
	// key: connection ID, value: the connection owning the socket
	mu     sync.RWMutex // writers add/remove, readers count and close
	logger *slog.Logger // already tagged with component=server
}

func NewConnectionManager(logger *slog.Logger) *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*Connection),
		logger:  logger,
	}
}

func (m *ConnectionManager) AddConnection(client *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client // register by ID so removal needs no scan
	m.logger.Debug("client_added", "conn_id", client.ID)
}

func (m *ConnectionManager) RemoveConnection(client *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, client.ID)
	m.logger.Debug("client_removed", "conn_id", client.ID)
}

// CloseAllConnections closes every tracked socket. The connection loops then
// fail their pending read and unregister themselves.
func (m *ConnectionManager) CloseAllConnections() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, client := range m.clients {
		client.Close()
		m.logger.Info("client_connection_closed", "conn_id", id)
	}
}

func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
