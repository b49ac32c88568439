package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Manager tracks registered server configs and their live connections.
type Manager struct {
	mu      sync.Mutex
	configs map[string]ServerConfig
	clients map[string]*Client
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		configs: map[string]ServerConfig{},
		clients: map[string]*Client{},
	}
}

// Register stores a server config under its name, replacing any
// previous registration.
func (m *Manager) Register(config ServerConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[config.Name] = config
}

// Connect dials a registered server. Connecting an already connected
// server returns the existing client.
func (m *Manager) Connect(ctx context.Context, name string) (*Client, error) {
	m.mu.Lock()
	config, registered := m.configs[name]
	if !registered {
		m.mu.Unlock()
		return nil, fmt.Errorf("mcp: server %q is not registered", name)
	}
	if client, connected := m.clients[name]; connected {
		m.mu.Unlock()
		return client, nil
	}
	m.mu.Unlock()

	client, err := Dial(ctx, config)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, connected := m.clients[name]; connected {
		_ = client.Close()
		return existing, nil
	}
	m.clients[name] = client
	return client, nil
}

// Disconnect closes one server connection.
func (m *Manager) Disconnect(name string) error {
	m.mu.Lock()
	client, connected := m.clients[name]
	delete(m.clients, name)
	m.mu.Unlock()
	if !connected {
		return fmt.Errorf("mcp: server %q is not connected", name)
	}
	return client.Close()
}

// DisconnectAll closes every live connection.
func (m *Manager) DisconnectAll() {
	m.mu.Lock()
	clients := m.clients
	m.clients = map[string]*Client{}
	m.mu.Unlock()
	for _, client := range clients {
		_ = client.Close()
	}
}

// Client returns a live connection by name.
func (m *Manager) Client(name string) (*Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	client, connected := m.clients[name]
	return client, connected
}

// Registered lists all known server names.
func (m *Manager) Registered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.configs)
}

// Connected lists servers with live connections.
func (m *Manager) Connected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.clients)
}

func sortedKeys[V any](items map[string]V) []string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
