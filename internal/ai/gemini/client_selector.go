package gemini

import (
	"fmt"
	"log/slog"
	"sync"
)

// ClientSelector manages round-robin selection and failover across
// multiple Gemini clients (one per API key).
type ClientSelector struct {
	clients      []*Client
	currentIndex int
	mutex        sync.Mutex
}

func NewClientSelector(clients []*Client) *ClientSelector {
	return &ClientSelector{clients: clients}
}

// GetNextClient returns the next client in round-robin order.
func (s *ClientSelector) GetNextClient() (*Client, int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.clients) == 0 {
		return nil, -1
	}

	client := s.clients[s.currentIndex]
	index := s.currentIndex
	s.currentIndex = (s.currentIndex + 1) % len(s.clients)
	return client, index
}

func (s *ClientSelector) GetClientCount() int {
	return len(s.clients)
}

// TryAllClients attempts the operation with all clients until one succeeds.
func (s *ClientSelector) TryAllClients(operation func(*Client, int) error) error {
	clientCount := s.GetClientCount()
	if clientCount == 0 {
		return fmt.Errorf("no Gemini clients available")
	}

	var lastErr error
	for attempt := 0; attempt < clientCount; attempt++ {
		client, clientIdx := s.GetNextClient()

		err := operation(client, clientIdx)
		if err == nil {
			return nil
		}

		lastErr = err
		slog.Warn("Gemini API request failed, trying next client",
			"client_index", clientIdx,
			"attempt", attempt+1,
			"error", err)
	}

	return fmt.Errorf("all %d Gemini clients failed, last error: %w", clientCount, lastErr)
}
