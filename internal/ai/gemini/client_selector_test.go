package gemini

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetNextClient_RoundRobin(t *testing.T) {
	clients := []*Client{{}, {}, {}}
	s := NewClientSelector(clients)

	_, first := s.GetNextClient()
	_, second := s.GetNextClient()
	_, third := s.GetNextClient()
	_, wrapped := s.GetNextClient()

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, third)
	assert.Equal(t, 0, wrapped)
}

func TestGetNextClient_Empty(t *testing.T) {
	s := NewClientSelector(nil)

	client, idx := s.GetNextClient()
	assert.Nil(t, client)
	assert.Equal(t, -1, idx)
}

func TestTryAllClients_FailoverThenSuccess(t *testing.T) {
	s := NewClientSelector([]*Client{{}, {}, {}})

	attempts := 0
	err := s.TryAllClients(func(c *Client, idx int) error {
		attempts++
		if attempts < 3 {
			return errors.New("quota exceeded")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestTryAllClients_AllFail(t *testing.T) {
	s := NewClientSelector([]*Client{{}, {}})

	err := s.TryAllClients(func(c *Client, idx int) error {
		return errors.New("unavailable")
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 Gemini clients failed")
}

func TestStripMarkdownJSON(t *testing.T) {
	assert.Equal(t, `{"mode":"analytics"}`, stripMarkdownJSON("```json\n{\"mode\":\"analytics\"}\n```"))
	assert.Equal(t, `{"mode":"analytics"}`, stripMarkdownJSON("```\n{\"mode\":\"analytics\"}\n```"))
	assert.Equal(t, `{"mode":"analytics"}`, stripMarkdownJSON(`{"mode":"analytics"}`))
}
