package inmemory

import (
	"sync"

	"github.com/watchparty/server/internal/repository/connection"
)

type repo struct {
	senders map[string]connection.Sender
	mu      sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		senders: make(map[string]connection.Sender),
	}
}

func (r *repo) Add(participantId string, sender connection.Sender) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.senders[participantId]; ok {
		return connection.ErrAlreadyExists
	}

	r.senders[participantId] = sender

	return nil
}

func (r *repo) Remove(participantId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.senders[participantId]; !ok {
		return connection.ErrNotFound
	}

	delete(r.senders, participantId)

	return nil
}

func (r *repo) Get(participantId string) (connection.Sender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sender, ok := r.senders[participantId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return sender, nil
}
