package queue

import (
	"github.com/sidereusnuntius/tabletop/internal/domain"
)

type State string

const (
	StateQueued  State = "queued"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// ImportStatus is kept in memory only; after a restart jobs still run, but their status is unknown.
type ImportStatus struct {
	ID        string
	Request   domain.ImportRequest
	State     State
	Character *domain.Character
	Err       string
}

func (s ImportStatus) Finished() bool {
	return s.State == StateDone || s.State == StateFailed
}

func (q *importQueueImpl) Status(id string) (ImportStatus, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.statuses[id]
	return s, ok
}

func (q *importQueueImpl) Subscribe(f func(ImportStatus)) (unsubscribe func()) {
	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.listeners[id] = f
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.listeners, id)
		q.mu.Unlock()
	}
}

func (q *importQueueImpl) update(s ImportStatus) {
	q.mu.Lock()
	q.statuses[s.ID] = s
	listeners := make([]func(ImportStatus), 0, len(q.listeners))
	for _, f := range q.listeners {
		listeners = append(listeners, f)
	}
	q.mu.Unlock()

	for _, f := range listeners {
		f(s)
	}
}
