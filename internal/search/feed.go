package search

import "sync"

// Feed fans delivered responses out to any number of listeners and remembers the latest one, so a listener
// joining late still sees the current results. Publish can be passed to New as the deliver func.
type Feed[T any] struct {
	mu        sync.Mutex
	last      *Response[T]
	listeners map[uint64]func(Response[T])
	nextID    uint64
}

func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{listeners: map[uint64]func(Response[T]){}}
}

func (f *Feed[T]) Publish(r Response[T]) {
	f.mu.Lock()
	f.last = &r
	listeners := make([]func(Response[T]), 0, len(f.listeners))
	for _, l := range f.listeners {
		listeners = append(listeners, l)
	}
	f.mu.Unlock()

	for _, l := range listeners {
		l(r)
	}
}

// Last returns the most recently published response, if any.
func (f *Feed[T]) Last() (Response[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return Response[T]{}, false
	}
	return *f.last, true
}

func (f *Feed[T]) Subscribe(l func(Response[T])) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = l
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners, id)
			f.mu.Unlock()
		})
	}
}
