package services

import "sync"

// Observable holds a value that other goroutines can read or follow.
// Subscribers get a single-slot channel that always holds the latest value;
// slow readers skip intermediate values but never block the publisher.
type Observable[T comparable] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]chan T
	nextID int
}

func NewObservable[T comparable](initial T) *Observable[T] {
	return &Observable[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

func (o *Observable[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Subscribe delivers the current value immediately, then every change.
// The returned func unsubscribes and closes the channel.
func (o *Observable[T]) Subscribe() (<-chan T, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan T, 1)
	ch <- o.value
	id := o.nextID
	o.nextID++
	o.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if sub, ok := o.subs[id]; ok {
				delete(o.subs, id)
				close(sub)
			}
		})
	}
}

// set stores v and reports whether it differed from the previous value.
func (o *Observable[T]) set(v T) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.value == v {
		return false
	}
	o.value = v
	for _, ch := range o.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
	return true
}

func (o *Observable[T]) closeAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, ch := range o.subs {
		delete(o.subs, id)
		close(ch)
	}
}
