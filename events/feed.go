package events

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"
)

type Callback[T any] func(data T)

type subscription[T any] struct {
	sub  event.Subscription
	ch   chan T
	done sync.WaitGroup
}

// FeedOf wraps go-ethereum's event.FeedOf with named callback subscribers.
// Subscribing twice under one name replaces the earlier callback.
type FeedOf[T any] struct {
	feed event.FeedOf[T]

	mu            sync.Mutex
	subscriptions map[string]*subscription[T]
}

// Send delivers data to every subscriber and returns how many received it.
// It blocks until each subscriber has taken the value.
func (f *FeedOf[T]) Send(data T) int {
	return f.feed.Send(data)
}

func (f *FeedOf[T]) Subscribe(name string, callback Callback[T]) {
	f.Unsubscribe(name).Wait()

	s := &subscription[T]{ch: make(chan T)}
	s.sub = f.feed.Subscribe(s.ch)
	s.done.Add(1)
	go func() {
		defer s.done.Done()
		for {
			select {
			case data := <-s.ch:
				callback(data)
			case <-s.sub.Err():
				return
			}
		}
	}()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscriptions == nil {
		f.subscriptions = make(map[string]*subscription[T])
	}
	f.subscriptions[name] = s
}

// Unsubscribe removes the named subscriber. The returned group is done once
// its callback goroutine has exited.
func (f *FeedOf[T]) Unsubscribe(name string) *sync.WaitGroup {
	f.mu.Lock()
	s, ok := f.subscriptions[name]
	delete(f.subscriptions, name)
	f.mu.Unlock()
	if !ok {
		return &sync.WaitGroup{}
	}
	s.sub.Unsubscribe()
	return &s.done
}
