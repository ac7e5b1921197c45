package app

import (
	"sync"

	"github.com/huddle-app/huddle/internal/domain"
)

type recordedEvent struct {
	Conn  domain.ConnID
	Event string
	Data  any
}

// fakeEmitter records every unicast for assertions.
type fakeEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEmitter) Unicast(id domain.ConnID, event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Conn: id, Event: event, Data: data})
}

func (f *fakeEmitter) all() []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedEvent(nil), f.events...)
}

func (f *fakeEmitter) byEvent(event string) []recordedEvent {
	var out []recordedEvent
	for _, e := range f.all() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeEmitter) forConn(id domain.ConnID, event string) []recordedEvent {
	var out []recordedEvent
	for _, e := range f.all() {
		if e.Conn == id && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeEmitter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}
