package app

import (
	"sync"
	"time"

	"github.com/huddle-app/huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSignalRetryInterval = 200 * time.Millisecond
	DefaultSignalMaxAge        = 2 * time.Second
)

type bufferedSignal struct {
	Event string
	Data  any
	At    time.Time
}

// SignalBuffer is the store-and-forward queue for point-to-point
// signaling. Offers and answers are racily produced the instant two
// participants see each other, often before the later participant's
// channel finished its join handshake; a short bounded buffer absorbs
// that race. Entries older than maxAge are dropped so stale signaling
// for users that never join cannot accumulate.
type SignalBuffer struct {
	presence *Presence
	emit     Emitter
	retry    time.Duration
	maxAge   time.Duration

	mu      sync.Mutex
	pending map[domain.UserID][]bufferedSignal
	loops   map[domain.UserID]chan struct{}
	closed  bool
}

func NewSignalBuffer(presence *Presence, emit Emitter, retry, maxAge time.Duration) *SignalBuffer {
	if retry <= 0 {
		retry = DefaultSignalRetryInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultSignalMaxAge
	}
	return &SignalBuffer{
		presence: presence,
		emit:     emit,
		retry:    retry,
		maxAge:   maxAge,
		pending:  make(map[domain.UserID][]bufferedSignal),
		loops:    make(map[domain.UserID]chan struct{}),
	}
}

// Relay delivers the event to every live connection of the recipient,
// or buffers it and arms the retry loop when none exist.
func (b *SignalBuffer) Relay(to domain.UserID, event string, data any) {
	conns := b.presence.ConnsOfUser(to)
	if len(conns) > 0 {
		for _, id := range conns {
			b.emit.Unicast(id, event, data)
		}
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.pending[to] = append(b.pending[to], bufferedSignal{Event: event, Data: data, At: time.Now()})
	log.Debug().Str("module", "app.buffer").Str("user", string(to)).Str("event", event).Msg("queued signal")
	if _, running := b.loops[to]; !running {
		stop := make(chan struct{})
		b.loops[to] = stop
		go b.retryLoop(to, stop)
	}
}

// Flush delivers any buffered signals for the user right away, in
// enqueue order, and stops their retry loop. Called on join-room. If
// the user still has no connections the buffer is left armed.
func (b *SignalBuffer) Flush(user domain.UserID) {
	if len(b.presence.ConnsOfUser(user)) == 0 {
		return
	}
	b.mu.Lock()
	queued := b.pending[user]
	delete(b.pending, user)
	stop, running := b.loops[user]
	delete(b.loops, user)
	b.mu.Unlock()

	if running {
		close(stop)
	}
	b.deliver(user, queued)
}

// Close stops every retry loop. Buffered entries are discarded.
func (b *SignalBuffer) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	loops := b.loops
	b.loops = make(map[domain.UserID]chan struct{})
	b.pending = make(map[domain.UserID][]bufferedSignal)
	b.mu.Unlock()

	for _, stop := range loops {
		close(stop)
	}
}

func (b *SignalBuffer) retryLoop(user domain.UserID, stop chan struct{}) {
	ticker := time.NewTicker(b.retry)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if b.tick(user) {
				return
			}
		}
	}
}

// tick runs one retry pass. Reports true when this loop is done and has
// removed itself from the table.
func (b *SignalBuffer) tick(user domain.UserID) bool {
	conns := b.presence.ConnsOfUser(user)

	b.mu.Lock()
	if _, running := b.loops[user]; !running {
		// Flushed or closed concurrently; the stop signal is on its way.
		b.mu.Unlock()
		return true
	}

	if len(conns) > 0 {
		queued := b.pending[user]
		delete(b.pending, user)
		delete(b.loops, user)
		b.mu.Unlock()
		b.deliver(user, queued)
		return true
	}

	cutoff := time.Now().Add(-b.maxAge)
	fresh := b.pending[user][:0]
	for _, sig := range b.pending[user] {
		if sig.At.After(cutoff) {
			fresh = append(fresh, sig)
		}
	}
	if len(fresh) == 0 {
		delete(b.pending, user)
		delete(b.loops, user)
		b.mu.Unlock()
		log.Debug().Str("module", "app.buffer").Str("user", string(user)).Msg("buffered signals expired")
		return true
	}
	b.pending[user] = fresh
	b.mu.Unlock()
	return false
}

func (b *SignalBuffer) deliver(user domain.UserID, queued []bufferedSignal) {
	if len(queued) == 0 {
		return
	}
	conns := b.presence.ConnsOfUser(user)
	if len(conns) == 0 {
		return
	}
	log.Info().Str("module", "app.buffer").Str("user", string(user)).Int("count", len(queued)).Msg("flushing buffered signals")
	for _, sig := range queued {
		for _, id := range conns {
			b.emit.Unicast(id, sig.Event, sig.Data)
		}
	}
}
