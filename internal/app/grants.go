package app

import (
	"sync"
	"time"

	"github.com/huddle-app/huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultApprovalGrace = 3 * time.Second

type grantKey struct {
	User domain.UserID
	Room domain.RoomID
}

type grant struct {
	at    time.Time
	timer *time.Timer
}

// GrantTable tracks recently approved (user, room) pairs. A grant keeps
// presence cleanup from evicting a user whose pre-approval connection
// drops before their post-approval reconnect lands. Entries are
// consumed on the user's next join and garbage-collected after the
// grace window regardless.
type GrantTable struct {
	window time.Duration

	mu     sync.Mutex
	grants map[grantKey]*grant
	closed bool
}

func NewGrantTable(window time.Duration) *GrantTable {
	if window <= 0 {
		window = DefaultApprovalGrace
	}
	return &GrantTable{window: window, grants: make(map[grantKey]*grant)}
}

// Grant records an approval for (user, room) and arms its expiry.
// Re-granting restarts the window.
func (t *GrantTable) Grant(user domain.UserID, room domain.RoomID) {
	key := grantKey{User: user, Room: room}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if old, ok := t.grants[key]; ok {
		old.timer.Stop()
	}
	g := &grant{at: time.Now()}
	g.timer = time.AfterFunc(t.window, func() { t.expire(key) })
	t.grants[key] = g
	log.Info().Str("module", "app.grants").Str("user", string(user)).Str("room", string(room)).Msg("approval grant created")
}

// Consume deletes the grant, reporting whether one existed. Called when
// the approved user's join lands.
func (t *GrantTable) Consume(user domain.UserID, room domain.RoomID) bool {
	key := grantKey{User: user, Room: room}
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.grants[key]
	if !ok {
		return false
	}
	g.timer.Stop()
	delete(t.grants, key)
	log.Info().Str("module", "app.grants").Str("user", string(user)).Str("room", string(room)).Msg("approval grant consumed")
	return true
}

// Active reports whether a non-expired grant exists for (user, room).
func (t *GrantTable) Active(user domain.UserID, room domain.RoomID) bool {
	key := grantKey{User: user, Room: room}
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.grants[key]
	return ok && time.Since(g.at) < t.window
}

// Close stops all outstanding expiry timers.
func (t *GrantTable) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for key, g := range t.grants {
		g.timer.Stop()
		delete(t.grants, key)
	}
}

func (t *GrantTable) expire(key grantKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.grants, key)
}
