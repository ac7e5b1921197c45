package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddle-app/huddle/internal/app"
	"github.com/huddle-app/huddle/internal/config"
	"github.com/huddle-app/huddle/internal/domain"
	"github.com/huddle-app/huddle/internal/store/memory"
)

func newTestServer(t *testing.T, rooms ...*domain.Room) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	for _, r := range rooms {
		require.NoError(t, st.Create(context.Background(), r))
	}

	cfg := &config.Config{
		PingPeriod:          30 * time.Second,
		ReadLimit:           65536,
		SignalRetryInterval: 10 * time.Millisecond,
		SignalMaxAge:        time.Second,
		ApprovalGrace:       time.Second,
	}
	ctl := NewController(cfg)
	presence := app.NewPresence()
	gateway := app.NewGateway(st)
	grants := app.NewGrantTable(cfg.ApprovalGrace)
	buffer := app.NewSignalBuffer(presence, ctl, cfg.SignalRetryInterval, cfg.SignalMaxAge)
	coord := app.NewCoordinator(presence, gateway, grants, buffer, ctl)
	ctl.Coord = coord
	t.Cleanup(coord.Close)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func sendEvent(t *testing.T, ws *websocket.Conn, event string, data any) {
	t.Helper()
	b, err := encodeEnvelope(event, data)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, b))
}

// awaitEvent reads frames until one matches the event name and the
// optional predicate, skipping unrelated notifications.
func awaitEvent(t *testing.T, ws *websocket.Conn, event string, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, b, err := ws.ReadMessage()
		require.NoError(t, err, "waiting for %s", event)
		var env envelope
		require.NoError(t, json.Unmarshal(b, &env))
		if env.Event != event {
			continue
		}
		if match == nil || match(env.Data) {
			return env.Data
		}
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	b, err := encodeEnvelope("participants-update", app.ParticipantsUpdate{
		Participants: []domain.UserID{"host"},
		CreatedBy:    "host",
		HostActive:   true,
	})
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, "participants-update", env.Event)

	var got app.ParticipantsUpdate
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.HostActive)
}

func TestJoinRoomOverWebSocket(t *testing.T) {
	srv := newTestServer(t, &domain.Room{
		RoomID:       "ab12cd34",
		CreatedBy:    "host",
		Participants: []domain.UserID{"host"},
	})

	ws := dialWS(t, srv)
	sendEvent(t, ws, "join-room", map[string]any{"roomid": "ab12cd34", "userid": "host"})

	data := awaitEvent(t, ws, "participants-update", nil)
	var got app.ParticipantsUpdate
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []domain.UserID{"host"}, got.Participants)
	assert.Equal(t, domain.UserID("host"), got.CreatedBy)
	assert.True(t, got.HostActive)

	awaitEvent(t, ws, "waiting-update", nil)
}

func TestLobbyApprovalOverWebSocket(t *testing.T) {
	srv := newTestServer(t, &domain.Room{
		RoomID:       "ab12cd34",
		CreatedBy:    "host",
		Locked:       true,
		Participants: []domain.UserID{"host"},
	})

	host := dialWS(t, srv)
	sendEvent(t, host, "join-room", map[string]any{"roomid": "ab12cd34", "userid": "host"})
	awaitEvent(t, host, "participants-update", nil)

	guest := dialWS(t, srv)
	sendEvent(t, guest, "join-room", map[string]any{"roomid": "ab12cd34", "userid": "alice"})
	awaitEvent(t, guest, "waiting-update", nil)

	sendEvent(t, guest, "ask-join", map[string]any{"roomid": "ab12cd34", "userid": "alice"})
	awaitEvent(t, host, "waiting-update", func(data json.RawMessage) bool {
		var w app.WaitingUpdate
		return json.Unmarshal(data, &w) == nil && len(w.WaitingParticipants) == 1
	})

	sendEvent(t, host, "host-approve", map[string]any{"roomid": "ab12cd34", "userid": "alice", "approve": true})

	data := awaitEvent(t, guest, "participant-approved", nil)
	var res app.ApprovalResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.True(t, res.Approve)
	assert.Equal(t, domain.UserID("alice"), res.UserID)
}

func TestMediaRelayOverWebSocket(t *testing.T) {
	srv := newTestServer(t, &domain.Room{
		RoomID:       "ab12cd34",
		CreatedBy:    "host",
		Participants: []domain.UserID{"host"},
	})

	host := dialWS(t, srv)
	sendEvent(t, host, "join-room", map[string]any{"roomid": "ab12cd34", "userid": "host"})
	awaitEvent(t, host, "participants-update", nil)

	guest := dialWS(t, srv)
	sendEvent(t, guest, "join-room", map[string]any{"roomid": "ab12cd34", "userid": "alice"})
	awaitEvent(t, guest, "participants-update", nil)

	sendEvent(t, host, "media-offer", map[string]any{
		"to":      "alice",
		"from":    "host",
		"payload": map[string]any{"sdp": "v=0"},
	})

	data := awaitEvent(t, guest, "media-offer", nil)
	var sig app.SignalPayload
	require.NoError(t, json.Unmarshal(data, &sig))
	assert.Equal(t, domain.UserID("host"), sig.From)
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(sig.Payload))
}
