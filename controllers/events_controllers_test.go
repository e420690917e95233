package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/realtime"
)

// dialEvents opens a hostel's event stream through the full middleware
// chain, authenticating with the ?token= fallback browsers use.
func dialEvents(t *testing.T, serverURL string, hostelID uint, token string) *websocket.Conn {
	t.Helper()

	wsURL := fmt.Sprintf("%s/api/hostels/%d/events/ws?token=%s",
		"ws"+strings.TrimPrefix(serverURL, "http"), hostelID, token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func TestEventStreamScopedToHostel(t *testing.T) {
	db, r := setupApp(t)

	hostelA := seedHostel(t, db, "Stream A", "STA")
	hostelB := seedHostel(t, db, "Stream B", "STB")
	floor := seedFloor(t, db, hostelA.ID, 1)

	memberA := newActor(t, db, "StreamMemberA")
	bindRole(t, db, memberA.User.ID, models.RoleStudent, &hostelA.ID)
	memberB := newActor(t, db, "StreamMemberB")
	bindRole(t, db, memberB.User.ID, models.RoleStudent, &hostelB.ID)
	warden := newActor(t, db, "StreamWarden")
	bindRole(t, db, warden.User.ID, models.RoleWarden, &hostelA.ID)

	srv := httptest.NewServer(r)
	defer srv.Close()

	connA := dialEvents(t, srv.URL, hostelA.ID, memberA.Token)
	defer connA.Close()
	connB := dialEvents(t, srv.URL, hostelB.ID, memberB.Token)
	defer connB.Close()

	// Registration happens in the handler after the dial returns.
	require.Eventually(t, func() bool {
		return realtime.ClientCount(hostelA.ID) == 1 && realtime.ClientCount(hostelB.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A room created in hostel A reaches A's watcher...
	w := doRequest(r, http.MethodPost, hostelPath(hostelA.ID, "/rooms"), warden.Token, map[string]interface{}{
		"floor_id": floor.ID,
		"number":   "101",
		"capacity": 2,
	})
	requireStatus(t, w, http.StatusCreated)

	require.NoError(t, connA.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := connA.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string `json:"event"`
		Data  struct {
			Number string `json:"number"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, "room_update", msg.Event)
	assert.Equal(t, "101", msg.Data.Number)

	// ...and never the neighbour's watcher.
	require.NoError(t, connB.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err = connB.ReadMessage()
	require.Error(t, err, "hostel B must not see hostel A events")

	// A gone client is pruned instead of wedging future broadcasts.
	connA.Close()
	realtime.BroadcastToHostel(hostelA.ID, realtime.EventRoomUpdate, nil)
	require.Eventually(t, func() bool {
		return realtime.ClientCount(hostelA.ID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEventStreamRequiresMembership(t *testing.T) {
	db, r := setupApp(t)

	hostel := seedHostel(t, db, "Stream C", "STC")
	outsider := newActor(t, db, "StreamOutsider")

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := fmt.Sprintf("%s/api/hostels/%d/events/ws?token=%s",
		"ws"+strings.TrimPrefix(srv.URL, "http"), hostel.ID, outsider.Token)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
