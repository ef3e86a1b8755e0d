package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsPair dials the test server and returns the client side plus the
// server-side conn wrapped for the hub.
type wsPair struct {
	client *websocket.Conn
	server *clientConn
}

func newWsFixture(t *testing.T) (dial func() wsPair) {
	t.Helper()

	serverConns := make(chan *websocket.Conn, 8)
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConns <- conn
	}))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	return func() wsPair {
		client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		t.Cleanup(func() { client.Close() })

		select {
		case sc := <-serverConns:
			return wsPair{client: client, server: &clientConn{rawConn: sc}}
		case <-time.After(2 * time.Second):
			t.Fatal("server side of the websocket never arrived")
			return wsPair{}
		}
	}
}

func readWithDeadline(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return data
}

func TestHubBroadcastReachesAllRoomMembers(t *testing.T) {
	dial := newWsFixture(t)
	hub := NewHub()

	a, b := dial(), dial()
	hub.Join("ABCD", a.server)
	hub.Join("ABCD", b.server)
	require.Equal(t, 2, hub.Conns("ABCD"))

	hub.Broadcast("ABCD", []byte("hello room"))

	assert.Equal(t, "hello room", string(readWithDeadline(t, a.client)))
	assert.Equal(t, "hello room", string(readWithDeadline(t, b.client)))
}

func TestHubBroadcastIsRoomScoped(t *testing.T) {
	dial := newWsFixture(t)
	hub := NewHub()

	a, b := dial(), dial()
	hub.Join("ABCD", a.server)
	hub.Join("WXYZ", b.server)

	hub.Broadcast("ABCD", []byte("only abcd"))

	assert.Equal(t, "only abcd", string(readWithDeadline(t, a.client)))

	require.NoError(t, b.client.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := b.client.ReadMessage()
	assert.Error(t, err, "member of another room must receive nothing")
}

func TestHubBroadcastUnknownRoomIsNoOp(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Broadcast("NONE", []byte("into the void"))
	})
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	dial := newWsFixture(t)
	hub := NewHub()

	a, b := dial(), dial()
	hub.Join("ABCD", a.server)
	hub.Join("ABCD", b.server)

	hub.Leave("ABCD", b.server)
	require.Equal(t, 1, hub.Conns("ABCD"))

	hub.Broadcast("ABCD", []byte("after leave"))
	assert.Equal(t, "after leave", string(readWithDeadline(t, a.client)))

	require.NoError(t, b.client.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := b.client.ReadMessage()
	assert.Error(t, err)
}

func TestHubDropsEmptyRooms(t *testing.T) {
	dial := newWsFixture(t)
	hub := NewHub()

	a := dial()
	hub.Join("ABCD", a.server)
	hub.Leave("ABCD", a.server)

	assert.Equal(t, 0, hub.Conns("ABCD"))
	hub.mu.RLock()
	_, lingering := hub.rooms["ABCD"]
	hub.mu.RUnlock()
	assert.False(t, lingering)
}

func TestHubEvictsDeadPeerWithoutStallingOthers(t *testing.T) {
	dial := newWsFixture(t)
	hub := NewHub()

	alive, dead := dial(), dial()
	hub.Join("ABCD", alive.server)
	hub.Join("ABCD", dead.server)

	// Kill the peer's transport; its write will fail and it gets evicted.
	dead.server.rawConn.Close()

	hub.Broadcast("ABCD", []byte("still flowing"))
	assert.Equal(t, "still flowing", string(readWithDeadline(t, alive.client)))

	require.Eventually(t, func() bool { return hub.Conns("ABCD") == 1 },
		time.Second, 10*time.Millisecond)
}
