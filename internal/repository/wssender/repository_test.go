package wssender

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

// newConnPair dials a throwaway websocket server and returns both ends.
func newConnPair(t *testing.T) (serverSide *websocket.Conn, clientSide *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	conns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientSide, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientSide.Close() })

	select {
	case serverSide = <-conns:
	case <-time.After(time.Second):
		t.Fatal("server conn never arrived")
	}
	t.Cleanup(func() { serverSide.Close() })

	return serverSide, clientSide
}

func readOutput(t *testing.T, conn *websocket.Conn) Output {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	var out Output
	require.NoError(t, conn.ReadJSON(&out))

	return out
}

func TestSendTo(t *testing.T) {
	repo := NewRepo()
	serverSide, clientSide := newConnPair(t)

	require.NoError(t, repo.Add(serverSide, "c1"))

	require.NoError(t, repo.SendTo("c1", "HOST_TOKEN", map[string]any{"host_token": "jwt"}))

	out := readOutput(t, clientSide)
	assert.Equal(t, "HOST_TOKEN", out.Type)

	assert.ErrorIs(t, repo.SendTo("missing", "X", nil), ErrNotFound)
}

func TestAddDuplicate(t *testing.T) {
	repo := NewRepo()
	serverSide, _ := newConnPair(t)

	require.NoError(t, repo.Add(serverSide, "c1"))
	assert.ErrorIs(t, repo.Add(serverSide, "c1"), ErrAlreadyExists)
}

func TestBroadcastIsChannelScoped(t *testing.T) {
	repo := NewRepo()
	memberServer, memberClient := newConnPair(t)
	otherServer, otherClient := newConnPair(t)

	require.NoError(t, repo.Add(memberServer, "member"))
	require.NoError(t, repo.Add(otherServer, "other"))
	require.NoError(t, repo.JoinChannel("member", "r1"))

	repo.Broadcast("r1", "SONG_ADDED", map[string]any{"room_id": "r1"})

	out := readOutput(t, memberClient)
	assert.Equal(t, "SONG_ADDED", out.Type)

	// the non-member's next message must be the marker, not the broadcast
	require.NoError(t, repo.SendTo("other", "MARKER", nil))
	out = readOutput(t, otherClient)
	assert.Equal(t, "MARKER", out.Type)
}

func TestBroadcastGlobalReachesEveryone(t *testing.T) {
	repo := NewRepo()
	firstServer, firstClient := newConnPair(t)
	secondServer, secondClient := newConnPair(t)

	require.NoError(t, repo.Add(firstServer, "c1"))
	require.NoError(t, repo.Add(secondServer, "c2"))

	repo.BroadcastGlobal("ROOM_CREATED", map[string]any{"id": "r1"})

	assert.Equal(t, "ROOM_CREATED", readOutput(t, firstClient).Type)
	assert.Equal(t, "ROOM_CREATED", readOutput(t, secondClient).Type)
}

func TestLeaveChannelStopsDelivery(t *testing.T) {
	repo := NewRepo()
	serverSide, clientSide := newConnPair(t)

	require.NoError(t, repo.Add(serverSide, "c1"))
	require.NoError(t, repo.JoinChannel("c1", "r1"))
	require.NoError(t, repo.LeaveChannel("c1", "r1"))

	repo.Broadcast("r1", "SONG_ADDED", nil)

	require.NoError(t, repo.SendTo("c1", "MARKER", nil))
	assert.Equal(t, "MARKER", readOutput(t, clientSide).Type)

	assert.ErrorIs(t, repo.LeaveChannel("c1", "r1"), ErrNotFound)
}

func TestJoinChannelUnknownClient(t *testing.T) {
	repo := NewRepo()

	assert.ErrorIs(t, repo.JoinChannel("ghost", "r1"), ErrNotFound)
}

func TestRemoveByClientID(t *testing.T) {
	repo := NewRepo()
	serverSide, _ := newConnPair(t)

	require.NoError(t, repo.Add(serverSide, "c1"))
	require.NoError(t, repo.JoinChannel("c1", "r1"))

	require.NoError(t, repo.RemoveByClientID("c1"))
	assert.ErrorIs(t, repo.SendTo("c1", "X", nil), ErrNotFound)
	assert.ErrorIs(t, repo.RemoveByClientID("c1"), ErrNotFound)

	// the channel membership is gone too
	assert.ErrorIs(t, repo.LeaveChannel("c1", "r1"), ErrNotFound)
}
