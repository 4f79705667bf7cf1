package websocket

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesOnlyOwner(t *testing.T) {
	hub := NewHub()
	mine := &Client{send: make(chan []byte, 1)}
	other := &Client{send: make(chan []byte, 1)}
	hub.Register(1, mine)
	hub.Register(2, other)

	hub.BroadcastBalance(1, BalanceUpdate{Balance: "12.50", Kind: "deposit", TransactionID: 9})

	require.Len(t, mine.send, 1)
	assert.Len(t, other.send, 0)

	var got BalanceUpdate
	require.NoError(t, json.Unmarshal(<-mine.send, &got))
	assert.Equal(t, "balance", got.Type)
	assert.Equal(t, "12.50", got.Balance)
	assert.Equal(t, int64(9), got.TransactionID)
}

func TestHubBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	client := &Client{send: make(chan []byte, 1)}
	hub.Register(1, client)

	hub.BroadcastBalance(1, BalanceUpdate{Balance: "1.00"})
	hub.BroadcastBalance(1, BalanceUpdate{Balance: "2.00"})

	assert.Len(t, client.send, 1)
}

func TestHubUnregisterRemovesEmptyUser(t *testing.T) {
	hub := NewHub()
	client := &Client{send: make(chan []byte, 1)}
	hub.Register(1, client)
	assert.Equal(t, 1, hub.Connected(1))

	hub.Unregister(1, client)
	hub.Unregister(1, client)
	assert.Equal(t, 0, hub.Connected(1))
}

func TestUpgraderCheckOrigin(t *testing.T) {
	upgrader := NewUpgrader([]string{"https://app.example.org"})
	req := httptest.NewRequest(http.MethodGet, "/ws/balances", nil)

	req.Header.Set("Origin", "https://app.example.org")
	assert.True(t, upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, upgrader.CheckOrigin(req))

	assert.True(t, NewUpgrader([]string{"*"}).CheckOrigin(req))
}

func TestServeWSReturnsWhenPeerDisconnects(t *testing.T) {
	hub := NewHub()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	returned := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(returned)
		ServeWS(w, r, NewUpgrader([]string{"*"}), hub, 7, logger)
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Connected(7) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("writer kept the connection alive after the reader stopped")
	}
	assert.Equal(t, 0, hub.Connected(7))
}
