package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercato/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c1 := &Client{Send: make(chan []byte, 4)}
	c2 := &Client{Send: make(chan []byte, 4)}
	require.True(t, hub.Register(c1))
	require.True(t, hub.Register(c2))

	hub.Broadcast([]byte("stock"))

	for _, c := range []*Client{c1, c2} {
		select {
		case got := <-c.Send:
			assert.Equal(t, []byte("stock"), got)
		case <-time.After(time.Second):
			t.Fatal("client never received broadcast")
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := &Client{Send: make(chan []byte, 1)}
	require.True(t, hub.Register(c))
	hub.Unregister(c)

	select {
	case _, open := <-c.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestHubStopClosesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{Send: make(chan []byte, 1)}
	require.True(t, hub.Register(c))
	hub.Stop()
	hub.Stop() // idempotent

	select {
	case _, open := <-c.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed on stop")
	}
}

func TestHubRegisterAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.False(t, hub.Register(&Client{Send: make(chan []byte, 1)}))
		hub.Unregister(&Client{Send: make(chan []byte, 1)})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after stop")
	}
}

func TestPublishStockUpdateFansOut(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := &Client{Send: make(chan []byte, 4)}
	require.True(t, hub.Register(c))

	productID := "68b0f1d2aa11bb22cc33dd44"
	sub1 := Subscribe(productID)
	sub2 := Subscribe(productID)
	defer Unsubscribe(productID, sub1)
	defer Unsubscribe(productID, sub2)

	PublishStockUpdate(hub, productID, 3)

	// every SSE subscriber gets the full stream, not a share of it
	for _, sub := range []chan models.StockUpdate{sub1, sub2} {
		select {
		case update := <-sub:
			assert.Equal(t, productID, update.ProductID)
			assert.Equal(t, 3, update.Remaining)
		case <-time.After(time.Second):
			t.Fatal("no update on a product subscriber")
		}
	}

	select {
	case data := <-c.Send:
		var update models.StockUpdate
		require.NoError(t, json.Unmarshal(data, &update))
		assert.Equal(t, productID, update.ProductID)
		assert.Equal(t, 3, update.Remaining)
	case <-time.After(time.Second):
		t.Fatal("no update on the websocket client")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	productID := "68b0f1d2aa11bb22cc33dd55"
	sub := Subscribe(productID)
	Unsubscribe(productID, sub)

	PublishStockUpdate(nil, productID, 7)

	select {
	case update := <-sub:
		t.Fatalf("unsubscribed channel received %+v", update)
	default:
	}
}

func TestStockSocketRejectsBadToken(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	handler := StockSocket(hub)

	r := httptest.NewRequest("GET", "/ws/stock", nil)
	w := httptest.NewRecorder()
	handler(w, r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r = httptest.NewRequest("GET", "/ws/stock?token=not-a-token", nil)
	w = httptest.NewRecorder()
	handler(w, r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
