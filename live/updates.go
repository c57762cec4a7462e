package live

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"mercato/middleware"
	"mercato/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var productSubscribers = struct {
	sync.Mutex
	byProduct map[string]map[chan models.StockUpdate]bool
}{byProduct: make(map[string]map[chan models.StockUpdate]bool)}

// Subscribe registers a buffered update channel for a product.
func Subscribe(productID string) chan models.StockUpdate {
	ch := make(chan models.StockUpdate, 10)

	productSubscribers.Lock()
	defer productSubscribers.Unlock()
	subs, ok := productSubscribers.byProduct[productID]
	if !ok {
		subs = make(map[chan models.StockUpdate]bool)
		productSubscribers.byProduct[productID] = subs
	}
	subs[ch] = true
	return ch
}

// Unsubscribe drops a channel previously returned by Subscribe.
func Unsubscribe(productID string, ch chan models.StockUpdate) {
	productSubscribers.Lock()
	defer productSubscribers.Unlock()
	if subs, ok := productSubscribers.byProduct[productID]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(productSubscribers.byProduct, productID)
		}
	}
}

// PublishStockUpdate sends a stock change to every SSE subscriber of the
// product and to every websocket client of the hub.
func PublishStockUpdate(hub *Hub, productID string, remaining int) {
	update := models.StockUpdate{ProductID: productID, Remaining: remaining}

	productSubscribers.Lock()
	for ch := range productSubscribers.byProduct[productID] {
		select {
		case ch <- update:
		default:
			log.Printf("Warning: a subscriber of product %s is full. Dropping update.", productID)
		}
	}
	productSubscribers.Unlock()

	if hub != nil {
		if data, err := json.Marshal(update); err == nil {
			hub.Broadcast(data)
		}
	}
}

// ProductUpdates streams stock changes for one product as server-sent events.
func ProductUpdates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	productID := ps.ByName("id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// the server-wide write timeout would cut the stream short
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Printf("sse write deadline: %v", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := Subscribe(productID)
	defer Unsubscribe(productID, updates)

	for {
		select {
		case update := <-updates:
			jsonUpdate, _ := json.Marshal(update)
			fmt.Fprintf(w, "data: %s\n\n", jsonUpdate)
			flusher.Flush()
		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StockSocket upgrades to a websocket that receives every stock update.
// Browsers cannot send an Authorization header on the upgrade request, so
// the token travels as a query param.
func StockSocket(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if _, err := middleware.ValidateJWT(r.URL.Query().Get("token")); err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}

		client := &Client{Send: make(chan []byte, 16)}
		if !hub.Register(client) {
			conn.Close()
			return
		}

		go func() {
			defer conn.Close()
			for data := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					break
				}
			}
		}()

		// Reader loop only watches for close.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.Unregister(client)
					return
				}
			}
		}()
	}
}
