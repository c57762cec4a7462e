package mq

import (
	"context"
	"encoding/json"
	"log"

	"mercato/models"
	"mercato/rdx"
)

const channel = "indexing-events"

// Emit publishes indexing events to Redis pub/sub for offline consumers.
func Emit(ctx context.Context, eventName string, content models.Index) {
	data, err := json.Marshal(content)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event content: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s event to Redis: %v", eventName, err)
	}
}
