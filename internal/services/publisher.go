package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mindcare-backend/internal/models"
)

// Publisher fans chat replies out to the user's websocket connections via
// Redis pub/sub.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID.String())
}

func (p *Publisher) PublishReply(ctx context.Context, userID uuid.UUID, event models.ChatReplyEvent) {
	data, err := json.Marshal(models.WSMessage{Type: "chat_reply", Payload: event})
	if err != nil {
		return
	}
	if err := p.redis.Publish(ctx, UserChannel(userID), string(data)).Err(); err != nil {
		log.Printf("[ws] publish to %s failed: %v", userID, err)
	}
}
