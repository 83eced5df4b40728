package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
)

// SeatStateMessage は座席状態変更の通知ペイロード
type SeatStateMessage struct {
	SeatID    string     `json:"seatId"`
	NewState  seat.State `json:"newState"`
	SeatLabel string     `json:"seatLabel"`
}

// RoomChannel は部屋ごとの配信チャンネル名を返す
func RoomChannel(roomID string) string {
	return "room:" + roomID + ":seats"
}

// SeatBroadcaster は座席状態の変更を Redis Pub/Sub に配信する
type SeatBroadcaster struct {
	client *redis.Client
}

func NewSeatBroadcaster(client *redis.Client) *SeatBroadcaster {
	return &SeatBroadcaster{client: client}
}

// Broadcast は部屋のチャンネルに変更を配信する
func (b *SeatBroadcaster) Broadcast(ctx context.Context, change seat.StateChange) error {
	payload, err := json.Marshal(SeatStateMessage{
		SeatID:    change.SeatID,
		NewState:  change.NewState,
		SeatLabel: change.SeatLabel,
	})
	if err != nil {
		return fmt.Errorf("座席状態のエンコードに失敗: %w", err)
	}
	if err := b.client.Publish(ctx, RoomChannel(change.RoomID), payload).Err(); err != nil {
		return fmt.Errorf("座席状態の配信に失敗: %w", err)
	}
	return nil
}

// Subscribe は部屋のチャンネルを購読する
func (b *SeatBroadcaster) Subscribe(ctx context.Context, roomID string) *redis.PubSub {
	return b.client.Subscribe(ctx, RoomChannel(roomID))
}
