package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
)

// DefaultNotificationQueue は配信系が購読する通知キュー
const DefaultNotificationQueue = "notifications.outbound"

// NotificationPublisher はコミット済みの通知を RabbitMQ の永続キューに渡す
// 接続は初回の Publish で確立し、失敗した場合は次回の Publish で張り直す
type NotificationPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewNotificationPublisher(url, queue string) *NotificationPublisher {
	if queue == "" {
		queue = DefaultNotificationQueue
	}
	return &NotificationPublisher{url: url, queue: queue}
}

// Publish は通知を JSON の永続メッセージとして送信する
func (p *NotificationPublisher) Publish(ctx context.Context, n *notification.Notification) error {
	msg, err := newPublishing(n)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("通知の送信に失敗: %w", err)
	}
	return nil
}

// Close は接続を閉じる
func (p *NotificationPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

func (p *NotificationPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ への接続に失敗: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("チャネルの作成に失敗: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("キューの宣言に失敗: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *NotificationPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func newPublishing(n *notification.Notification) (amqp.Publishing, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("通知のエンコードに失敗: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.ID,
		Type:         string(n.Kind),
		Timestamp:    n.CreatedAt.UTC(),
		Body:         body,
	}, nil
}
