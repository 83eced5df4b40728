package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
)

// NotificationPublisher はコミット済みの通知を外部の配信系に渡す
type NotificationPublisher interface {
	Publish(ctx context.Context, n *notification.Notification) error
}

// SeatBroadcaster は座席状態の変化を部屋単位で配信する
type SeatBroadcaster interface {
	Broadcast(ctx context.Context, change seat.StateChange) error
}

// effects はトランザクションのコミット後に外部へ送る内容
type effects struct {
	notifications []*notification.Notification
	seatChanges   []seat.StateChange
}

func (fx *effects) notify(n *notification.Notification) {
	fx.notifications = append(fx.notifications, n)
}

func (fx *effects) seatChanged(c *seat.StateChange) {
	if c != nil {
		fx.seatChanges = append(fx.seatChanges, *c)
	}
}

// dispatcher はコミット後の配信を行う（失敗しても予約操作は成功のまま）
type dispatcher struct {
	publisher   NotificationPublisher
	broadcaster SeatBroadcaster
}

func (d dispatcher) dispatch(ctx context.Context, fx *effects) {
	ctx = context.WithoutCancel(ctx)
	if d.publisher != nil {
		for _, n := range fx.notifications {
			if err := d.publisher.Publish(ctx, n); err != nil {
				logger.Warn("通知の配信に失敗",
					zap.String("notification_id", n.ID),
					zap.String("kind", string(n.Kind)),
					logger.UserID(n.UserID),
					zap.Error(err),
				)
			}
		}
	}
	if d.broadcaster != nil {
		for _, c := range fx.seatChanges {
			if err := d.broadcaster.Broadcast(ctx, c); err != nil {
				logger.Warn("座席状態の配信に失敗",
					logger.SeatID(c.SeatID),
					zap.String("state", string(c.NewState)),
					zap.Error(err),
				)
			}
		}
	}
}
