package application

import (
	"context"
	"errors"
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/audit"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/loan"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
	redisinfra "github.com/mariocelzo/biblioflow-app-sub000/internal/infrastructure/redis"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/metrics"
)

// Repositories はサービスが使うリポジトリ一式
type Repositories struct {
	Reservations  reservation.Repository
	Seats         seat.Repository
	Rooms         room.Repository
	Users         user.Repository
	Loans         loan.Repository
	Audit         audit.Repository
	Notifications notification.Repository
}

// Option はサービスの任意の依存を設定する
type Option func(*serviceOptions)

type serviceOptions struct {
	lockManager redisinfra.LockManagerInterface
	publisher   NotificationPublisher
	broadcaster SeatBroadcaster
	now         func() time.Time
}

// WithLockManager は座席・日付単位の分散ロックを有効にする
func WithLockManager(lm redisinfra.LockManagerInterface) Option {
	return func(o *serviceOptions) { o.lockManager = lm }
}

// WithNotificationPublisher はコミット後の通知配信先を設定する
func WithNotificationPublisher(p NotificationPublisher) Option {
	return func(o *serviceOptions) { o.publisher = p }
}

// WithSeatBroadcaster は座席状態の配信先を設定する
func WithSeatBroadcaster(b SeatBroadcaster) Option {
	return func(o *serviceOptions) { o.broadcaster = b }
}

// WithClock は現在時刻の取得方法を差し替える
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

func buildOptions(opts []Option) serviceOptions {
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o serviceOptions) dispatcher() dispatcher {
	return dispatcher{publisher: o.publisher, broadcaster: o.broadcaster}
}

// observe は操作結果をメトリクスに記録する
func observe(operation string, err error) {
	metrics.Get().ObserveOperation(operation, outcomeOf(err))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, reservation.ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, reservation.ErrSlotBusy):
		return "lock_failed"
	case errors.Is(err, reservation.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case isPermanent(err):
		return "not_found"
	default:
		return "failed"
	}
}
