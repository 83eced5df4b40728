package audit

import (
	"context"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

// Repository は監査ログのインターフェース（追記のみ）
type Repository interface {
	// Append はイベントを追記する（トランザクション必須）
	Append(ctx context.Context, tx transaction.Tx, event *Event) error

	// ListByReservationID は予約に関するイベントを発生順に取得する
	ListByReservationID(ctx context.Context, reservationID string) ([]*Event, error)
}
