package notification

import (
	"context"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

// Repository は通知ログのインターフェース
type Repository interface {
	// Create は通知を記録する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, n *Notification) error

	// Exists は条件に一致する通知が記録済みかを返す
	Exists(ctx context.Context, q Query) (bool, error)

	// ListByUserID は利用者の通知を新しい順に取得する
	ListByUserID(ctx context.Context, userID string, limit int) ([]*Notification, error)
}
