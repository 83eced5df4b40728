package seat

import (
	"context"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// GetByIDForUpdate はトランザクション内で座席を行ロック付きで取得する
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Seat, error)

	// ListByRoomID は閲覧室の座席一覧を取得する
	ListByRoomID(ctx context.Context, roomID string) ([]*Seat, error)

	// UpdateState は座席の状態を更新する（トランザクション必須）
	UpdateState(ctx context.Context, tx transaction.Tx, s *Seat) error
}
