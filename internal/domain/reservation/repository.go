package reservation

import (
	"context"
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetByIDForUpdate はトランザクション内で予約を行ロック付きで取得する
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Reservation, error)

	// GetByUserID はユーザーIDから予約一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Reservation, error)

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// LockSeatDate は座席・日付単位の排他ロックをトランザクション終了まで保持する
	LockSeatDate(ctx context.Context, tx transaction.Tx, seatID string, date time.Time) error

	// ListActiveBySeatAndDate は座席・日付の有効な予約を取得する（tx が nil の場合はトランザクション外で読む）
	ListActiveBySeatAndDate(ctx context.Context, tx transaction.Tx, seatID string, date time.Time) ([]*Reservation, error)

	// CountCheckedInBySeat は座席のチェックイン中の予約数を返す（トランザクション必須）
	CountCheckedInBySeat(ctx context.Context, tx transaction.Tx, seatID string) (int, error)

	// ListConfirmedStartingBetween は date の確定予約のうち開始時刻が [from, to] のものを取得する
	ListConfirmedStartingBetween(ctx context.Context, date time.Time, from, to slot.TimeOfDay) ([]*Reservation, error)

	// ListConfirmedUntil は日付が date 以前の確定予約を取得する
	ListConfirmedUntil(ctx context.Context, date time.Time) ([]*Reservation, error)
}
