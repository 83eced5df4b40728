package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/loan"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
)

// 再試行しても結果が変わらないエラー
var permanentErrors = []error{
	reservation.ErrReservationNotFound,
	seat.ErrSeatNotFound,
	room.ErrRoomNotFound,
	user.ErrUserNotFound,
	loan.ErrLoanNotFound,
	context.Canceled,
	context.DeadlineExceeded,
}

func isPermanent(err error) bool {
	for _, target := range permanentErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// readWithRetry は読み取りがストレージ障害で失敗した場合に1回だけ再試行する
func readWithRetry[T any](ctx context.Context, read func(context.Context) (T, error)) (T, error) {
	v, err := read(ctx)
	if err == nil || isPermanent(err) || ctx.Err() != nil {
		return v, err
	}
	return read(ctx)
}

// inTx は fn をトランザクション内で実行し、成功した場合のみコミットする
func inTx(ctx context.Context, txm transaction.Manager, fn func(tx transaction.Tx) error) error {
	tx, err := txm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}
