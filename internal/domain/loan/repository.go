package loan

import (
	"context"
	"time"
)

// Repository は貸出リポジトリのインターフェース
type Repository interface {
	// GetByID はIDから貸出を取得する
	GetByID(ctx context.Context, id string) (*Loan, error)

	// ListActiveDueOn は返却期限が date の貸出中（ACTIVE）の貸出を取得する
	ListActiveDueOn(ctx context.Context, date time.Time) ([]*Loan, error)
}
