package user

import "context"

// Repository は利用者ディレクトリのインターフェース（読み取り専用）
type Repository interface {
	// GetByID はIDから利用者を取得する
	GetByID(ctx context.Context, id string) (*User, error)
}
