package room

import "context"

// Repository は閲覧室リポジトリのインターフェース
type Repository interface {
	// GetByID はIDから閲覧室を取得する
	GetByID(ctx context.Context, id string) (*Room, error)

	// List は閲覧室一覧を取得する
	List(ctx context.Context) ([]*Room, error)
}
