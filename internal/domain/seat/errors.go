package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound            = errors.New("座席が見つかりません")
	ErrSeatOccupied            = errors.New("座席は使用中です")
	ErrSeatUnderMaintenance    = errors.New("座席はメンテナンス中です")
	ErrSeatNotUnderMaintenance = errors.New("座席はメンテナンス中ではありません")
	ErrRoomIDRequired          = errors.New("閲覧室IDは必須です")
	ErrSeatLabelRequired       = errors.New("座席ラベルは必須です")
)
