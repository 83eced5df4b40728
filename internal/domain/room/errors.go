package room

import "errors"

// Room ドメインのエラー定義
var (
	ErrRoomNotFound        = errors.New("閲覧室が見つかりません")
	ErrRoomNameRequired    = errors.New("閲覧室名は必須です")
	ErrInvalidCapacity     = errors.New("収容人数は1以上である必要があります")
	ErrInvalidOpeningHours = errors.New("閉室時刻は開室時刻より後である必要があります")
)
