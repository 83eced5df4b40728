package notification

import "errors"

// Notification ドメインのエラー定義
var (
	ErrUserIDRequired = errors.New("通知先ユーザーIDは必須です")
	ErrKindRequired   = errors.New("通知種別は必須です")
)
