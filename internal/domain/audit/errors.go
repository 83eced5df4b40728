package audit

import "errors"

// Audit ドメインのエラー定義
var (
	ErrDetailsRequired = errors.New("監査イベントの詳細は必須です")
	ErrKindMismatch    = errors.New("監査イベントの種別と詳細が一致しません")
	ErrUnknownKind     = errors.New("不明な監査イベント種別です")
)
