package reservation

import (
	"errors"
	"fmt"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound   = errors.New("予約が見つかりません")
	ErrSlotTaken             = errors.New("指定の時間帯は既に予約されています")
	ErrOutOfHours            = errors.New("指定の時間帯は開室時間外です")
	ErrInvalidRange          = slot.ErrInvalidRange
	ErrInvalidTransition     = errors.New("この状態からは遷移できません")
	ErrDurationExceeded      = errors.New("予約時間が上限を超えています")
	ErrSlotInPast            = errors.New("過去の時間帯は予約できません")
	ErrNotOwner              = errors.New("他のユーザーの予約は操作できません")
	ErrSlotBusy              = errors.New("座席が他のユーザーによって処理中です")
	ErrOperatorOnly          = errors.New("この操作はオペレーターのみ実行できます")
	ErrUserIDRequired        = errors.New("ユーザーIDは必須です")
	ErrSeatIDRequired        = errors.New("座席IDは必須です")
	ErrDateRequired          = errors.New("日付は必須です")
	ErrInvalidCommuterMargin = errors.New("通学者猶予は0分以上である必要があります")

	ErrCheckInWindowClosed   = fmt.Errorf("%w: チェックイン受付時間外です", ErrInvalidTransition)
	ErrNoShowGraceNotElapsed = fmt.Errorf("%w: 猶予時間が経過していません", ErrInvalidTransition)
)
