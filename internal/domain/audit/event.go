package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind は監査イベントの種別
type Kind string

const (
	KindReservationCreated   Kind = "PRENOTAZIONE_CREATA"
	KindCheckIn              Kind = "CHECK_IN"
	KindCheckOut             Kind = "CHECK_OUT"
	KindReservationCancelled Kind = "PRENOTAZIONE_CANCELLATA"
	KindReservationExtended  Kind = "PRENOTAZIONE_ESTESA"
	KindReservationModified  Kind = "PRENOTAZIONE_MODIFICATA"
	KindNoShowReleased       Kind = "NO_SHOW_RILASCIO"
	KindCheckInReminder      Kind = "PROMEMORIA_CHECKIN"
	KindLoanDueAlert         Kind = "AVVISO_SCADENZA_PRESTITO"
)

// Event は追記専用の監査ログレコード
type Event struct {
	ID            string
	OccurredAt    time.Time
	Kind          Kind
	UserID        string
	ReservationID string
	SeatID        string
	LoanID        string
	Details       Details
}

// NewEvent は詳細から種別を決めてイベントを作成する
func NewEvent(details Details, now time.Time) *Event {
	return &Event{
		OccurredAt: now,
		Kind:       details.Kind(),
		Details:    details,
	}
}

// ForReservation は予約関連の主体IDを設定する
func (e *Event) ForReservation(reservationID, userID, seatID string) *Event {
	e.ReservationID = reservationID
	e.UserID = userID
	e.SeatID = seatID
	return e
}

// ForLoan は貸出関連の主体IDを設定する
func (e *Event) ForLoan(loanID, userID string) *Event {
	e.LoanID = loanID
	e.UserID = userID
	return e
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Details == nil {
		return ErrDetailsRequired
	}
	if e.Details.Kind() != e.Kind {
		return fmt.Errorf("%w: %s != %s", ErrKindMismatch, e.Details.Kind(), e.Kind)
	}
	return nil
}

// MarshalDetails は詳細を保存用の JSON にする
func (e *Event) MarshalDetails() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e.Details)
}

// DecodeDetails は種別に応じて JSON を詳細構造体に復元する
func DecodeDetails(kind Kind, raw []byte) (Details, error) {
	var d Details
	switch kind {
	case KindReservationCreated:
		d = &ReservationCreated{}
	case KindCheckIn:
		d = &CheckedIn{}
	case KindCheckOut:
		d = &CheckedOut{}
	case KindReservationCancelled:
		d = &ReservationCancelled{}
	case KindReservationExtended:
		d = &ReservationExtended{}
	case KindReservationModified:
		d = &ReservationModified{}
	case KindNoShowReleased:
		d = &NoShowReleased{}
	case KindCheckInReminder:
		d = &CheckInReminder{}
	case KindLoanDueAlert:
		d = &LoanDueAlert{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("監査詳細の復元に失敗: %w", err)
	}
	return d, nil
}
