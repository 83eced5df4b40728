package notification

import "time"

// Kind は通知の種別
type Kind string

const (
	KindReservationConfirmed Kind = "RESERVATION_CONFIRMED"
	KindReservationCancelled Kind = "RESERVATION_CANCELLED"
	KindReservationModified  Kind = "RESERVATION_MODIFIED"
	KindCheckInReminder      Kind = "CHECKIN_REMINDER"
	KindNoShowReleased       Kind = "NO_SHOW_RELEASED"
	KindLoanDueSoon          Kind = "LOAN_DUE_SOON"
	KindLoanDueTomorrow      Kind = "LOAN_DUE_TOMORROW"
)

// Notification は利用者向け通知のレコード（配信は外部で行う）
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActionRef string    `json:"actionRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNotification は通知を作成する
func NewNotification(userID string, kind Kind, title, message, actionRef string, now time.Time) *Notification {
	return &Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		ActionRef: actionRef,
		CreatedAt: now,
	}
}

// Validate は通知の検証を行う
func (n *Notification) Validate() error {
	if n.UserID == "" {
		return ErrUserIDRequired
	}
	if n.Kind == "" {
		return ErrKindRequired
	}
	return nil
}

// Query は送信済み通知の検索条件（重複送信の判定に使う）
type Query struct {
	UserID    string
	Kind      Kind
	ActionRef string
	Since     time.Time
}

// Matches は n が条件に一致するかを返す（空の項目は条件にしない）
func (q Query) Matches(n *Notification) bool {
	if q.UserID != "" && n.UserID != q.UserID {
		return false
	}
	if q.Kind != "" && n.Kind != q.Kind {
		return false
	}
	if q.ActionRef != "" && n.ActionRef != q.ActionRef {
		return false
	}
	return !n.CreatedAt.Before(q.Since)
}
