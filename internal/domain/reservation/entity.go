package reservation

import (
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

// Status は予約の状態を表す
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCheckedIn Status = "CHECKED_IN"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
	// StatusExpired は集計用に予約されている状態で、エンジンからの遷移はない
	StatusExpired Status = "EXPIRED"
)

// ActiveStatuses は座席の時間帯を占有する状態
var ActiveStatuses = []Status{StatusConfirmed, StatusCheckedIn}

// IsActive は状態が座席の時間帯を占有するかを返す
func (s Status) IsActive() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

// CommuterMargin は通学者向けの猶予設定（ポリシー用にそのまま保持する）
type CommuterMargin struct {
	Enabled bool
	Minutes int
}

// Reservation は座席予約エンティティを表す
type Reservation struct {
	ID             string
	UserID         string
	SeatID         string
	Date           time.Time
	Start          slot.TimeOfDay
	End            slot.TimeOfDay
	Status         Status
	CheckInAt      *time.Time
	CheckOutAt     *time.Time
	CommuterMargin CommuterMargin
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewReservation は確定状態の新しい予約を作成する
func NewReservation(userID, seatID string, date time.Time, iv slot.Interval, margin CommuterMargin, now time.Time) *Reservation {
	return &Reservation{
		UserID:         userID,
		SeatID:         seatID,
		Date:           Day(date),
		Start:          iv.Start,
		End:            iv.End,
		Status:         StatusConfirmed,
		CommuterMargin: margin,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Day は t と同じロケーションでの日付の0時を返す
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Interval は予約の時間帯を返す
func (r *Reservation) Interval() slot.Interval {
	return slot.Interval{Start: r.Start, End: r.End}
}

// StartsAt は開始日時を返す
func (r *Reservation) StartsAt() time.Time {
	return r.Start.On(r.Date)
}

// EndsAt は終了日時を返す
func (r *Reservation) EndsAt() time.Time {
	return r.End.On(r.Date)
}

// IsActive は予約が座席の時間帯を占有しているかを返す
func (r *Reservation) IsActive() bool {
	return r.Status.IsActive()
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.UserID == "" {
		return ErrUserIDRequired
	}
	if r.SeatID == "" {
		return ErrSeatIDRequired
	}
	if r.Date.IsZero() {
		return ErrDateRequired
	}
	if _, err := slot.NewInterval(r.Start, r.End); err != nil {
		return err
	}
	if r.CommuterMargin.Minutes < 0 {
		return ErrInvalidCommuterMargin
	}
	return nil
}
