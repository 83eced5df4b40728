package reservation

import (
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

// transitions は許可された状態遷移の表
var transitions = map[Status][]Status{
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn: {StatusCompleted, StatusCancelled},
}

// CanTransition は from から to への遷移が表に存在するかを返す
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal は終端状態かを返す
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (r *Reservation) transition(to Status, now time.Time) error {
	if !CanTransition(r.Status, to) {
		return ErrInvalidTransition
	}
	r.Status = to
	r.UpdatedAt = now
	return nil
}

// CheckIn は受付時間 [start-window, start+window] 内であればチェックインする
func (r *Reservation) CheckIn(now time.Time, window time.Duration) error {
	if !CanTransition(r.Status, StatusCheckedIn) {
		return ErrInvalidTransition
	}
	start := r.StartsAt()
	if now.Before(start.Add(-window)) || now.After(start.Add(window)) {
		return ErrCheckInWindowClosed
	}
	at := now
	r.CheckInAt = &at
	return r.transition(StatusCheckedIn, now)
}

// CheckOut はチェックアウトして予約を完了する
func (r *Reservation) CheckOut(now time.Time) error {
	if !CanTransition(r.Status, StatusCompleted) {
		return ErrInvalidTransition
	}
	at := now
	r.CheckOutAt = &at
	return r.transition(StatusCompleted, now)
}

// Cancel は予約をキャンセルする
func (r *Reservation) Cancel(now time.Time) error {
	return r.transition(StatusCancelled, now)
}

// MarkNoShow は開始から grace を過ぎてもチェックインがない予約を無断欠席にする
func (r *Reservation) MarkNoShow(now time.Time, grace time.Duration) error {
	if !CanTransition(r.Status, StatusNoShow) || r.CheckInAt != nil {
		return ErrInvalidTransition
	}
	if !now.After(r.StartsAt().Add(grace)) {
		return ErrNoShowGraceNotElapsed
	}
	return r.transition(StatusNoShow, now)
}

// IsNoShowCandidate は now 時点で無断欠席として回収できるかを返す
func (r *Reservation) IsNoShowCandidate(now time.Time, grace time.Duration) bool {
	return r.Status == StatusConfirmed && r.CheckInAt == nil && now.After(r.StartsAt().Add(grace))
}

// ExtensionDelta は終了時刻を newEnd に延長する際に新たに占有する区間を検証して返す
// 予約自体は変更しない
func (r *Reservation) ExtensionDelta(newEnd, closesAt slot.TimeOfDay, maxDuration time.Duration) (slot.Interval, error) {
	if !r.IsActive() {
		return slot.Interval{}, ErrInvalidTransition
	}
	delta, err := slot.NewInterval(r.End, newEnd)
	if err != nil {
		return slot.Interval{}, err
	}
	if newEnd > closesAt {
		return slot.Interval{}, ErrOutOfHours
	}
	if newEnd.Sub(r.Start) > maxDuration {
		return slot.Interval{}, ErrDurationExceeded
	}
	return delta, nil
}

// ApplyExtension は検証済みの終了時刻を反映する
func (r *Reservation) ApplyExtension(newEnd slot.TimeOfDay, now time.Time) {
	r.End = newEnd
	r.UpdatedAt = now
}

// Reschedule は確定状態の予約の座席・日付・時間帯を変更する
func (r *Reservation) Reschedule(seatID string, date time.Time, iv slot.Interval, now time.Time) error {
	if r.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	r.SeatID = seatID
	r.Date = Day(date)
	r.Start = iv.Start
	r.End = iv.End
	r.UpdatedAt = now
	return nil
}
