package application

import (
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

// Policy は予約エンジンの時間に関する設定
type Policy struct {
	CheckInWindow   time.Duration
	NoShowGrace     time.Duration
	MaxDuration     time.Duration
	ReminderLeadMin time.Duration
	ReminderLeadMax time.Duration
	ExtensionStep   time.Duration
	LockTTL         time.Duration
	Location        *time.Location
}

// DefaultPolicy は既定の設定を返す
func DefaultPolicy() Policy {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		loc = time.UTC
	}
	return Policy{
		CheckInWindow:   15 * time.Minute,
		NoShowGrace:     15 * time.Minute,
		MaxDuration:     8 * time.Hour,
		ReminderLeadMin: 15 * time.Minute,
		ReminderLeadMax: 20 * time.Minute,
		ExtensionStep:   30 * time.Minute,
		LockTTL:         10 * time.Second,
		Location:        loc,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Date は t の年月日を施設の暦日として0時に正規化する
func (p Policy) Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location())
}

// Today は now 時点の施設の暦日を返す
func (p Policy) Today(now time.Time) time.Time {
	return p.Date(now.In(p.location()))
}

// reminderWindow は now からリマインダー対象となる開始時刻の範囲を返す
// 範囲が当日に収まらない場合は ok=false
func (p Policy) reminderWindow(now time.Time) (from, to slot.TimeOfDay, ok bool) {
	local := now.In(p.location())
	today := p.Today(now)
	lo := local.Add(p.ReminderLeadMin)
	hi := local.Add(p.ReminderLeadMax)
	if !p.Date(lo).Equal(today) {
		return 0, 0, false
	}
	from = slot.Of(lo)
	if lo.Second() != 0 || lo.Nanosecond() != 0 {
		from++
	}
	to = slot.Of(hi)
	if !p.Date(hi).Equal(today) {
		to = slot.MinutesPerDay - 1
	}
	return from, to, from <= to
}
