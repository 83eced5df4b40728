package room

import (
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

// Room は座席を収容する閲覧室を表す（エンジンからは読み取り専用）
type Room struct {
	ID        string
	Name      string
	OpensAt   slot.TimeOfDay
	ClosesAt  slot.TimeOfDay
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom は新しい閲覧室を作成する
func NewRoom(name string, opensAt, closesAt slot.TimeOfDay, capacity int) *Room {
	now := time.Now()
	return &Room{
		Name:      name,
		OpensAt:   opensAt,
		ClosesAt:  closesAt,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OpeningHours は開室時間を区間として返す
func (r *Room) OpeningHours() slot.Interval {
	return slot.Interval{Start: r.OpensAt, End: r.ClosesAt}
}

// IsOpenDuring は区間 iv が開室時間内に収まっているかを返す
func (r *Room) IsOpenDuring(iv slot.Interval) bool {
	return r.OpeningHours().Contains(iv)
}

// Validate は閲覧室の検証を行う
func (r *Room) Validate() error {
	if r.Name == "" {
		return ErrRoomNameRequired
	}
	if r.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if _, err := slot.NewInterval(r.OpensAt, r.ClosesAt); err != nil {
		return ErrInvalidOpeningHours
	}
	return nil
}
