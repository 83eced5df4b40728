package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

// AvailabilityChecker は座席・日付の空き判定を行う
type AvailabilityChecker struct {
	reservations reservation.Repository
}

func NewAvailabilityChecker(rr reservation.Repository) *AvailabilityChecker {
	return &AvailabilityChecker{reservations: rr}
}

// IsSlotFree は [start, end) が有効な予約と交差しないかを返す
// tx が nil でない場合はトランザクション内で読む。excludeID の予約は判定から除外する
func (c *AvailabilityChecker) IsSlotFree(ctx context.Context, tx transaction.Tx, seatID string, date time.Time, start, end slot.TimeOfDay, excludeID string) (bool, error) {
	candidate, err := slot.NewInterval(start, end)
	if err != nil {
		return false, err
	}
	busy, err := c.BusyIntervals(ctx, tx, seatID, date, excludeID)
	if err != nil {
		return false, err
	}
	return slot.IsFree(candidate, busy), nil
}

// BusyIntervals は有効な予約の区間を開始時刻順に返す
func (c *AvailabilityChecker) BusyIntervals(ctx context.Context, tx transaction.Tx, seatID string, date time.Time, excludeID string) ([]slot.Interval, error) {
	active, err := c.reservations.ListActiveBySeatAndDate(ctx, tx, seatID, date)
	if err != nil {
		return nil, fmt.Errorf("予約の取得に失敗: %w", err)
	}
	busy := make([]slot.Interval, 0, len(active))
	for _, r := range active {
		if r.ID == excludeID || !r.IsActive() {
			continue
		}
		busy = append(busy, r.Interval())
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start < busy[j].Start })
	return busy, nil
}

// freeIntervals は hours の中で busy に含まれない区間を返す
func freeIntervals(hours slot.Interval, busy []slot.Interval) []slot.Interval {
	var free []slot.Interval
	cursor := hours.Start
	for _, b := range busy {
		if b.End <= cursor {
			continue
		}
		if b.Start >= hours.End {
			break
		}
		if b.Start > cursor {
			free = append(free, slot.Interval{Start: cursor, End: b.Start})
		}
		cursor = b.End
	}
	if cursor < hours.End {
		free = append(free, slot.Interval{Start: cursor, End: hours.End})
	}
	return free
}
