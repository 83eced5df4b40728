package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

// ReservationRepository は reservation.Repository のメモリ実装
type ReservationRepository struct {
	s *Store
}

var _ reservation.Repository = (*ReservationRepository)(nil)

func cloneReservation(r *reservation.Reservation) *reservation.Reservation {
	c := *r
	if r.CheckInAt != nil {
		t := *r.CheckInAt
		c.CheckInAt = &t
	}
	if r.CheckOutAt != nil {
		t := *r.CheckOutAt
		c.CheckOutAt = &t
	}
	return &c
}

func (repo *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	t, err := repo.s.txOf(tx)
	if err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()
	id := r.ID
	repo.s.reservations[id] = cloneReservation(r)
	t.onRollback(func() { delete(repo.s.reservations, id) })
	return nil
}

func (repo *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	r, ok := repo.s.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	return cloneReservation(r), nil
}

// GetByIDForUpdate はトランザクションが直列化されているため通常の取得と同じ
func (repo *ReservationRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	if _, err := repo.s.txOf(tx); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (repo *ReservationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	list := repo.filter(func(r *reservation.Reservation) bool { return r.UserID == userID })
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].Start > list[j].Start
	})
	if offset >= len(list) {
		return []*reservation.Reservation{}, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (repo *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	t, err := repo.s.txOf(tx)
	if err != nil {
		return err
	}
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()
	prev, ok := repo.s.reservations[r.ID]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	repo.s.reservations[r.ID] = cloneReservation(r)
	t.onRollback(func() { repo.s.reservations[prev.ID] = prev })
	return nil
}

// LockSeatDate はトランザクションの直列化で排他されるため検証のみ行う
func (repo *ReservationRepository) LockSeatDate(ctx context.Context, tx transaction.Tx, seatID string, date time.Time) error {
	_, err := repo.s.txOf(tx)
	return err
}

func (repo *ReservationRepository) ListActiveBySeatAndDate(ctx context.Context, tx transaction.Tx, seatID string, date time.Time) ([]*reservation.Reservation, error) {
	if tx != nil {
		if _, err := repo.s.txOf(tx); err != nil {
			return nil, err
		}
	}
	day := dayKey(date)
	return repo.filter(func(r *reservation.Reservation) bool {
		return r.SeatID == seatID && dayKey(r.Date) == day && r.IsActive()
	}), nil
}

func (repo *ReservationRepository) CountCheckedInBySeat(ctx context.Context, tx transaction.Tx, seatID string) (int, error) {
	if _, err := repo.s.txOf(tx); err != nil {
		return 0, err
	}
	return len(repo.filter(func(r *reservation.Reservation) bool {
		return r.SeatID == seatID && r.Status == reservation.StatusCheckedIn
	})), nil
}

func (repo *ReservationRepository) ListConfirmedStartingBetween(ctx context.Context, date time.Time, from, to slot.TimeOfDay) ([]*reservation.Reservation, error) {
	day := dayKey(date)
	list := repo.filter(func(r *reservation.Reservation) bool {
		return r.Status == reservation.StatusConfirmed && dayKey(r.Date) == day && r.Start >= from && r.Start <= to
	})
	sortByStart(list)
	return list, nil
}

func (repo *ReservationRepository) ListConfirmedUntil(ctx context.Context, date time.Time) ([]*reservation.Reservation, error) {
	day := dayKey(date)
	list := repo.filter(func(r *reservation.Reservation) bool {
		return r.Status == reservation.StatusConfirmed && dayKey(r.Date) <= day
	})
	sortByStart(list)
	return list, nil
}

func (repo *ReservationRepository) filter(keep func(*reservation.Reservation) bool) []*reservation.Reservation {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	list := []*reservation.Reservation{}
	for _, r := range repo.s.reservations {
		if keep(r) {
			list = append(list, cloneReservation(r))
		}
	}
	return list
}

func sortByStart(list []*reservation.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		if list[i].Start != list[j].Start {
			return list[i].Start < list[j].Start
		}
		return list[i].ID < list[j].ID
	})
}
