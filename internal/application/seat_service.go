package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
)

type SeatService struct {
	txManager    transaction.Manager
	repos        Repositories
	availability *AvailabilityChecker
	dispatcher   dispatcher
	policy       Policy
	now          func() time.Time
}

func NewSeatService(txm transaction.Manager, repos Repositories, policy Policy, opts ...Option) *SeatService {
	o := buildOptions(opts)
	return &SeatService{
		txManager:    txm,
		repos:        repos,
		availability: NewAvailabilityChecker(repos.Reservations),
		dispatcher:   o.dispatcher(),
		policy:       policy,
		now:          o.now,
	}
}

// SeatAvailability は座席の1日分の空き状況
type SeatAvailability struct {
	Seat         *seat.Seat
	Date         time.Time
	OpeningHours slot.Interval
	Busy         []slot.Interval
	Free         []slot.Interval
}

func (s *SeatService) GetSeat(ctx context.Context, id string) (*seat.Seat, error) {
	return readWithRetry(ctx, func(ctx context.Context) (*seat.Seat, error) {
		return s.repos.Seats.GetByID(ctx, id)
	})
}

func (s *SeatService) ListRooms(ctx context.Context) ([]*room.Room, error) {
	return readWithRetry(ctx, s.repos.Rooms.List)
}

func (s *SeatService) GetSeatsByRoom(ctx context.Context, roomID string) ([]*seat.Seat, error) {
	if _, err := readWithRetry(ctx, func(ctx context.Context) (*room.Room, error) {
		return s.repos.Rooms.GetByID(ctx, roomID)
	}); err != nil {
		return nil, err
	}
	return readWithRetry(ctx, func(ctx context.Context) ([]*seat.Seat, error) {
		return s.repos.Seats.ListByRoomID(ctx, roomID)
	})
}

// GetAvailability は座席の指定日の予約済み区間と空き区間を返す
func (s *SeatService) GetAvailability(ctx context.Context, seatID string, date time.Time) (*SeatAvailability, error) {
	st, err := s.GetSeat(ctx, seatID)
	if err != nil {
		return nil, err
	}
	rm, err := readWithRetry(ctx, func(ctx context.Context) (*room.Room, error) {
		return s.repos.Rooms.GetByID(ctx, st.RoomID)
	})
	if err != nil {
		return nil, err
	}
	day := s.policy.Date(date)
	busy, err := readWithRetry(ctx, func(ctx context.Context) ([]slot.Interval, error) {
		return s.availability.BusyIntervals(ctx, nil, st.ID, day, "")
	})
	if err != nil {
		return nil, err
	}

	hours := rm.OpeningHours()
	free := []slot.Interval{}
	if !st.IsUnderMaintenance() {
		free = append(free, freeIntervals(hours, busy)...)
	}
	return &SeatAvailability{Seat: st, Date: day, OpeningHours: hours, Busy: busy, Free: free}, nil
}

// StartMaintenance は座席をメンテナンス状態にする（在席中の座席は不可）
func (s *SeatService) StartMaintenance(ctx context.Context, seatID string) (*seat.Seat, error) {
	return s.changeMaintenance(ctx, seatID, func(ctx context.Context, tx transaction.Tx, st *seat.Seat) error {
		checkedIn, err := s.repos.Reservations.CountCheckedInBySeat(ctx, tx, st.ID)
		if err != nil {
			return fmt.Errorf("在席状況の取得に失敗: %w", err)
		}
		if checkedIn > 0 {
			return seat.ErrSeatOccupied
		}
		return st.StartMaintenance()
	})
}

// EndMaintenance はメンテナンスを終了し、在席状況から状態を再計算する
func (s *SeatService) EndMaintenance(ctx context.Context, seatID string) (*seat.Seat, error) {
	return s.changeMaintenance(ctx, seatID, func(ctx context.Context, tx transaction.Tx, st *seat.Seat) error {
		if err := st.EndMaintenance(); err != nil {
			return err
		}
		checkedIn, err := s.repos.Reservations.CountCheckedInBySeat(ctx, tx, st.ID)
		if err != nil {
			return fmt.Errorf("在席状況の取得に失敗: %w", err)
		}
		st.ApplyOccupancy(checkedIn > 0)
		return nil
	})
}

func (s *SeatService) changeMaintenance(ctx context.Context, seatID string, apply func(context.Context, transaction.Tx, *seat.Seat) error) (*seat.Seat, error) {
	now := s.now()
	fx := &effects{}
	var st *seat.Seat
	err := inTx(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		if st, err = s.repos.Seats.GetByIDForUpdate(ctx, tx, seatID); err != nil {
			return err
		}
		if err := apply(ctx, tx, st); err != nil {
			return err
		}
		st.UpdatedAt = now
		if err := s.repos.Seats.UpdateState(ctx, tx, st); err != nil {
			return fmt.Errorf("座席状態の更新に失敗: %w", err)
		}
		change := st.Change()
		fx.seatChanged(&change)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.dispatch(ctx, fx)
	logger.Info("座席状態を変更", logger.SeatID(st.ID), zap.String("state", string(st.State)))
	return st, nil
}
