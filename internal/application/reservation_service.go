package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/audit"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
	redisinfra "github.com/mariocelzo/biblioflow-app-sub000/internal/infrastructure/redis"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/metrics"
)

const (
	lockRetries    = 3
	lockRetryDelay = 100 * time.Millisecond
)

type ReservationService struct {
	txManager    transaction.Manager
	repos        Repositories
	availability *AvailabilityChecker
	lockManager  redisinfra.LockManagerInterface
	dispatcher   dispatcher
	policy       Policy
	now          func() time.Time
}

func NewReservationService(txm transaction.Manager, repos Repositories, policy Policy, opts ...Option) *ReservationService {
	o := buildOptions(opts)
	return &ReservationService{
		txManager:    txm,
		repos:        repos,
		availability: NewAvailabilityChecker(repos.Reservations),
		lockManager:  o.lockManager,
		dispatcher:   o.dispatcher(),
		policy:       policy,
		now:          o.now,
	}
}

type CreateReservationInput struct {
	UserID         string
	SeatID         string
	Date           time.Time
	Start          slot.TimeOfDay
	End            slot.TimeOfDay
	CommuterMargin reservation.CommuterMargin
}

type ExtendReservationInput struct {
	ReservationID string
	NewEnd        slot.TimeOfDay
	Actor         user.Actor
}

// ModifyReservationInput は管理者による予約変更の入力（SeatID・Date が空の場合は現在の値を使う）
type ModifyReservationInput struct {
	ReservationID string
	SeatID        string
	Date          time.Time
	Start         slot.TimeOfDay
	End           slot.TimeOfDay
}

// target は検証済みの予約先
type target struct {
	seat     *seat.Seat
	room     *room.Room
	date     time.Time
	interval slot.Interval
}

func (t *target) key() string {
	return redisinfra.SeatDateKey(t.seat.ID, t.date)
}

func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*reservation.Reservation, error) {
	res, err := s.createReservation(ctx, in)
	observe("create", err)
	return res, err
}

func (s *ReservationService) createReservation(ctx context.Context, in CreateReservationInput) (*reservation.Reservation, error) {
	if _, err := slot.NewInterval(in.Start, in.End); err != nil {
		return nil, err
	}
	if _, err := readWithRetry(ctx, func(ctx context.Context) (*user.User, error) {
		return s.repos.Users.GetByID(ctx, in.UserID)
	}); err != nil {
		return nil, err
	}

	now := s.now()
	t, err := s.resolveTarget(ctx, in.SeatID, in.Date, in.Start, in.End, now)
	if err != nil {
		return nil, err
	}

	release, err := s.gate(ctx, t.key())
	if err != nil {
		return nil, err
	}
	defer release()

	res := reservation.NewReservation(in.UserID, t.seat.ID, t.date, t.interval, in.CommuterMargin, now)
	if err := res.Validate(); err != nil {
		return nil, err
	}

	fx := &effects{}
	err = inTx(ctx, s.txManager, func(tx transaction.Tx) error {
		if err := s.repos.Reservations.LockSeatDate(ctx, tx, t.seat.ID, t.date); err != nil {
			return fmt.Errorf("座席ロックに失敗: %w", err)
		}
		free, err := s.availability.IsSlotFree(ctx, tx, t.seat.ID, t.date, t.interval.Start, t.interval.End, "")
		if err != nil {
			return err
		}
		if !free {
			return reservation.ErrSlotTaken
		}
		if err := s.repos.Reservations.Create(ctx, tx, res); err != nil {
			return fmt.Errorf("予約の作成に失敗: %w", err)
		}
		ev := audit.NewEvent(&audit.ReservationCreated{
			Date:            res.Date.Format(time.DateOnly),
			Start:           res.Start.String(),
			End:             res.End.String(),
			CommuterMargin:  res.CommuterMargin.Enabled,
			CommuterMinutes: res.CommuterMargin.Minutes,
		}, now).ForReservation(res.ID, res.UserID, res.SeatID)
		if err := s.appendAudit(ctx, tx, ev); err != nil {
			return err
		}
		return s.recordNotice(ctx, tx, fx, confirmedNotice(res, t.seat.Label, now))
	})
	if err != nil {
		return nil, err
	}

	release()
	s.dispatcher.dispatch(ctx, fx)
	logger.Info("予約を作成", logger.ReservationID(res.ID), logger.SeatID(res.SeatID), logger.UserID(res.UserID))
	return res, nil
}

// CheckIn は受付時間内の確定予約をチェックインし、座席を在席中にする
func (s *ReservationService) CheckIn(ctx context.Context, id string, actor user.Actor) (*reservation.Reservation, error) {
	now := s.now()
	fx := &effects{}
	var res *reservation.Reservation
	err := inTx(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		if res, err = s.loadForUpdate(ctx, tx, id, actor); err != nil {
			return err
		}
		st, err := s.repos.Seats.GetByIDForUpdate(ctx, tx, res.SeatID)
		if err != nil {
			return err
		}
		if err := res.CheckIn(now, s.policy.CheckInWindow); err != nil {
			return err
		}
		if st.IsUnderMaintenance() {
			return seat.ErrSeatUnderMaintenance
		}
		occupied, err := s.repos.Reservations.CountCheckedInBySeat(ctx, tx, st.ID)
		if err != nil {
			return fmt.Errorf("在席状況の取得に失敗: %w", err)
		}
		if occupied > 0 {
			return seat.ErrSeatOccupied
		}
		if err := s.repos.Reservations.Update(ctx, tx, res); err != nil {
			return fmt.Errorf("予約の更新に失敗: %w", err)
		}
		change, err := s.syncSeat(ctx, tx, st, now)
		if err != nil {
			return err
		}
		fx.seatChanged(change)
		ev := audit.NewEvent(&audit.CheckedIn{
			CheckInAt:    now,
			MinutesEarly: int(res.StartsAt().Sub(now).Minutes()),
		}, now).ForReservation(res.ID, res.UserID, res.SeatID)
		return s.appendAudit(ctx, tx, ev)
	})
	observe("check_in", err)
	if err != nil {
		return nil, err
	}
	s.dispatcher.dispatch(ctx, fx)
	return res, nil
}

// CheckOut は在席中の予約を完了し、座席状態を再計算する
func (s *ReservationService) CheckOut(ctx context.Context, id string, actor user.Actor) (*reservation.Reservation, error) {
	now := s.now()
	fx := &effects{}
	var res *reservation.Reservation
	err := inTx(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		if res, err = s.loadForUpdate(ctx, tx, id, actor); err != nil {
			return err
		}
		st, err := s.repos.Seats.GetByIDForUpdate(ctx, tx, res.SeatID)
		if err != nil {
			return err
		}
		if err := res.CheckOut(now); err != nil {
			return err
		}
		if err := s.repos.Reservations.Update(ctx, tx, res); err != nil {
			return fmt.Errorf("予約の更新に失敗: %w", err)
		}
		change, err := s.syncSeat(ctx, tx, st, now)
		if err != nil {
			return err
		}
		fx.seatChanged(change)
		onSeat := 0
		if res.CheckInAt != nil {
			onSeat = int(now.Sub(*res.CheckInAt).Minutes())
		}
		ev := audit.NewEvent(&audit.CheckedOut{CheckOutAt: now, MinutesOnSeat: onSeat}, now).
			ForReservation(res.ID, res.UserID, res.SeatID)
		return s.appendAudit(ctx, tx, ev)
	})
	observe("check_out", err)
	if err != nil {
		return nil, err
	}
	s.dispatcher.dispatch(ctx, fx)
	return res, nil
}

// Cancel は予約をキャンセルする。在席中の予約はオペレーターのみキャンセルできる
func (s *ReservationService) Cancel(ctx context.Context, id string, actor user.Actor) (*reservation.Reservation, error) {
	now := s.now()
	fx := &effects{}
	var res *reservation.Reservation
	err := inTx(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		if res, err = s.loadForUpdate(ctx, tx, id, actor); err != nil {
			return err
		}
		previous := res.Status
		if err := res.Cancel(now); err != nil {
			return err
		}
		if previous == reservation.StatusCheckedIn && !actor.Role.CanOperate() {
			return reservation.ErrOperatorOnly
		}
		if err := s.repos.Reservations.Update(ctx, tx, res); err != nil {
			return fmt.Errorf("予約の更新に失敗: %w", err)
		}
		if previous == reservation.StatusCheckedIn {
			st, err := s.repos.Seats.GetByIDForUpdate(ctx, tx, res.SeatID)
			if err != nil {
				return err
			}
			change, err := s.syncSeat(ctx, tx, st, now)
			if err != nil {
				return err
			}
			fx.seatChanged(change)
		}
		ev := audit.NewEvent(&audit.ReservationCancelled{
			PreviousStatus: string(previous),
			ActorID:        actor.UserID,
			ActorRole:      string(actor.Role),
		}, now).ForReservation(res.ID, res.UserID, res.SeatID)
		if err := s.appendAudit(ctx, tx, ev); err != nil {
			return err
		}
		return s.recordNotice(ctx, tx, fx, cancelledNotice(res, now))
	})
	observe("cancel", err)
	if err != nil {
		return nil, err
	}
	s.dispatcher.dispatch(ctx, fx)
	logger.Info("予約をキャンセル", logger.ReservationID(res.ID), zap.String("actor", actor.UserID))
	return res, nil
}

// Extend は終了時刻を延長する。延長分の区間は自身を除いて空いている必要がある
func (s *ReservationService) Extend(ctx context.Context, in ExtendReservationInput) (*reservation.Reservation, error) {
	res, err := s.extend(ctx, in)
	observe("extend", err)
	return res, err
}

func (s *ReservationService) extend(ctx context.Context, in ExtendReservationInput) (*reservation.Reservation, error) {
	current, err := s.GetReservation(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.CanActOn(current.UserID) {
		return nil, reservation.ErrNotOwner
	}
	_, rm, err := s.seatAndRoom(ctx, current.SeatID)
	if err != nil {
		return nil, err
	}

	key := redisinfra.SeatDateKey(current.SeatID, current.Date)
	release, err := s.gate(ctx, key)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now()
	var res *reservation.Reservation
	err = inTx(ctx, s.txManager, func(tx transaction.Tx) error {
		if err := s.repos.Reservations.LockSeatDate(ctx, tx, current.SeatID, current.Date); err != nil {
			return fmt.Errorf("座席ロックに失敗: %w", err)
		}
		var err error
		if res, err = s.repos.Reservations.GetByIDForUpdate(ctx, tx, in.ReservationID); err != nil {
			return err
		}
		if redisinfra.SeatDateKey(res.SeatID, res.Date) != key {
			return reservation.ErrSlotBusy
		}
		delta, err := res.ExtensionDelta(in.NewEnd, rm.ClosesAt, s.policy.MaxDuration)
		if err != nil {
			return err
		}
		free, err := s.availability.IsSlotFree(ctx, tx, res.SeatID, res.Date, delta.Start, delta.End, res.ID)
		if err != nil {
			return err
		}
		if !free {
			return reservation.ErrSlotTaken
		}
		previousEnd := res.End
		res.ApplyExtension(in.NewEnd, now)
		if err := s.repos.Reservations.Update(ctx, tx, res); err != nil {
			return fmt.Errorf("予約の更新に失敗: %w", err)
		}
		ev := audit.NewEvent(&audit.ReservationExtended{
			PreviousEnd: previousEnd.String(),
			NewEnd:      res.End.String(),
		}, now).ForReservation(res.ID, res.UserID, res.SeatID)
		return s.appendAudit(ctx, tx, ev)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Modify は確定予約の座席・日付・時間帯を変更する（管理者用）
func (s *ReservationService) Modify(ctx context.Context, in ModifyReservationInput) (*reservation.Reservation, error) {
	res, err := s.modify(ctx, in)
	observe("modify", err)
	return res, err
}

func (s *ReservationService) modify(ctx context.Context, in ModifyReservationInput) (*reservation.Reservation, error) {
	current, err := s.GetReservation(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	if current.Status != reservation.StatusConfirmed {
		return nil, reservation.ErrInvalidTransition
	}
	seatID, date := in.SeatID, in.Date
	if seatID == "" {
		seatID = current.SeatID
	}
	if date.IsZero() {
		date = current.Date
	}

	now := s.now()
	t, err := s.resolveTarget(ctx, seatID, date, in.Start, in.End, now)
	if err != nil {
		return nil, err
	}

	sourceKey := redisinfra.SeatDateKey(current.SeatID, current.Date)
	release, err := s.gate(ctx, sourceKey, t.key())
	if err != nil {
		return nil, err
	}
	defer release()

	fx := &effects{}
	var res *reservation.Reservation
	err = inTx(ctx, s.txManager, func(tx transaction.Tx) error {
		if err := s.lockSeatDates(ctx, tx,
			seatDate{seatID: current.SeatID, date: current.Date},
			seatDate{seatID: t.seat.ID, date: t.date},
		); err != nil {
			return err
		}
		var err error
		if res, err = s.repos.Reservations.GetByIDForUpdate(ctx, tx, in.ReservationID); err != nil {
			return err
		}
		if redisinfra.SeatDateKey(res.SeatID, res.Date) != sourceKey {
			return reservation.ErrSlotBusy
		}
		free, err := s.availability.IsSlotFree(ctx, tx, t.seat.ID, t.date, t.interval.Start, t.interval.End, res.ID)
		if err != nil {
			return err
		}
		if !free {
			return reservation.ErrSlotTaken
		}
		previous := *res
		if err := res.Reschedule(t.seat.ID, t.date, t.interval, now); err != nil {
			return err
		}
		if err := s.repos.Reservations.Update(ctx, tx, res); err != nil {
			return fmt.Errorf("予約の更新に失敗: %w", err)
		}
		ev := audit.NewEvent(&audit.ReservationModified{
			PreviousSeatID: previous.SeatID,
			PreviousDate:   previous.Date.Format(time.DateOnly),
			PreviousStart:  previous.Start.String(),
			PreviousEnd:    previous.End.String(),
			SeatID:         res.SeatID,
			Date:           res.Date.Format(time.DateOnly),
			Start:          res.Start.String(),
			End:            res.End.String(),
		}, now).ForReservation(res.ID, res.UserID, res.SeatID)
		if err := s.appendAudit(ctx, tx, ev); err != nil {
			return err
		}
		return s.recordNotice(ctx, tx, fx, modifiedNotice(res, t.seat.Label, now))
	})
	if err != nil {
		return nil, err
	}
	release()
	s.dispatcher.dispatch(ctx, fx)
	return res, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return readWithRetry(ctx, func(ctx context.Context) (*reservation.Reservation, error) {
		return s.repos.Reservations.GetByID(ctx, id)
	})
}

func (s *ReservationService) GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	if limit <= 0 {
		limit = 20
	}
	return readWithRetry(ctx, func(ctx context.Context) ([]*reservation.Reservation, error) {
		return s.repos.Reservations.GetByUserID(ctx, userID, limit, offset)
	})
}

// GetUserNotifications は利用者宛ての通知を新しい順に取得する
func (s *ReservationService) GetUserNotifications(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return readWithRetry(ctx, func(ctx context.Context) ([]*notification.Notification, error) {
		return s.repos.Notifications.ListByUserID(ctx, userID, limit)
	})
}

// GetAuditTrail は予約の監査ログを取得する
func (s *ReservationService) GetAuditTrail(ctx context.Context, id string) ([]*audit.Event, error) {
	if _, err := s.GetReservation(ctx, id); err != nil {
		return nil, err
	}
	return readWithRetry(ctx, func(ctx context.Context) ([]*audit.Event, error) {
		return s.repos.Audit.ListByReservationID(ctx, id)
	})
}

// IsSlotFree はトランザクション外で空き判定を行う
func (s *ReservationService) IsSlotFree(ctx context.Context, seatID string, date time.Time, start, end slot.TimeOfDay, excludeID string) (bool, error) {
	if _, err := slot.NewInterval(start, end); err != nil {
		return false, err
	}
	return readWithRetry(ctx, func(ctx context.Context) (bool, error) {
		return s.availability.IsSlotFree(ctx, nil, seatID, s.policy.Date(date), start, end, excludeID)
	})
}

// AvailableExtensions は現在の終了時刻から延長可能な終了時刻の候補を返す
// 閉室時刻と最大利用時間を上限に、他の予約と重なる手前まで延長単位ごとに列挙する
func (s *ReservationService) AvailableExtensions(ctx context.Context, id string) ([]slot.TimeOfDay, error) {
	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.IsActive() {
		return nil, reservation.ErrInvalidTransition
	}
	_, rm, err := s.seatAndRoom(ctx, res.SeatID)
	if err != nil {
		return nil, err
	}
	limit := rm.ClosesAt
	if capped := res.Start.Add(s.policy.MaxDuration); capped < limit {
		limit = capped
	}
	busy, err := readWithRetry(ctx, func(ctx context.Context) ([]slot.Interval, error) {
		return s.availability.BusyIntervals(ctx, nil, res.SeatID, res.Date, res.ID)
	})
	if err != nil {
		return nil, err
	}

	candidates := []slot.TimeOfDay{}
	for _, block := range slot.Blocks(res.End, limit, s.policy.ExtensionStep) {
		if !slot.IsFree(block, busy) {
			break
		}
		candidates = append(candidates, block.End)
	}
	return candidates, nil
}

// resolveTarget は予約先の座席・閲覧室・時間帯を検証する
func (s *ReservationService) resolveTarget(ctx context.Context, seatID string, date time.Time, start, end slot.TimeOfDay, now time.Time) (*target, error) {
	iv, err := slot.NewInterval(start, end)
	if err != nil {
		return nil, err
	}
	st, rm, err := s.seatAndRoom(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if !rm.IsOpenDuring(iv) {
		return nil, reservation.ErrOutOfHours
	}
	day := s.policy.Date(date)
	if iv.Start.On(day).Before(now.Truncate(time.Minute)) {
		return nil, reservation.ErrSlotInPast
	}
	if iv.Duration() > s.policy.MaxDuration {
		return nil, reservation.ErrDurationExceeded
	}
	if st.IsUnderMaintenance() {
		return nil, seat.ErrSeatUnderMaintenance
	}
	return &target{seat: st, room: rm, date: day, interval: iv}, nil
}

func (s *ReservationService) seatAndRoom(ctx context.Context, seatID string) (*seat.Seat, *room.Room, error) {
	st, err := readWithRetry(ctx, func(ctx context.Context) (*seat.Seat, error) {
		return s.repos.Seats.GetByID(ctx, seatID)
	})
	if err != nil {
		return nil, nil, err
	}
	rm, err := readWithRetry(ctx, func(ctx context.Context) (*room.Room, error) {
		return s.repos.Rooms.GetByID(ctx, st.RoomID)
	})
	if err != nil {
		return nil, nil, err
	}
	return st, rm, nil
}

func (s *ReservationService) loadForUpdate(ctx context.Context, tx transaction.Tx, id string, actor user.Actor) (*reservation.Reservation, error) {
	res, err := s.repos.Reservations.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(res.UserID) {
		return nil, reservation.ErrNotOwner
	}
	return res, nil
}

// gate は Redis の分散ロックで座席・日付キーを前段で排他する
// 競合時は ErrSlotBusy、Redis 障害時はロックなしで続行する（正しさはストアのロックで保証される）
// 返す解放関数は複数回呼んでもよい（コミット後の配信前に解放する）
func (s *ReservationService) gate(ctx context.Context, keys ...string) (func(), error) {
	if s.lockManager == nil {
		return func() {}, nil
	}
	started := time.Now()
	lock, err := redisinfra.AcquireAll(ctx, s.lockManager, keys, s.policy.LockTTL, lockRetries, lockRetryDelay)
	metrics.Get().ObserveLockWait("redis", started, err)
	if err != nil {
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return nil, reservation.ErrSlotBusy
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("分散ロックを取得できないためストアのロックのみで続行", zap.Strings("keys", keys), zap.Error(err))
		return func() {}, nil
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("分散ロックの解放に失敗", zap.Strings("keys", keys), zap.Error(err))
			}
		})
	}, nil
}

type seatDate struct {
	seatID string
	date   time.Time
}

// lockSeatDates はデッドロックを避けるためキー順に座席・日付ロックを取得する
func (s *ReservationService) lockSeatDates(ctx context.Context, tx transaction.Tx, keys ...seatDate) error {
	sort.Slice(keys, func(i, j int) bool {
		return redisinfra.SeatDateKey(keys[i].seatID, keys[i].date) < redisinfra.SeatDateKey(keys[j].seatID, keys[j].date)
	})
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		key := redisinfra.SeatDateKey(k.seatID, k.date)
		if seen[key] {
			continue
		}
		seen[key] = true
		if err := s.repos.Reservations.LockSeatDate(ctx, tx, k.seatID, k.date); err != nil {
			return fmt.Errorf("座席ロックに失敗: %w", err)
		}
	}
	return nil
}

// syncSeat は在席中の予約数から座席状態を再計算し、変化があれば同じトランザクションで保存する
func (s *ReservationService) syncSeat(ctx context.Context, tx transaction.Tx, st *seat.Seat, now time.Time) (*seat.StateChange, error) {
	return syncSeatState(ctx, tx, s.repos, st, now)
}

func syncSeatState(ctx context.Context, tx transaction.Tx, repos Repositories, st *seat.Seat, now time.Time) (*seat.StateChange, error) {
	checkedIn, err := repos.Reservations.CountCheckedInBySeat(ctx, tx, st.ID)
	if err != nil {
		return nil, fmt.Errorf("在席状況の取得に失敗: %w", err)
	}
	if !st.ApplyOccupancy(checkedIn > 0) {
		return nil, nil
	}
	st.UpdatedAt = now
	if err := repos.Seats.UpdateState(ctx, tx, st); err != nil {
		return nil, fmt.Errorf("座席状態の更新に失敗: %w", err)
	}
	change := st.Change()
	return &change, nil
}

func (s *ReservationService) appendAudit(ctx context.Context, tx transaction.Tx, ev *audit.Event) error {
	return appendAudit(ctx, tx, s.repos, ev)
}

func (s *ReservationService) recordNotice(ctx context.Context, tx transaction.Tx, fx *effects, n *notification.Notification) error {
	return recordNotice(ctx, tx, s.repos, fx, n)
}

func appendAudit(ctx context.Context, tx transaction.Tx, repos Repositories, ev *audit.Event) error {
	if err := repos.Audit.Append(ctx, tx, ev); err != nil {
		return fmt.Errorf("監査ログの記録に失敗: %w", err)
	}
	return nil
}

func recordNotice(ctx context.Context, tx transaction.Tx, repos Repositories, fx *effects, n *notification.Notification) error {
	if err := repos.Notifications.Create(ctx, tx, n); err != nil {
		return fmt.Errorf("通知の記録に失敗: %w", err)
	}
	fx.notify(n)
	return nil
}
