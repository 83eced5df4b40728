package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

const reservationColumns = `id, user_id, seat_id, date, start_min, end_min, status, check_in_at, check_out_at, commuter_margin, commuter_minutes, created_at, updated_at`

type reservationRow struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	SeatID          string     `db:"seat_id"`
	Date            time.Time  `db:"date"`
	StartMin        int        `db:"start_min"`
	EndMin          int        `db:"end_min"`
	Status          string     `db:"status"`
	CheckInAt       *time.Time `db:"check_in_at"`
	CheckOutAt      *time.Time `db:"check_out_at"`
	CommuterMargin  bool       `db:"commuter_margin"`
	CommuterMinutes int        `db:"commuter_minutes"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (row *reservationRow) toEntity(loc *time.Location) *reservation.Reservation {
	return &reservation.Reservation{
		ID:         row.ID,
		UserID:     row.UserID,
		SeatID:     row.SeatID,
		Date:       localDate(row.Date, loc),
		Start:      slot.TimeOfDay(row.StartMin),
		End:        slot.TimeOfDay(row.EndMin),
		Status:     reservation.Status(row.Status),
		CheckInAt:  row.CheckInAt,
		CheckOutAt: row.CheckOutAt,
		CommuterMargin: reservation.CommuterMargin{
			Enabled: row.CommuterMargin,
			Minutes: row.CommuterMinutes,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// ReservationRepository は reservation.Repository の PostgreSQL 実装
// 日付は施設のタイムゾーン loc の暦日として扱う
type ReservationRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

func NewReservationRepository(db *sqlx.DB, loc *time.Location) *ReservationRepository {
	return &ReservationRepository{db: db, loc: loc}
}

func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `INSERT INTO reservations (user_id, seat_id, date, start_min, end_min, status, check_in_at, check_out_at, commuter_margin, commuter_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err = sqlTx.QueryRowContext(ctx, query,
		res.UserID, res.SeatID, dateParam(res.Date), int(res.Start), int(res.End), string(res.Status),
		res.CheckInAt, res.CheckOutAt, res.CommuterMargin.Enabled, res.CommuterMargin.Minutes,
		res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		return mapReservationError(err, "予約作成に失敗")
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	return r.get(ctx, r.db, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, sqlTx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReservationRepository) get(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*reservation.Reservation, error) {
	var row reservationRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(r.loc), nil
}

func (r *ReservationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	return r.list(ctx, r.db,
		`SELECT `+reservationColumns+` FROM reservations WHERE user_id = $1 ORDER BY date DESC, start_min DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
}

func (r *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE reservations SET seat_id = $1, date = $2, start_min = $3, end_min = $4, status = $5,
		check_in_at = $6, check_out_at = $7, updated_at = $8 WHERE id = $9`
	result, err := sqlTx.ExecContext(ctx, query,
		res.SeatID, dateParam(res.Date), int(res.Start), int(res.End), string(res.Status),
		res.CheckInAt, res.CheckOutAt, res.UpdatedAt, res.ID,
	)
	if err != nil {
		return mapReservationError(err, "予約更新に失敗")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// LockSeatDate は座席・日付のキーでトランザクション単位のアドバイザリーロックを取得する
func (r *ReservationRepository) LockSeatDate(ctx context.Context, tx transaction.Tx, seatID string, date time.Time) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	key := "seat:" + seatID + ":" + dateParam(date)
	if _, err := sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("アドバイザリーロック取得に失敗: %w", err)
	}
	return nil
}

func (r *ReservationRepository) ListActiveBySeatAndDate(ctx context.Context, tx transaction.Tx, seatID string, date time.Time) ([]*reservation.Reservation, error) {
	q, err := queryer(r.db, tx)
	if err != nil {
		return nil, err
	}
	active := make([]string, len(reservation.ActiveStatuses))
	for i, s := range reservation.ActiveStatuses {
		active[i] = string(s)
	}
	return r.list(ctx, q,
		`SELECT `+reservationColumns+` FROM reservations WHERE seat_id = $1 AND date = $2 AND status = ANY($3) ORDER BY start_min`,
		seatID, dateParam(date), pq.Array(active))
}

func (r *ReservationRepository) CountCheckedInBySeat(ctx context.Context, tx transaction.Tx, seatID string) (int, error) {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := sqlTx.GetContext(ctx, &n, `SELECT COUNT(*) FROM reservations WHERE seat_id = $1 AND status = $2`,
		seatID, string(reservation.StatusCheckedIn)); err != nil {
		return 0, fmt.Errorf("在席数の取得に失敗: %w", err)
	}
	return n, nil
}

func (r *ReservationRepository) ListConfirmedStartingBetween(ctx context.Context, date time.Time, from, to slot.TimeOfDay) ([]*reservation.Reservation, error) {
	return r.list(ctx, r.db,
		`SELECT `+reservationColumns+` FROM reservations
		WHERE status = $1 AND date = $2 AND start_min BETWEEN $3 AND $4 ORDER BY start_min, id`,
		string(reservation.StatusConfirmed), dateParam(date), int(from), int(to))
}

func (r *ReservationRepository) ListConfirmedUntil(ctx context.Context, date time.Time) ([]*reservation.Reservation, error) {
	return r.list(ctx, r.db,
		`SELECT `+reservationColumns+` FROM reservations WHERE status = $1 AND date <= $2 ORDER BY date, start_min, id`,
		string(reservation.StatusConfirmed), dateParam(date))
}

func (r *ReservationRepository) list(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity(r.loc)
	}
	return result, nil
}

// mapReservationError は排他制約違反を ErrSlotTaken に変換する
func mapReservationError(err error, msg string) error {
	switch pgCode(err) {
	case codeExclusionViolation, codeUniqueViolation:
		return reservation.ErrSlotTaken
	}
	return fmt.Errorf("%s: %w", msg, err)
}

var _ reservation.Repository = (*ReservationRepository)(nil)
