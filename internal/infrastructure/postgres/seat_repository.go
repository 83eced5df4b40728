package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

const seatColumns = `id, room_id, label, power_outlet, window_seat, accessible, state, created_at, updated_at`

type seatRow struct {
	ID          string    `db:"id"`
	RoomID      string    `db:"room_id"`
	Label       string    `db:"label"`
	PowerOutlet bool      `db:"power_outlet"`
	WindowSeat  bool      `db:"window_seat"`
	Accessible  bool      `db:"accessible"`
	State       string    `db:"state"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID:     r.ID,
		RoomID: r.RoomID,
		Label:  r.Label,
		Features: seat.Features{
			PowerOutlet: r.PowerOutlet,
			Window:      r.WindowSeat,
			Accessible:  r.Accessible,
		},
		State:     seat.State(r.State),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	return r.get(ctx, r.db, `SELECT `+seatColumns+` FROM seats WHERE id = $1`, id)
}

func (r *SeatRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*seat.Seat, error) {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, sqlTx, `SELECT `+seatColumns+` FROM seats WHERE id = $1 FOR UPDATE`, id)
}

func (r *SeatRepository) get(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*seat.Seat, error) {
	var row seatRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) ListByRoomID(ctx context.Context, roomID string) ([]*seat.Seat, error) {
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+seatColumns+` FROM seats WHERE room_id = $1 ORDER BY label`, roomID); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i := range rows {
		seats[i] = rows[i].toEntity()
	}
	return seats, nil
}

// UpdateState は座席状態を更新する（予約の遷移と同じトランザクションで呼ぶ）
func (r *SeatRepository) UpdateState(ctx context.Context, tx transaction.Tx, s *seat.Seat) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	result, err := sqlTx.ExecContext(ctx, `UPDATE seats SET state = $1, updated_at = $2 WHERE id = $3`,
		string(s.State), s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("座席状態の更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatNotFound
	}
	return nil
}

var _ seat.Repository = (*SeatRepository)(nil)
