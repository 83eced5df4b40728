package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/audit"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

type AuditRepository struct{ db *sqlx.DB }

func NewAuditRepository(db *sqlx.DB) *AuditRepository { return &AuditRepository{db: db} }

// Append は監査イベントを追記する（更新・削除はしない）
func (r *AuditRepository) Append(ctx context.Context, tx transaction.Tx, e *audit.Event) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	details, err := e.MarshalDetails()
	if err != nil {
		return err
	}
	query := `INSERT INTO audit_events (occurred_at, kind, user_id, reservation_id, seat_id, loan_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err = sqlTx.QueryRowContext(ctx, query,
		e.OccurredAt, string(e.Kind), e.UserID,
		nullString(e.ReservationID), nullString(e.SeatID), nullString(e.LoanID), details,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("監査イベントの追記に失敗: %w", err)
	}
	return nil
}

type auditRow struct {
	ID            string         `db:"id"`
	OccurredAt    time.Time      `db:"occurred_at"`
	Kind          string         `db:"kind"`
	UserID        string         `db:"user_id"`
	ReservationID sql.NullString `db:"reservation_id"`
	SeatID        sql.NullString `db:"seat_id"`
	LoanID        sql.NullString `db:"loan_id"`
	Details       []byte         `db:"details"`
}

func (r *AuditRepository) ListByReservationID(ctx context.Context, reservationID string) ([]*audit.Event, error) {
	var rows []auditRow
	query := `SELECT id, occurred_at, kind, user_id, reservation_id, seat_id, loan_id, details
		FROM audit_events WHERE reservation_id = $1 ORDER BY seq`
	if err := r.db.SelectContext(ctx, &rows, query, reservationID); err != nil {
		return nil, fmt.Errorf("監査イベント取得に失敗: %w", err)
	}
	events := make([]*audit.Event, 0, len(rows))
	for _, row := range rows {
		kind := audit.Kind(row.Kind)
		details, err := audit.DecodeDetails(kind, row.Details)
		if err != nil {
			return nil, fmt.Errorf("監査イベント %s: %w", row.ID, err)
		}
		events = append(events, &audit.Event{
			ID:            row.ID,
			OccurredAt:    row.OccurredAt,
			Kind:          kind,
			UserID:        row.UserID,
			ReservationID: row.ReservationID.String,
			SeatID:        row.SeatID.String,
			LoanID:        row.LoanID.String,
			Details:       details,
		})
	}
	return events, nil
}

type NotificationRepository struct{ db *sqlx.DB }

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, tx transaction.Tx, n *notification.Notification) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	if err := n.Validate(); err != nil {
		return err
	}
	query := `INSERT INTO notifications (user_id, kind, title, message, action_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlTx.QueryRowContext(ctx, query,
		n.UserID, string(n.Kind), n.Title, n.Message, n.ActionRef, n.CreatedAt,
	).Scan(&n.ID); err != nil {
		return fmt.Errorf("通知の記録に失敗: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Exists(ctx context.Context, q notification.Query) (bool, error) {
	where, args := notificationFilter(q)
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM notifications WHERE `+where+`)`, args...); err != nil {
		return false, fmt.Errorf("通知の検索に失敗: %w", err)
	}
	return exists, nil
}

type notificationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Kind      string    `db:"kind"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	ActionRef string    `db:"action_ref"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	var rows []notificationRow
	query := `SELECT id, user_id, kind, title, message, action_ref, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("通知一覧取得に失敗: %w", err)
	}
	list := make([]*notification.Notification, len(rows))
	for i, row := range rows {
		list[i] = &notification.Notification{
			ID:        row.ID,
			UserID:    row.UserID,
			Kind:      notification.Kind(row.Kind),
			Title:     row.Title,
			Message:   row.Message,
			ActionRef: row.ActionRef,
			CreatedAt: row.CreatedAt,
		}
	}
	return list, nil
}

// notificationFilter は Query の空でない項目だけを条件にした WHERE 句を組み立てる
func notificationFilter(q notification.Query) (string, []any) {
	conds := []string{"created_at >= $1"}
	args := []any{q.Since}
	add := func(column string, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		conds = append(conds, column+" = $"+strconv.Itoa(len(args)))
	}
	add("user_id", q.UserID)
	add("kind", string(q.Kind))
	add("action_ref", q.ActionRef)
	return strings.Join(conds, " AND "), args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var (
	_ audit.Repository        = (*AuditRepository)(nil)
	_ notification.Repository = (*NotificationRepository)(nil)
)
