package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/loan"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
)

// 閲覧室・利用者・貸出はエンジンからは読み取りのみ

type roomRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	OpensAt   int       `db:"opens_at"`
	ClosesAt  int       `db:"closes_at"`
	Capacity  int       `db:"capacity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *roomRow) toEntity() *room.Room {
	return &room.Room{
		ID:        r.ID,
		Name:      r.Name,
		OpensAt:   slot.TimeOfDay(r.OpensAt),
		ClosesAt:  slot.TimeOfDay(r.ClosesAt),
		Capacity:  r.Capacity,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type RoomRepository struct{ db *sqlx.DB }

func NewRoomRepository(db *sqlx.DB) *RoomRepository { return &RoomRepository{db: db} }

func (r *RoomRepository) GetByID(ctx context.Context, id string) (*room.Room, error) {
	var row roomRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, name, opens_at, closes_at, capacity, created_at, updated_at FROM rooms WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, room.ErrRoomNotFound
		}
		return nil, fmt.Errorf("閲覧室取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *RoomRepository) List(ctx context.Context) ([]*room.Room, error) {
	var rows []roomRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, opens_at, closes_at, capacity, created_at, updated_at FROM rooms ORDER BY name`); err != nil {
		return nil, fmt.Errorf("閲覧室一覧取得に失敗: %w", err)
	}
	rooms := make([]*room.Room, len(rows))
	for i := range rows {
		rooms[i] = rows[i].toEntity()
	}
	return rooms, nil
}

type UserRepository struct{ db *sqlx.DB }

func NewUserRepository(db *sqlx.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var row struct {
		ID       string `db:"id"`
		Name     string `db:"name"`
		Email    string `db:"email"`
		Role     string `db:"role"`
		Commuter bool   `db:"commuter"`
	}
	if err := r.db.GetContext(ctx, &row, `SELECT id, name, email, role, commuter FROM users WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("利用者取得に失敗: %w", err)
	}
	return &user.User{ID: row.ID, Name: row.Name, Email: row.Email, Role: user.Role(row.Role), Commuter: row.Commuter}, nil
}

const loanColumns = `id, user_id, book_id, book_title, borrowed_on, due_on, returned_on, status`

type loanRow struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	BookID     string     `db:"book_id"`
	BookTitle  string     `db:"book_title"`
	BorrowedOn time.Time  `db:"borrowed_on"`
	DueOn      time.Time  `db:"due_on"`
	ReturnedOn *time.Time `db:"returned_on"`
	Status     string     `db:"status"`
}

func (r *loanRow) toEntity(loc *time.Location) *loan.Loan {
	l := &loan.Loan{
		ID:         r.ID,
		UserID:     r.UserID,
		BookID:     r.BookID,
		BookTitle:  r.BookTitle,
		BorrowedOn: localDate(r.BorrowedOn, loc),
		DueOn:      localDate(r.DueOn, loc),
		Status:     loan.Status(r.Status),
	}
	if r.ReturnedOn != nil {
		returned := localDate(*r.ReturnedOn, loc)
		l.ReturnedOn = &returned
	}
	return l
}

type LoanRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

func NewLoanRepository(db *sqlx.DB, loc *time.Location) *LoanRepository {
	return &LoanRepository{db: db, loc: loc}
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*loan.Loan, error) {
	var row loanRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, fmt.Errorf("貸出取得に失敗: %w", err)
	}
	return row.toEntity(r.loc), nil
}

func (r *LoanRepository) ListActiveDueOn(ctx context.Context, date time.Time) ([]*loan.Loan, error) {
	var rows []loanRow
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = $1 AND returned_on IS NULL AND due_on = $2 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, string(loan.StatusActive), dateParam(date)); err != nil {
		return nil, fmt.Errorf("貸出一覧取得に失敗: %w", err)
	}
	loans := make([]*loan.Loan, len(rows))
	for i := range rows {
		loans[i] = rows[i].toEntity(r.loc)
	}
	return loans, nil
}

var (
	_ room.Repository = (*RoomRepository)(nil)
	_ user.Repository = (*UserRepository)(nil)
	_ loan.Repository = (*LoanRepository)(nil)
)
