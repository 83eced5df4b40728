package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/audit"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/loan"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
)

var (
	ErrTxRequired = errors.New("トランザクションが必要です")
	ErrTxClosed   = errors.New("トランザクションは既に終了しています")
)

// Store はプロセス内のストア
// トランザクションは1つずつ直列に実行され（直列化可能）、書き込みは即時に反映してロールバック時に取り消す
type Store struct {
	sem chan struct{}
	mu  sync.RWMutex

	rooms         map[string]*room.Room
	seats         map[string]*seat.Seat
	users         map[string]*user.User
	reservations  map[string]*reservation.Reservation
	loans         map[string]*loan.Loan
	events        []*audit.Event
	notifications []*notification.Notification
}

func NewStore() *Store {
	return &Store{
		sem:          make(chan struct{}, 1),
		rooms:        make(map[string]*room.Room),
		seats:        make(map[string]*seat.Seat),
		users:        make(map[string]*user.User),
		reservations: make(map[string]*reservation.Reservation),
		loans:        make(map[string]*loan.Loan),
	}
}

// Tx はストアのトランザクション
type Tx struct {
	store *Store
	undo  []func()
	done  bool
}

// Begin は他のトランザクションの終了を待ってから開始する
func (s *Store) Begin(ctx context.Context) (transaction.Tx, error) {
	select {
	case s.sem <- struct{}{}:
		return &Tx{store: s}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Tx) Commit() error {
	if t.done {
		return ErrTxClosed
	}
	t.done = true
	t.undo = nil
	<-t.store.sem
	return nil
}

// Rollback は未コミットの書き込みを取り消す（終了済みの場合は何もしない）
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()
	t.undo = nil
	<-t.store.sem
	return nil
}

func (t *Tx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

// txOf は tx がこのストアの実行中トランザクションであることを確認する
func (s *Store) txOf(tx transaction.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil || t.store != s {
		return nil, ErrTxRequired
	}
	if t.done {
		return nil, ErrTxClosed
	}
	return t, nil
}

// Repositories はストアの各リポジトリ
func (s *Store) Reservations() *ReservationRepository { return &ReservationRepository{s} }
func (s *Store) Seats() *SeatRepository               { return &SeatRepository{s} }
func (s *Store) Rooms() *RoomRepository               { return &RoomRepository{s} }
func (s *Store) Users() *UserRepository               { return &UserRepository{s} }
func (s *Store) Loans() *LoanRepository               { return &LoanRepository{s} }
func (s *Store) Audit() *AuditRepository              { return &AuditRepository{s} }
func (s *Store) Notifications() *NotificationRepository {
	return &NotificationRepository{s}
}

func dayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
