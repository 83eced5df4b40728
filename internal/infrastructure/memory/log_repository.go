package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/audit"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/loan"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
)

// LoanRepository は loan.Repository のメモリ実装
type LoanRepository struct {
	s *Store
}

var _ loan.Repository = (*LoanRepository)(nil)

func cloneLoan(l *loan.Loan) *loan.Loan {
	c := *l
	if l.ReturnedOn != nil {
		t := *l.ReturnedOn
		c.ReturnedOn = &t
	}
	return &c
}

func (repo *LoanRepository) GetByID(ctx context.Context, id string) (*loan.Loan, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	l, ok := repo.s.loans[id]
	if !ok {
		return nil, loan.ErrLoanNotFound
	}
	return cloneLoan(l), nil
}

func (repo *LoanRepository) ListActiveDueOn(ctx context.Context, date time.Time) ([]*loan.Loan, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	day := dayKey(date)
	list := []*loan.Loan{}
	for _, l := range repo.s.loans {
		if l.IsActive() && dayKey(l.DueOn) == day {
			list = append(list, cloneLoan(l))
		}
	}
	return list, nil
}

// AuditRepository は audit.Repository のメモリ実装
type AuditRepository struct {
	s *Store
}

var _ audit.Repository = (*AuditRepository)(nil)

func (repo *AuditRepository) Append(ctx context.Context, tx transaction.Tx, e *audit.Event) error {
	t, err := repo.s.txOf(tx)
	if err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()
	n := len(repo.s.events)
	c := *e
	repo.s.events = append(repo.s.events, &c)
	t.onRollback(func() { repo.s.events = repo.s.events[:n] })
	return nil
}

func (repo *AuditRepository) ListByReservationID(ctx context.Context, reservationID string) ([]*audit.Event, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	list := []*audit.Event{}
	for _, e := range repo.s.events {
		if e.ReservationID == reservationID {
			c := *e
			list = append(list, &c)
		}
	}
	return list, nil
}

// NotificationRepository は notification.Repository のメモリ実装
type NotificationRepository struct {
	s *Store
}

var _ notification.Repository = (*NotificationRepository)(nil)

func (repo *NotificationRepository) Create(ctx context.Context, tx transaction.Tx, n *notification.Notification) error {
	t, err := repo.s.txOf(tx)
	if err != nil {
		return err
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()
	size := len(repo.s.notifications)
	c := *n
	repo.s.notifications = append(repo.s.notifications, &c)
	t.onRollback(func() { repo.s.notifications = repo.s.notifications[:size] })
	return nil
}

func (repo *NotificationRepository) Exists(ctx context.Context, q notification.Query) (bool, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	for _, n := range repo.s.notifications {
		if q.Matches(n) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *NotificationRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	list := []*notification.Notification{}
	for i := len(repo.s.notifications) - 1; i >= 0; i-- {
		n := repo.s.notifications[i]
		if n.UserID != userID {
			continue
		}
		c := *n
		list = append(list, &c)
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return list, nil
}
