package memory

import (
	"context"
	"sort"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
)

// SeatRepository は seat.Repository のメモリ実装
type SeatRepository struct {
	s *Store
}

var _ seat.Repository = (*SeatRepository)(nil)

func (repo *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	st, ok := repo.s.seats[id]
	if !ok {
		return nil, seat.ErrSeatNotFound
	}
	c := *st
	return &c, nil
}

func (repo *SeatRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*seat.Seat, error) {
	if _, err := repo.s.txOf(tx); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (repo *SeatRepository) ListByRoomID(ctx context.Context, roomID string) ([]*seat.Seat, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	list := []*seat.Seat{}
	for _, st := range repo.s.seats {
		if st.RoomID == roomID {
			c := *st
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Label < list[j].Label })
	return list, nil
}

func (repo *SeatRepository) UpdateState(ctx context.Context, tx transaction.Tx, st *seat.Seat) error {
	t, err := repo.s.txOf(tx)
	if err != nil {
		return err
	}
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()
	prev, ok := repo.s.seats[st.ID]
	if !ok {
		return seat.ErrSeatNotFound
	}
	next := *prev
	next.State = st.State
	next.UpdatedAt = st.UpdatedAt
	repo.s.seats[st.ID] = &next
	t.onRollback(func() { repo.s.seats[prev.ID] = prev })
	return nil
}

// RoomRepository は room.Repository のメモリ実装
type RoomRepository struct {
	s *Store
}

var _ room.Repository = (*RoomRepository)(nil)

func (repo *RoomRepository) GetByID(ctx context.Context, id string) (*room.Room, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	r, ok := repo.s.rooms[id]
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	c := *r
	return &c, nil
}

func (repo *RoomRepository) List(ctx context.Context) ([]*room.Room, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	list := []*room.Room{}
	for _, r := range repo.s.rooms {
		c := *r
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// UserRepository は user.Repository のメモリ実装
type UserRepository struct {
	s *Store
}

var _ user.Repository = (*UserRepository)(nil)

func (repo *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	u, ok := repo.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	c := *u
	return &c, nil
}
