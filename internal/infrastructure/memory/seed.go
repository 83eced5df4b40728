package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/loan"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
)

// AddRoom は閲覧室を登録する（ID が空の場合は採番する）
func (s *Store) AddRoom(r *room.Room) *room.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	c := *r
	s.rooms[r.ID] = &c
	return r
}

// AddSeat は座席を登録する
func (s *Store) AddSeat(st *seat.Seat) *seat.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	c := *st
	s.seats[st.ID] = &c
	return st
}

// AddUser は利用者を登録する
func (s *Store) AddUser(u *user.User) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	c := *u
	s.users[u.ID] = &c
	return u
}

// AddLoan は貸出を登録する
func (s *Store) AddLoan(l *loan.Loan) *loan.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.loans[l.ID] = cloneLoan(l)
	return l
}

// AddReservation は予約を直接登録する（初期データ用）
func (s *Store) AddReservation(r *reservation.Reservation) *reservation.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.reservations[r.ID] = cloneReservation(r)
	return r
}

// SeedDemo は開発用の閲覧室・座席・利用者を登録する
func SeedDemo(s *Store) {
	now := time.Now()
	rooms := []*room.Room{
		{ID: "room-a", Name: "Sala Studio A", OpensAt: slot.MustParse("08:00"), ClosesAt: slot.MustParse("20:00"), Capacity: 12},
		{ID: "room-b", Name: "Sala Silenziosa B", OpensAt: slot.MustParse("09:00"), ClosesAt: slot.MustParse("23:00"), Capacity: 6},
	}
	for _, r := range rooms {
		r.CreatedAt, r.UpdatedAt = now, now
		s.AddRoom(r)
		prefix := r.ID[len(r.ID)-1:]
		for i := 1; i <= r.Capacity; i++ {
			s.AddSeat(&seat.Seat{
				ID:     fmt.Sprintf("seat-%s%d", prefix, i),
				RoomID: r.ID,
				Label:  fmt.Sprintf("%s%d", strings.ToUpper(prefix), i),
				Features: seat.Features{
					PowerOutlet: i%2 == 0,
					Window:      i <= 3,
					Accessible:  i == 1,
				},
				State:     seat.StateAvailable,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}
	users := []*user.User{
		{ID: "user-1", Name: "Giulia Rossi", Email: "giulia.rossi@example.it", Role: user.RoleUser, Commuter: true},
		{ID: "user-2", Name: "Marco Bianchi", Email: "marco.bianchi@example.it", Role: user.RoleUser},
		{ID: "operator-1", Name: "Sportello", Email: "sportello@example.it", Role: user.RoleOperator},
		{ID: "admin-1", Name: "Amministrazione", Email: "admin@example.it", Role: user.RoleAdmin},
	}
	for _, u := range users {
		s.AddUser(u)
	}
}
