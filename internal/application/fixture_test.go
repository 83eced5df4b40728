package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/audit"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/infrastructure/memory"
)

var cet = time.FixedZone("CET", 3600)

// dstDays は Europe/Rome の夏時間切り替え日（2026年）
func dstDays(t *testing.T) []struct {
	name string
	day  time.Time
} {
	t.Helper()
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	return []struct {
		name string
		day  time.Time
	}{
		{"夏時間開始日", time.Date(2026, 3, 29, 0, 0, 0, 0, rome)},
		{"夏時間終了日", time.Date(2026, 10, 25, 0, 0, 0, 0, rome)},
	}
}

var (
	alice    = user.Actor{UserID: "user-1", Role: user.RoleUser}
	bob      = user.Actor{UserID: "user-2", Role: user.RoleUser}
	operator = user.Actor{UserID: "operator-1", Role: user.RoleOperator}
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []*notification.Notification
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, n *notification.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, n)
	return nil
}

func (p *recordingPublisher) kinds() []notification.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]notification.Kind, 0, len(p.sent))
	for _, n := range p.sent {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	changes []seat.StateChange
}

func (b *recordingBroadcaster) Broadcast(ctx context.Context, c seat.StateChange) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, c)
	return nil
}

func (b *recordingBroadcaster) last() seat.StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.changes) == 0 {
		return seat.StateChange{}
	}
	return b.changes[len(b.changes)-1]
}

func storeRepositories(store *memory.Store) Repositories {
	return Repositories{
		Reservations:  store.Reservations(),
		Seats:         store.Seats(),
		Rooms:         store.Rooms(),
		Users:         store.Users(),
		Loans:         store.Loans(),
		Audit:         store.Audit(),
		Notifications: store.Notifications(),
	}
}

// fixture は閲覧室1つ（08:00〜20:00）、座席 S1・S2、利用者3名のストアと各サービス
type fixture struct {
	store        *memory.Store
	repos        Repositories
	clock        *testClock
	publisher    *recordingPublisher
	broadcaster  *recordingBroadcaster
	reservations *ReservationService
	seats        *SeatService
	scheduler    *AutomationScheduler
	day          time.Time
}

func testPolicy() Policy {
	p := DefaultPolicy()
	p.Location = cet
	return p
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureOn(t, time.Date(2026, 3, 2, 0, 0, 0, 0, cet), opts...)
}

// newFixtureOn は day のタイムゾーンを施設のタイムゾーンとする fixture を作る
func newFixtureOn(t *testing.T, day time.Time, opts ...Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddRoom(&room.Room{ID: "room-1", Name: "Sala A", OpensAt: slot.MustParse("08:00"), ClosesAt: slot.MustParse("20:00"), Capacity: 2})
	store.AddSeat(&seat.Seat{ID: "S1", RoomID: "room-1", Label: "A1", State: seat.StateAvailable})
	store.AddSeat(&seat.Seat{ID: "S2", RoomID: "room-1", Label: "A2", State: seat.StateAvailable})
	store.AddUser(&user.User{ID: "user-1", Role: user.RoleUser})
	store.AddUser(&user.User{ID: "user-2", Role: user.RoleUser})
	store.AddUser(&user.User{ID: "operator-1", Role: user.RoleOperator})

	policy := testPolicy()
	policy.Location = day.Location()
	f := &fixture{
		store:       store,
		repos:       storeRepositories(store),
		clock:       &testClock{t: slot.MustParse("07:00").On(day)},
		publisher:   &recordingPublisher{},
		broadcaster: &recordingBroadcaster{},
		day:         day,
	}
	all := append([]Option{
		WithClock(f.clock.Now),
		WithNotificationPublisher(f.publisher),
		WithSeatBroadcaster(f.broadcaster),
	}, opts...)
	f.reservations = NewReservationService(store, f.repos, policy, all...)
	f.seats = NewSeatService(store, f.repos, policy, all...)
	f.scheduler = NewAutomationScheduler(store, f.repos, policy, all...)
	return f
}

func (f *fixture) at(hhmm string) time.Time {
	return slot.MustParse(hhmm).On(f.day)
}

func (f *fixture) setTime(hhmm string) {
	f.clock.Set(f.at(hhmm))
}

func (f *fixture) create(userID, seatID, start, end string) (*reservation.Reservation, error) {
	return f.reservations.CreateReservation(context.Background(), CreateReservationInput{
		UserID: userID,
		SeatID: seatID,
		Date:   f.day,
		Start:  slot.MustParse(start),
		End:    slot.MustParse(end),
	})
}

func (f *fixture) mustCreate(t *testing.T, userID, seatID, start, end string) *reservation.Reservation {
	t.Helper()
	r, err := f.create(userID, seatID, start, end)
	require.NoError(t, err)
	return r
}

func (f *fixture) reservation(t *testing.T, id string) *reservation.Reservation {
	t.Helper()
	r, err := f.repos.Reservations.GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func (f *fixture) seatState(t *testing.T, id string) seat.State {
	t.Helper()
	st, err := f.repos.Seats.GetByID(context.Background(), id)
	require.NoError(t, err)
	return st.State
}

func (f *fixture) auditKinds(t *testing.T, reservationID string) []audit.Kind {
	t.Helper()
	events, err := f.repos.Audit.ListByReservationID(context.Background(), reservationID)
	require.NoError(t, err)
	kinds := make([]audit.Kind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

var errStorage = errors.New("connection reset by peer")
