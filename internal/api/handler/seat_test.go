package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/application"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

// MockSeatService はSeatServiceInterfaceのモック
type MockSeatService struct {
	mock.Mock
}

func (m *MockSeatService) seat(args mock.Arguments) (*seat.Seat, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatService) GetSeat(ctx context.Context, id string) (*seat.Seat, error) {
	return m.seat(m.Called(ctx, id))
}

func (m *MockSeatService) ListRooms(ctx context.Context) ([]*room.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*room.Room), args.Error(1)
}

func (m *MockSeatService) GetSeatsByRoom(ctx context.Context, roomID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatService) GetAvailability(ctx context.Context, seatID string, date time.Time) (*application.SeatAvailability, error) {
	args := m.Called(ctx, seatID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.SeatAvailability), args.Error(1)
}

func (m *MockSeatService) StartMaintenance(ctx context.Context, seatID string) (*seat.Seat, error) {
	return m.seat(m.Called(ctx, seatID))
}

func (m *MockSeatService) EndMaintenance(ctx context.Context, seatID string) (*seat.Seat, error) {
	return m.seat(m.Called(ctx, seatID))
}

func sampleSeat(state seat.State) *seat.Seat {
	return &seat.Seat{
		ID: "S1", RoomID: "room-1", Label: "A1", State: state,
		Features: seat.Features{PowerOutlet: true, Accessible: true},
	}
}

func TestSeatHandler_ListRooms(t *testing.T) {
	e := NewTestEcho()
	mockService := new(MockSeatService)
	mockService.On("ListRooms", mock.Anything).Return([]*room.Room{
		{ID: "room-1", Name: "Sala Studio A", OpensAt: slot.MustParse("08:00"), ClosesAt: slot.MustParse("20:00"), Capacity: 2},
	}, nil)
	h := NewSeatHandler(mockService, cet)

	c, rec := newContext(e, http.MethodGet, "/api/v1/rooms", "", &alice)

	require.NoError(t, h.ListRooms(c))
	var resp []RoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "08:00", resp[0].OpensAt)
	assert.Equal(t, "20:00", resp[0].ClosesAt)
}

func TestSeatHandler_GetByRoom(t *testing.T) {
	e := NewTestEcho()

	t.Run("座席一覧を返す", func(t *testing.T) {
		mockService := new(MockSeatService)
		mockService.On("GetSeatsByRoom", mock.Anything, "room-1").Return([]*seat.Seat{sampleSeat(seat.StateAvailable)}, nil)
		h := NewSeatHandler(mockService, cet)

		c, rec := newContext(e, http.MethodGet, "/", "", &alice)
		c.SetParamNames("id")
		c.SetParamValues("room-1")

		require.NoError(t, h.GetByRoom(c))
		var resp []SeatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "A1", resp[0].Label)
		assert.True(t, resp[0].Features.PowerOutlet)
		assert.False(t, resp[0].Features.Window)
	})

	t.Run("存在しない閲覧室", func(t *testing.T) {
		mockService := new(MockSeatService)
		mockService.On("GetSeatsByRoom", mock.Anything, "room-9").Return(nil, room.ErrRoomNotFound)
		h := NewSeatHandler(mockService, cet)

		c, _ := newContext(e, http.MethodGet, "/", "", &alice)
		c.SetParamNames("id")
		c.SetParamValues("room-9")

		assert.ErrorIs(t, h.GetByRoom(c), room.ErrRoomNotFound)
	})
}

func TestSeatHandler_GetAvailability(t *testing.T) {
	e := NewTestEcho()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, cet)
	availability := &application.SeatAvailability{
		Seat:         sampleSeat(seat.StateAvailable),
		Date:         day,
		OpeningHours: slot.Interval{Start: slot.MustParse("08:00"), End: slot.MustParse("20:00")},
		Busy:         []slot.Interval{{Start: slot.MustParse("09:00"), End: slot.MustParse("11:00")}},
		Free: []slot.Interval{
			{Start: slot.MustParse("08:00"), End: slot.MustParse("09:00")},
			{Start: slot.MustParse("11:00"), End: slot.MustParse("20:00")},
		},
	}

	t.Run("日付指定", func(t *testing.T) {
		mockService := new(MockSeatService)
		mockService.On("GetAvailability", mock.Anything, "S1", mock.MatchedBy(func(d time.Time) bool {
			return d.Equal(day)
		})).Return(availability, nil)
		h := NewSeatHandler(mockService, cet)

		c, rec := newContext(e, http.MethodGet, "/?date=2026-03-02", "", &alice)
		c.SetParamNames("id")
		c.SetParamValues("S1")

		require.NoError(t, h.GetAvailability(c))
		var resp AvailabilityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "2026-03-02", resp.Date)
		assert.Equal(t, []IntervalResponse{{Start: "09:00", End: "11:00"}}, resp.Busy)
		assert.Len(t, resp.Free, 2)
	})

	t.Run("日付省略時は当日", func(t *testing.T) {
		mockService := new(MockSeatService)
		mockService.On("GetAvailability", mock.Anything, "S1", mock.MatchedBy(func(d time.Time) bool {
			return d.Equal(day.Add(10 * time.Hour))
		})).Return(availability, nil)
		h := NewSeatHandler(mockService, cet)
		h.now = func() time.Time { return day.Add(10 * time.Hour) }

		c, _ := newContext(e, http.MethodGet, "/", "", &alice)
		c.SetParamNames("id")
		c.SetParamValues("S1")

		require.NoError(t, h.GetAvailability(c))
		mockService.AssertExpectations(t)
	})

	t.Run("日付形式不正", func(t *testing.T) {
		h := NewSeatHandler(new(MockSeatService), cet)
		c, _ := newContext(e, http.MethodGet, "/?date=tomorrow", "", &alice)

		assert.Error(t, h.GetAvailability(c))
	})
}

func TestSeatHandler_Maintenance(t *testing.T) {
	e := NewTestEcho()

	t.Run("メンテナンス開始", func(t *testing.T) {
		mockService := new(MockSeatService)
		mockService.On("StartMaintenance", mock.Anything, "S1").Return(sampleSeat(seat.StateMaintenance), nil)
		h := NewSeatHandler(mockService, cet)

		c, rec := newContext(e, http.MethodPost, "/", "", &operator)
		c.SetParamNames("id")
		c.SetParamValues("S1")

		require.NoError(t, h.StartMaintenance(c))
		assert.Contains(t, rec.Body.String(), `"state":"MAINTENANCE"`)
	})

	t.Run("在席中の座席は不可", func(t *testing.T) {
		mockService := new(MockSeatService)
		mockService.On("StartMaintenance", mock.Anything, "S1").Return(nil, seat.ErrSeatOccupied)
		h := NewSeatHandler(mockService, cet)

		c, _ := newContext(e, http.MethodPost, "/", "", &operator)
		c.SetParamNames("id")
		c.SetParamValues("S1")

		assert.ErrorIs(t, h.StartMaintenance(c), seat.ErrSeatOccupied)
	})

	t.Run("メンテナンス終了", func(t *testing.T) {
		mockService := new(MockSeatService)
		mockService.On("EndMaintenance", mock.Anything, "S1").Return(sampleSeat(seat.StateAvailable), nil)
		h := NewSeatHandler(mockService, cet)

		c, rec := newContext(e, http.MethodDelete, "/", "", &operator)
		c.SetParamNames("id")
		c.SetParamValues("S1")

		require.NoError(t, h.EndMaintenance(c))
		assert.Contains(t, rec.Body.String(), `"state":"AVAILABLE"`)
	})
}
