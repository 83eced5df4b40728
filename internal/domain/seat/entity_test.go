package seat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeat(t *testing.T) {
	s := NewSeat("room-1", "A-12", Features{PowerOutlet: true, Window: true})

	assert.Equal(t, "room-1", s.RoomID)
	assert.Equal(t, "A-12", s.Label)
	assert.True(t, s.Features.PowerOutlet)
	assert.True(t, s.Features.Window)
	assert.False(t, s.Features.Accessible)
	assert.Equal(t, StateAvailable, s.State)
	assert.True(t, s.IsAvailable())
}

func TestSeat_ApplyOccupancy(t *testing.T) {
	tests := []struct {
		name        string
		state       State
		occupied    bool
		wantState   State
		wantChanged bool
	}{
		{"空席が在席になる", StateAvailable, true, StateOccupied, true},
		{"在席が空席に戻る", StateOccupied, false, StateAvailable, true},
		{"空席のまま", StateAvailable, false, StateAvailable, false},
		{"在席のまま", StateOccupied, true, StateOccupied, false},
		{"メンテナンス中は在席にならない", StateMaintenance, true, StateMaintenance, false},
		{"メンテナンス中は空席にならない", StateMaintenance, false, StateMaintenance, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Seat{State: tt.state}
			changed := s.ApplyOccupancy(tt.occupied)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantState, s.State)
		})
	}
}

func TestSeat_Maintenance(t *testing.T) {
	t.Run("空席をメンテナンスにできる", func(t *testing.T) {
		s := NewSeat("room-1", "A-1", Features{})
		require.NoError(t, s.StartMaintenance())
		assert.True(t, s.IsUnderMaintenance())

		require.NoError(t, s.EndMaintenance())
		assert.Equal(t, StateAvailable, s.State)
	})

	t.Run("使用中の座席はメンテナンスにできない", func(t *testing.T) {
		s := &Seat{State: StateOccupied}
		assert.ErrorIs(t, s.StartMaintenance(), ErrSeatOccupied)
		assert.Equal(t, StateOccupied, s.State)
	})

	t.Run("メンテナンス中でなければ終了できない", func(t *testing.T) {
		s := &Seat{State: StateAvailable}
		assert.ErrorIs(t, s.EndMaintenance(), ErrSeatNotUnderMaintenance)
	})

	t.Run("二重にメンテナンスにはできない", func(t *testing.T) {
		s := &Seat{State: StateMaintenance}
		assert.ErrorIs(t, s.StartMaintenance(), ErrSeatUnderMaintenance)
	})
}

func TestSeat_Validate(t *testing.T) {
	tests := []struct {
		name        string
		seat        *Seat
		expectedErr error
	}{
		{"有効な座席", &Seat{RoomID: "room-1", Label: "A-1"}, nil},
		{"閲覧室IDが空", &Seat{RoomID: "", Label: "A-1"}, ErrRoomIDRequired},
		{"ラベルが空", &Seat{RoomID: "room-1", Label: ""}, ErrSeatLabelRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seat.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
