package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

var rome = time.FixedZone("CET", 3600)

func testDate() time.Time {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, rome)
}

func at(hhmm string) time.Time {
	return slot.MustParse(hhmm).On(testDate())
}

func createTestReservation(t *testing.T) *Reservation {
	t.Helper()
	iv, err := slot.NewInterval(slot.MustParse("09:00"), slot.MustParse("11:00"))
	require.NoError(t, err)
	r := NewReservation("user-1", "seat-1", testDate().Add(10*time.Hour), iv, CommuterMargin{}, at("08:00"))
	require.NoError(t, r.Validate())
	return r
}

func TestNewReservation(t *testing.T) {
	r := createTestReservation(t)

	assert.Equal(t, StatusConfirmed, r.Status)
	assert.Equal(t, testDate(), r.Date)
	assert.Equal(t, at("09:00"), r.StartsAt())
	assert.Equal(t, at("11:00"), r.EndsAt())
	assert.Nil(t, r.CheckInAt)
	assert.True(t, r.IsActive())
}

func TestReservation_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Reservation)
		want   error
	}{
		{"ユーザーID未指定", func(r *Reservation) { r.UserID = "" }, ErrUserIDRequired},
		{"座席ID未指定", func(r *Reservation) { r.SeatID = "" }, ErrSeatIDRequired},
		{"日付未指定", func(r *Reservation) { r.Date = time.Time{} }, ErrDateRequired},
		{"開始と終了が同じ", func(r *Reservation) { r.End = r.Start }, ErrInvalidRange},
		{"猶予が負の値", func(r *Reservation) { r.CommuterMargin.Minutes = -5 }, ErrInvalidCommuterMargin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createTestReservation(t)
			tt.modify(r)
			assert.ErrorIs(t, r.Validate(), tt.want)
		})
	}
}

func TestCanTransition(t *testing.T) {
	all := []Status{StatusConfirmed, StatusCheckedIn, StatusCompleted, StatusCancelled, StatusNoShow, StatusExpired}
	allowed := map[[2]Status]bool{
		{StatusConfirmed, StatusCheckedIn}: true,
		{StatusConfirmed, StatusCancelled}: true,
		{StatusConfirmed, StatusNoShow}:    true,
		{StatusCheckedIn, StatusCompleted}: true,
		{StatusCheckedIn, StatusCancelled}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusNoShow, StatusExpired} {
		assert.True(t, s.IsTerminal(), s)
	}
}

func TestReservation_CheckIn(t *testing.T) {
	window := 15 * time.Minute
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"受付開始ちょうど", at("08:45"), nil},
		{"開始時刻", at("09:00"), nil},
		{"受付終了ちょうど", at("09:15"), nil},
		{"早すぎる", at("08:44"), ErrCheckInWindowClosed},
		{"遅すぎる", at("09:16"), ErrCheckInWindowClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createTestReservation(t)
			err := r.CheckIn(tt.now, window)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, StatusConfirmed, r.Status)
				assert.Nil(t, r.CheckInAt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCheckedIn, r.Status)
			require.NotNil(t, r.CheckInAt)
			assert.Equal(t, tt.now, *r.CheckInAt)
		})
	}
}

func TestReservation_CheckIn_NotConfirmed(t *testing.T) {
	r := createTestReservation(t)
	require.NoError(t, r.Cancel(at("08:30")))

	err := r.CheckIn(at("09:00"), 15*time.Minute)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCancelled, r.Status)
}

func TestReservation_CheckOut(t *testing.T) {
	r := createTestReservation(t)
	assert.ErrorIs(t, r.CheckOut(at("10:00")), ErrInvalidTransition)

	require.NoError(t, r.CheckIn(at("09:00"), 15*time.Minute))
	require.NoError(t, r.CheckOut(at("10:30")))

	assert.Equal(t, StatusCompleted, r.Status)
	require.NotNil(t, r.CheckOutAt)
	assert.Equal(t, at("10:30"), *r.CheckOutAt)
	assert.False(t, r.IsActive())

	assert.ErrorIs(t, r.CheckOut(at("10:40")), ErrInvalidTransition)
}

func TestReservation_Cancel(t *testing.T) {
	t.Run("確定からキャンセル", func(t *testing.T) {
		r := createTestReservation(t)
		require.NoError(t, r.Cancel(at("08:00")))
		assert.Equal(t, StatusCancelled, r.Status)
	})
	t.Run("チェックイン中からキャンセル", func(t *testing.T) {
		r := createTestReservation(t)
		require.NoError(t, r.CheckIn(at("09:00"), 15*time.Minute))
		require.NoError(t, r.Cancel(at("09:30")))
		assert.Equal(t, StatusCancelled, r.Status)
	})
	t.Run("二重キャンセル", func(t *testing.T) {
		r := createTestReservation(t)
		require.NoError(t, r.Cancel(at("08:00")))
		updated := r.UpdatedAt
		assert.ErrorIs(t, r.Cancel(at("08:10")), ErrInvalidTransition)
		assert.Equal(t, updated, r.UpdatedAt)
	})
}

func TestReservation_MarkNoShow(t *testing.T) {
	grace := 15 * time.Minute

	t.Run("猶予経過前は不可", func(t *testing.T) {
		r := createTestReservation(t)
		assert.False(t, r.IsNoShowCandidate(at("09:15"), grace))
		assert.ErrorIs(t, r.MarkNoShow(at("09:15"), grace), ErrNoShowGraceNotElapsed)
		assert.Equal(t, StatusConfirmed, r.Status)
	})
	t.Run("猶予経過後は無断欠席", func(t *testing.T) {
		r := createTestReservation(t)
		assert.True(t, r.IsNoShowCandidate(at("09:16"), grace))
		require.NoError(t, r.MarkNoShow(at("09:16"), grace))
		assert.Equal(t, StatusNoShow, r.Status)
	})
	t.Run("チェックイン済みは対象外", func(t *testing.T) {
		r := createTestReservation(t)
		require.NoError(t, r.CheckIn(at("09:05"), 15*time.Minute))
		assert.False(t, r.IsNoShowCandidate(at("10:00"), grace))
		assert.ErrorIs(t, r.MarkNoShow(at("10:00"), grace), ErrInvalidTransition)
		assert.Equal(t, StatusCheckedIn, r.Status)
	})
}

func TestReservation_ExtensionDelta(t *testing.T) {
	closes := slot.MustParse("19:00")
	maxDuration := 8 * time.Hour
	tests := []struct {
		name    string
		newEnd  string
		want    slot.Interval
		wantErr error
	}{
		{"1時間延長", "12:00", slot.Interval{Start: slot.MustParse("11:00"), End: slot.MustParse("12:00")}, nil},
		{"上限ちょうど", "17:00", slot.Interval{Start: slot.MustParse("11:00"), End: slot.MustParse("17:00")}, nil},
		{"短縮は不可", "10:30", slot.Interval{}, ErrInvalidRange},
		{"同じ終了時刻は不可", "11:00", slot.Interval{}, ErrInvalidRange},
		{"上限超過", "17:30", slot.Interval{}, ErrDurationExceeded},
		{"閉室後", "19:30", slot.Interval{}, ErrOutOfHours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createTestReservation(t)
			delta, err := r.ExtensionDelta(slot.MustParse(tt.newEnd), closes, maxDuration)
			assert.Equal(t, slot.MustParse("11:00"), r.End)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, delta)
		})
	}

	t.Run("終了済みは延長不可", func(t *testing.T) {
		r := createTestReservation(t)
		require.NoError(t, r.Cancel(at("08:00")))
		_, err := r.ExtensionDelta(slot.MustParse("12:00"), closes, maxDuration)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestReservation_Reschedule(t *testing.T) {
	iv := slot.Interval{Start: slot.MustParse("14:00"), End: slot.MustParse("15:00")}
	next := testDate().AddDate(0, 0, 1)

	r := createTestReservation(t)
	require.NoError(t, r.Reschedule("seat-2", next.Add(3*time.Hour), iv, at("08:00")))
	assert.Equal(t, "seat-2", r.SeatID)
	assert.Equal(t, next, r.Date)
	assert.Equal(t, iv, r.Interval())

	r = createTestReservation(t)
	require.NoError(t, r.CheckIn(at("09:00"), 15*time.Minute))
	assert.ErrorIs(t, r.Reschedule("seat-2", next, iv, at("09:10")), ErrInvalidTransition)
	assert.Equal(t, "seat-1", r.SeatID)
}
