package handler

import (
	"context"
	"time"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/application"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/audit"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
)

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*reservation.Reservation, error)
	GetReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error)
	CheckIn(ctx context.Context, id string, actor user.Actor) (*reservation.Reservation, error)
	CheckOut(ctx context.Context, id string, actor user.Actor) (*reservation.Reservation, error)
	Cancel(ctx context.Context, id string, actor user.Actor) (*reservation.Reservation, error)
	Extend(ctx context.Context, input application.ExtendReservationInput) (*reservation.Reservation, error)
	Modify(ctx context.Context, input application.ModifyReservationInput) (*reservation.Reservation, error)
	AvailableExtensions(ctx context.Context, id string) ([]slot.TimeOfDay, error)
	GetAuditTrail(ctx context.Context, id string) ([]*audit.Event, error)
	GetUserNotifications(ctx context.Context, userID string, limit int) ([]*notification.Notification, error)
}

// SeatServiceInterface は座席サービスのインターフェース
type SeatServiceInterface interface {
	GetSeat(ctx context.Context, id string) (*seat.Seat, error)
	ListRooms(ctx context.Context) ([]*room.Room, error)
	GetSeatsByRoom(ctx context.Context, roomID string) ([]*seat.Seat, error)
	GetAvailability(ctx context.Context, seatID string, date time.Time) (*application.SeatAvailability, error)
	StartMaintenance(ctx context.Context, seatID string) (*seat.Seat, error)
	EndMaintenance(ctx context.Context, seatID string) (*seat.Seat, error)
}

// AutomationRunnerInterface は自動処理の手動実行のインターフェース
type AutomationRunnerInterface interface {
	Run(ctx context.Context) application.RunSummary
}
