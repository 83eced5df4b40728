package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/api/middleware"
)

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Health      *HealthHandler
	Reservation *ReservationHandler
	Seat        *SeatHandler
	Automation  *AutomationHandler
}

// RegisterRoutes は /api/v1 配下のルートを登録する（auth は認証ミドルウェア）
func RegisterRoutes(e *echo.Echo, h Handlers, auth echo.MiddlewareFunc) {
	v1 := e.Group("/api/v1")
	v1.GET("/health", h.Health.Check)
	v1.GET("/ready", h.Health.Ready)

	rooms := v1.Group("/rooms", auth)
	rooms.GET("", h.Seat.ListRooms)
	rooms.GET("/:id/seats", h.Seat.GetByRoom)

	seats := v1.Group("/seats", auth)
	seats.GET("/:id", h.Seat.GetByID)
	seats.GET("/:id/availability", h.Seat.GetAvailability)

	reservations := v1.Group("/reservations", auth)
	reservations.POST("", h.Reservation.Create)
	reservations.GET("", h.Reservation.GetUserReservations)
	reservations.GET("/:id", h.Reservation.GetByID)
	reservations.POST("/:id/check-in", h.Reservation.CheckIn)
	reservations.POST("/:id/check-out", h.Reservation.CheckOut)
	reservations.POST("/:id/cancel", h.Reservation.Cancel)
	reservations.POST("/:id/extend", h.Reservation.Extend)
	reservations.GET("/:id/extensions", h.Reservation.AvailableExtensions)

	v1.GET("/notifications", h.Reservation.Notifications, auth)

	admin := v1.Group("/admin", auth, middleware.RequireOperator())
	admin.PATCH("/reservations/:id", h.Reservation.Modify)
	admin.GET("/reservations/:id/audit", h.Reservation.AuditTrail)
	admin.POST("/seats/:id/maintenance", h.Seat.StartMaintenance)
	admin.DELETE("/seats/:id/maintenance", h.Seat.EndMaintenance)
	admin.POST("/automation/run", h.Automation.Run)
}
