package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

type SeatHandler struct {
	service SeatServiceInterface
	loc     *time.Location
	now     func() time.Time
}

func NewSeatHandler(s SeatServiceInterface, loc *time.Location) *SeatHandler {
	return &SeatHandler{service: s, loc: loc, now: time.Now}
}

type RoomResponse struct {
	ID       string `json:"id" example:"room-a"`
	Name     string `json:"name" example:"Sala Studio A"`
	OpensAt  string `json:"opens_at" example:"08:00"`
	ClosesAt string `json:"closes_at" example:"20:00"`
	Capacity int    `json:"capacity" example:"12"`
}

type SeatFeaturesResponse struct {
	PowerOutlet bool `json:"power_outlet"`
	Window      bool `json:"window"`
	Accessible  bool `json:"accessible"`
}

type SeatResponse struct {
	ID       string               `json:"id" example:"seat-a1"`
	RoomID   string               `json:"room_id" example:"room-a"`
	Label    string               `json:"label" example:"A1"`
	State    string               `json:"state" example:"AVAILABLE"`
	Features SeatFeaturesResponse `json:"features"`
}

type IntervalResponse struct {
	Start string `json:"start" example:"09:00"`
	End   string `json:"end" example:"13:00"`
}

type AvailabilityResponse struct {
	Seat         SeatResponse       `json:"seat"`
	Date         string             `json:"date" example:"2026-03-02"`
	OpeningHours IntervalResponse   `json:"opening_hours"`
	Busy         []IntervalResponse `json:"busy"`
	Free         []IntervalResponse `json:"free"`
}

func toRoomResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID: r.ID, Name: r.Name, Capacity: r.Capacity,
		OpensAt: r.OpensAt.String(), ClosesAt: r.ClosesAt.String(),
	}
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{
		ID: s.ID, RoomID: s.RoomID, Label: s.Label, State: string(s.State),
		Features: SeatFeaturesResponse{
			PowerOutlet: s.Features.PowerOutlet,
			Window:      s.Features.Window,
			Accessible:  s.Features.Accessible,
		},
	}
}

func toIntervalResponses(list []slot.Interval) []IntervalResponse {
	resp := make([]IntervalResponse, len(list))
	for i, iv := range list {
		resp[i] = IntervalResponse{Start: iv.Start.String(), End: iv.End.String()}
	}
	return resp
}

// ListRooms godoc
// @Summary 閲覧室一覧
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RoomResponse
// @Router /rooms [get]
func (h *SeatHandler) ListRooms(c echo.Context) error {
	rooms, err := h.service.ListRooms(c.Request().Context())
	if err != nil {
		return err
	}
	resp := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		resp[i] = toRoomResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByRoom godoc
// @Summary 閲覧室の座席一覧
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "閲覧室ID"
// @Success 200 {array} SeatResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /rooms/{id}/seats [get]
func (h *SeatHandler) GetByRoom(c echo.Context) error {
	seats, err := h.service.GetSeatsByRoom(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary 座席を取得
// @Tags seats
// @Produce json
// @Security BearerAuth
// @Param id path string true "座席ID"
// @Success 200 {object} SeatResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /seats/{id} [get]
func (h *SeatHandler) GetByID(c echo.Context) error {
	s, err := h.service.GetSeat(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// GetAvailability godoc
// @Summary 座席の空き状況
// @Description 指定日の予約済み区間と空き区間を返します（date 省略時は当日）
// @Tags seats
// @Produce json
// @Security BearerAuth
// @Param id path string true "座席ID"
// @Param date query string false "日付 (YYYY-MM-DD)"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /seats/{id}/availability [get]
func (h *SeatHandler) GetAvailability(c echo.Context) error {
	date := h.now().In(h.loc)
	if q := c.QueryParam("date"); q != "" {
		d, err := parseDate(q, h.loc)
		if err != nil {
			return err
		}
		date = d
	}
	a, err := h.service.GetAvailability(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{
		Seat:         toSeatResponse(a.Seat),
		Date:         a.Date.Format(dateLayout),
		OpeningHours: IntervalResponse{Start: a.OpeningHours.Start.String(), End: a.OpeningHours.End.String()},
		Busy:         toIntervalResponses(a.Busy),
		Free:         toIntervalResponses(a.Free),
	})
}

// StartMaintenance godoc
// @Summary 座席をメンテナンス状態にする（管理者）
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "座席ID"
// @Success 200 {object} SeatResponse
// @Failure 409 {object} api.ErrorResponse "在席中またはメンテナンス中"
// @Router /admin/seats/{id}/maintenance [post]
func (h *SeatHandler) StartMaintenance(c echo.Context) error {
	s, err := h.service.StartMaintenance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// EndMaintenance godoc
// @Summary 座席のメンテナンスを終了する（管理者）
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "座席ID"
// @Success 200 {object} SeatResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /admin/seats/{id}/maintenance [delete]
func (h *SeatHandler) EndMaintenance(c echo.Context) error {
	s, err := h.service.EndMaintenance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}
