package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/application"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/audit"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

type ReservationHandler struct {
	service ReservationServiceInterface
	loc     *time.Location
}

// NewReservationHandler は loc を日付指定の解釈に使う
func NewReservationHandler(s ReservationServiceInterface, loc *time.Location) *ReservationHandler {
	return &ReservationHandler{service: s, loc: loc}
}

type CommuterMarginRequest struct {
	Enabled bool `json:"enabled"`
	Minutes int  `json:"minutes" validate:"min=0,max=240"`
}

type CreateReservationRequest struct {
	UserID         string                 `json:"user_id,omitempty" example:"user-1"`
	SeatID         string                 `json:"seat_id" validate:"required" example:"seat-a1"`
	Date           string                 `json:"date" validate:"required" example:"2026-03-02"`
	Start          string                 `json:"start" validate:"required,hhmm" example:"09:00"`
	End            string                 `json:"end" validate:"required,hhmm" example:"13:00"`
	CommuterMargin *CommuterMarginRequest `json:"commuter_margin,omitempty"`
}

type ExtendReservationRequest struct {
	NewEnd string `json:"new_end" validate:"required,hhmm" example:"14:00"`
}

type ModifyReservationRequest struct {
	SeatID string `json:"seat_id,omitempty" example:"seat-a2"`
	Date   string `json:"date,omitempty" example:"2026-03-03"`
	Start  string `json:"start" validate:"required,hhmm" example:"10:00"`
	End    string `json:"end" validate:"required,hhmm" example:"12:00"`
}

type CommuterMarginResponse struct {
	Enabled bool `json:"enabled"`
	Minutes int  `json:"minutes"`
}

type ReservationResponse struct {
	ID             string                 `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID         string                 `json:"user_id" example:"user-1"`
	SeatID         string                 `json:"seat_id" example:"seat-a1"`
	Date           string                 `json:"date" example:"2026-03-02"`
	Start          string                 `json:"start" example:"09:00"`
	End            string                 `json:"end" example:"13:00"`
	Status         string                 `json:"status" example:"CONFIRMED"`
	CheckInAt      *time.Time             `json:"check_in_at,omitempty"`
	CheckOutAt     *time.Time             `json:"check_out_at,omitempty"`
	CommuterMargin CommuterMarginResponse `json:"commuter_margin"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type ExtensionsResponse struct {
	ReservationID string   `json:"reservation_id"`
	CurrentEnd    string   `json:"current_end" example:"11:00"`
	Candidates    []string `json:"candidates" example:"11:30,12:00"`
}

type AuditEventResponse struct {
	ID            string        `json:"id"`
	OccurredAt    time.Time     `json:"occurred_at"`
	Kind          string        `json:"kind" example:"PRENOTAZIONE_CREATA"`
	UserID        string        `json:"user_id,omitempty"`
	ReservationID string        `json:"reservation_id,omitempty"`
	SeatID        string        `json:"seat_id,omitempty"`
	Details       audit.Details `json:"details"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, UserID: r.UserID, SeatID: r.SeatID,
		Date: r.Date.Format(dateLayout), Start: r.Start.String(), End: r.End.String(),
		Status: string(r.Status), CheckInAt: r.CheckInAt, CheckOutAt: r.CheckOutAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		CommuterMargin: CommuterMarginResponse{Enabled: r.CommuterMargin.Enabled, Minutes: r.CommuterMargin.Minutes},
	}
}

func toReservationResponses(list []*reservation.Reservation) []ReservationResponse {
	resp := make([]ReservationResponse, len(list))
	for i, r := range list {
		resp[i] = toReservationResponse(r)
	}
	return resp
}

func toAuditEventResponse(e *audit.Event) AuditEventResponse {
	return AuditEventResponse{
		ID: e.ID, OccurredAt: e.OccurredAt, Kind: string(e.Kind),
		UserID: e.UserID, ReservationID: e.ReservationID, SeatID: e.SeatID,
		Details: e.Details,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 座席の時間帯を予約します（オペレーターは user_id で代理予約できます）
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "時間帯が既に予約済み"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req CreateReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	owner := actor.UserID
	if req.UserID != "" && req.UserID != actor.UserID {
		if !actor.Role.CanOperate() {
			return reservation.ErrNotOwner
		}
		owner = req.UserID
	}
	date, err := parseDate(req.Date, h.loc)
	if err != nil {
		return err
	}
	start, end, err := parseInterval(req.Start, req.End)
	if err != nil {
		return err
	}
	var margin reservation.CommuterMargin
	if req.CommuterMargin != nil {
		margin = reservation.CommuterMargin{Enabled: req.CommuterMargin.Enabled, Minutes: req.CommuterMargin.Minutes}
	}

	r, err := h.service.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		UserID: owner, SeatID: req.SeatID, Date: date, Start: start, End: end, CommuterMargin: margin,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// GetByID godoc
// @Summary 予約を取得
// @Description 指定IDの予約を取得します（本人またはオペレーターのみ）
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	r, err := h.visibleReservation(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// GetUserReservations godoc
// @Summary 利用者の予約一覧を取得
// @Description ログイン利用者の予約一覧を取得します（オペレーターは user_id で他の利用者を指定できます）
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "利用者ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ReservationResponse
// @Failure 403 {object} api.ErrorResponse
// @Router /reservations [get]
func (h *ReservationHandler) GetUserReservations(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	userID := actor.UserID
	if q := c.QueryParam("user_id"); q != "" && q != actor.UserID {
		if !actor.Role.CanOperate() {
			return reservation.ErrNotOwner
		}
		userID = q
	}
	list, err := h.service.GetUserReservations(c.Request().Context(), userID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponses(list))
}

// CheckIn godoc
// @Summary チェックイン
// @Description 開始時刻の前後の受付時間内にチェックインします
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "受付時間外または不正な状態"
// @Router /reservations/{id}/check-in [post]
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	r, err := h.service.CheckIn(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// CheckOut godoc
// @Summary チェックアウト
// @Description 在席中の予約を完了し、座席を解放します
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /reservations/{id}/check-out [post]
func (h *ReservationHandler) CheckOut(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	r, err := h.service.CheckOut(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルします（在席中の予約はオペレーターのみ）
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	r, err := h.service.Cancel(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Extend godoc
// @Summary 予約を延長
// @Description 終了時刻を後ろに延ばします
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Param request body ExtendReservationRequest true "新しい終了時刻"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /reservations/{id}/extend [post]
func (h *ReservationHandler) Extend(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req ExtendReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	newEnd, err := slot.ParseTimeOfDay(req.NewEnd)
	if err != nil {
		return err
	}
	r, err := h.service.Extend(c.Request().Context(), application.ExtendReservationInput{
		ReservationID: c.Param("id"), NewEnd: newEnd, Actor: actor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// AvailableExtensions godoc
// @Summary 延長可能な終了時刻
// @Description 延長単位ごとの終了時刻の候補を返します
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} ExtensionsResponse
// @Router /reservations/{id}/extensions [get]
func (h *ReservationHandler) AvailableExtensions(c echo.Context) error {
	r, err := h.visibleReservation(c)
	if err != nil {
		return err
	}
	ends, err := h.service.AvailableExtensions(c.Request().Context(), r.ID)
	if err != nil {
		return err
	}
	candidates := make([]string, len(ends))
	for i, e := range ends {
		candidates[i] = e.String()
	}
	return c.JSON(http.StatusOK, ExtensionsResponse{ReservationID: r.ID, CurrentEnd: r.End.String(), Candidates: candidates})
}

// Modify godoc
// @Summary 予約を変更（管理者）
// @Description 確定予約の座席・日付・時間帯を変更します
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Param request body ModifyReservationRequest true "変更内容"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /admin/reservations/{id} [patch]
func (h *ReservationHandler) Modify(c echo.Context) error {
	var req ModifyReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	start, end, err := parseInterval(req.Start, req.End)
	if err != nil {
		return err
	}
	in := application.ModifyReservationInput{ReservationID: c.Param("id"), SeatID: req.SeatID, Start: start, End: end}
	if req.Date != "" {
		if in.Date, err = parseDate(req.Date, h.loc); err != nil {
			return err
		}
	}
	r, err := h.service.Modify(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// AuditTrail godoc
// @Summary 予約の監査ログ（管理者）
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {array} AuditEventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /admin/reservations/{id}/audit [get]
func (h *ReservationHandler) AuditTrail(c echo.Context) error {
	events, err := h.service.GetAuditTrail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	resp := make([]AuditEventResponse, len(events))
	for i, e := range events {
		resp[i] = toAuditEventResponse(e)
	}
	return c.JSON(http.StatusOK, resp)
}

// Notifications godoc
// @Summary 自分宛ての通知一覧
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "取得件数" default(20)
// @Success 200 {array} notification.Notification
// @Router /notifications [get]
func (h *ReservationHandler) Notifications(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	list, err := h.service.GetUserNotifications(c.Request().Context(), actor.UserID, queryInt(c, "limit", 20))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*notification.Notification{}
	}
	return c.JSON(http.StatusOK, list)
}

// visibleReservation は本人またはオペレーターが参照できる予約を返す
func (h *ReservationHandler) visibleReservation(c echo.Context) (*reservation.Reservation, error) {
	actor, err := actorOf(c)
	if err != nil {
		return nil, err
	}
	r, err := h.service.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(r.UserID) {
		return nil, reservation.ErrNotOwner
	}
	return r, nil
}
