package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/room"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/seat"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   int    `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// domainError はドメインエラーと HTTP ステータスの対応
type domainError struct {
	target error
	status int
	reason string
}

// 先頭から順に errors.Is で判定する（ラップされたエラーを先に並べる）
var domainErrors = []domainError{
	{reservation.ErrReservationNotFound, http.StatusNotFound, "RESERVATION_NOT_FOUND"},
	{seat.ErrSeatNotFound, http.StatusNotFound, "SEAT_NOT_FOUND"},
	{room.ErrRoomNotFound, http.StatusNotFound, "ROOM_NOT_FOUND"},
	{user.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},

	{reservation.ErrSlotTaken, http.StatusConflict, "SLOT_TAKEN"},
	{reservation.ErrSlotBusy, http.StatusConflict, "SLOT_BUSY"},
	{reservation.ErrCheckInWindowClosed, http.StatusConflict, "CHECKIN_WINDOW_CLOSED"},
	{reservation.ErrNoShowGraceNotElapsed, http.StatusConflict, "NO_SHOW_GRACE_NOT_ELAPSED"},
	{reservation.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{seat.ErrSeatOccupied, http.StatusConflict, "SEAT_OCCUPIED"},
	{seat.ErrSeatUnderMaintenance, http.StatusConflict, "SEAT_UNDER_MAINTENANCE"},
	{seat.ErrSeatNotUnderMaintenance, http.StatusConflict, "SEAT_NOT_UNDER_MAINTENANCE"},

	{reservation.ErrInvalidRange, http.StatusBadRequest, "INVALID_RANGE"},
	{reservation.ErrOutOfHours, http.StatusBadRequest, "OUT_OF_HOURS"},
	{reservation.ErrDurationExceeded, http.StatusBadRequest, "DURATION_EXCEEDED"},
	{reservation.ErrSlotInPast, http.StatusBadRequest, "SLOT_IN_PAST"},
	{reservation.ErrInvalidCommuterMargin, http.StatusBadRequest, "INVALID_COMMUTER_MARGIN"},
	{slot.ErrInvalidTimeOfDay, http.StatusBadRequest, "INVALID_TIME_OF_DAY"},

	{reservation.ErrNotOwner, http.StatusForbidden, "NOT_OWNER"},
	{reservation.ErrOperatorOnly, http.StatusForbidden, "OPERATOR_ONLY"},
}

// Resolve はエラーから HTTP ステータス・メッセージ・理由コードを決める
func Resolve(err error) (status int, message, reason string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m, ""
		}
		return he.Code, http.StatusText(he.Code), ""
	}
	for _, d := range domainErrors {
		if errors.Is(err, d.target) {
			return d.status, err.Error(), d.reason
		}
	}
	return http.StatusInternalServerError, "内部サーバーエラー", ""
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message, reason := Resolve(err)

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{Error: message, Code: code, Reason: reason})
	}
	if err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
