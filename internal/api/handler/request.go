package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/api/middleware"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
)

const dateLayout = "2006-01-02"

// actorOf は認証済みの操作主体を返す
func actorOf(c echo.Context) (user.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return user.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}
	return actor, nil
}

// bindAndValidate はリクエストボディを読み取り検証する
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	return c.Validate(req)
}

// parseDate は施設のタイムゾーンで "YYYY-MM-DD" を解析する
func parseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "日付の形式が不正です（YYYY-MM-DD）")
	}
	return d, nil
}

// parseInterval は開始・終了時刻の文字列を解析する
func parseInterval(start, end string) (slot.TimeOfDay, slot.TimeOfDay, error) {
	s, err := slot.ParseTimeOfDay(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := slot.ParseTimeOfDay(end)
	if err != nil {
		return 0, 0, err
	}
	return s, e, nil
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}
