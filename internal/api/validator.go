package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/slot"
)

// CustomValidator はEcho用のカスタムバリデーター
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator は新しいバリデーターを作成する
// 独自タグ hhmm は "HH:MM" 形式の時刻を検証する
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := slot.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	return &CustomValidator{validator: v}
}

// Validate はリクエストのバリデーションを実行する
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
