package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
)

type AutomationHandler struct {
	runner AutomationRunnerInterface
}

func NewAutomationHandler(r AutomationRunnerInterface) *AutomationHandler {
	return &AutomationHandler{runner: r}
}

// Run godoc
// @Summary 自動処理を今すぐ実行（管理者）
// @Description リマインダー・貸出期限通知・ノーショー解放を1回実行し、件数とエラーを返します
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} application.RunSummary
// @Router /admin/automation/run [post]
func (h *AutomationHandler) Run(c echo.Context) error {
	if actor, err := actorOf(c); err == nil {
		logger.Info("自動処理を手動実行", logger.UserID(actor.UserID), zap.String("role", string(actor.Role)))
	}
	summary := h.runner.Run(c.Request().Context())
	return c.JSON(http.StatusOK, summary)
}
