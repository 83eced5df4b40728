package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
)

// RequestLogger はリクエストの構造化ログを出力するミドルウェア
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			err := next(c)
			if err != nil {
				// ステータスを確定させてから記録する
				c.Error(err)
			}

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = res.Header().Get(echo.HeaderXRequestID)
			}

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("query", req.URL.RawQuery),
				zap.Int("status", res.Status),
				zap.Int64("size", res.Size),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			}
			if actor, ok := ActorFrom(c); ok {
				fields = append(fields, logger.UserID(actor.UserID))
			}

			switch {
			case res.Status >= 500:
				if err != nil {
					fields = append(fields, zap.Error(err))
				}
				logger.Error("server error", fields...)
			case res.Status >= 400:
				if err != nil {
					fields = append(fields, zap.Error(err))
				}
				logger.Warn("client error", fields...)
			default:
				logger.Info("request completed", fields...)
			}

			return err
		}
	}
}
