package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/api/middleware"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/config"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/metrics"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/server"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Set(logger.NewLogger(cfg.Env))
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("設定が不正です", zap.Error(err))
	}

	srv, err := server.New(cfg, metrics.Init())
	if err != nil {
		logger.Fatal("サーバーの初期化に失敗しました", zap.Error(err))
	}
	defer srv.Close()

	if srv.Store != nil && cfg.Store.SeedDemo {
		logDevTokens(cfg)
	}

	// 自動処理
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	var trigger *worker.AutomationTrigger
	if cfg.Automation.Enabled {
		trigger, err = worker.NewAutomationTrigger(srv.Automation, cfg.Automation.Interval, srv.Policy.Location)
		if err != nil {
			logger.Fatal("自動処理の初期化に失敗しました", zap.Error(err))
		}
		trigger.Start(ctx)
	}

	srv.Echo.Server.ReadTimeout = cfg.Server.ReadTimeout
	srv.Echo.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Graceful shutdown
	go func() {
		logger.Info("サーバーを起動します",
			zap.String("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver),
			zap.String("timezone", srv.Policy.Location.String()),
		)
		if err := srv.Echo.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	if trigger != nil {
		if err := trigger.Stop(); err != nil {
			logger.Warn("自動処理の停止に失敗しました", zap.Error(err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

// logDevTokens はデモデータの利用者用アクセストークンを出力する
func logDevTokens(cfg *config.Config) {
	actors := []user.Actor{
		{UserID: "user-1", Role: user.RoleUser},
		{UserID: "user-2", Role: user.RoleUser},
		{UserID: "operator-1", Role: user.RoleOperator},
	}
	for _, a := range actors {
		token, err := middleware.IssueToken([]byte(cfg.Auth.JWTSecret), a, 24*time.Hour, time.Now())
		if err != nil {
			logger.Warn("開発用トークンの発行に失敗しました", zap.Error(err))
			return
		}
		logger.Info("開発用トークン", logger.UserID(a.UserID), zap.String("role", string(a.Role)), zap.String("token", token))
	}
}
