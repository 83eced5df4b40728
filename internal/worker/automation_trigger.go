package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/application"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
)

// AutomationRunner は自動処理を1回実行するインターフェース
type AutomationRunner interface {
	Run(ctx context.Context) application.RunSummary
}

// ErrInvalidInterval は実行間隔が0以下であることを表す
var ErrInvalidInterval = errors.New("自動処理の実行間隔は正の値である必要があります")

// AutomationTrigger は一定間隔で自動処理を起動するワーカー
// 前回の実行が終わっていない場合は重ねて実行しない
type AutomationTrigger struct {
	runner    AutomationRunner
	interval  time.Duration
	scheduler gocron.Scheduler
	baseCtx   context.Context
}

// NewAutomationTrigger は新しいトリガーを作成する
func NewAutomationTrigger(runner AutomationRunner, interval time.Duration, loc *time.Location) (*AutomationTrigger, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if loc == nil {
		loc = time.UTC
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("スケジューラー作成に失敗: %w", err)
	}
	t := &AutomationTrigger{
		runner:    runner,
		interval:  interval,
		scheduler: s,
		baseCtx:   context.Background(),
	}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(t.runOnce),
		gocron.WithName("automation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("ジョブ登録に失敗: %w", err)
	}
	return t, nil
}

// Start はトリガーを開始する（ブロックしない）
func (t *AutomationTrigger) Start(ctx context.Context) {
	t.baseCtx = ctx
	logger.Info("自動処理トリガー開始", zap.Duration("interval", t.interval))
	t.scheduler.Start()
}

// Stop は実行中の処理の終了を待ってトリガーを停止する
func (t *AutomationTrigger) Stop() error {
	if err := t.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("スケジューラー停止に失敗: %w", err)
	}
	logger.Info("自動処理トリガー停止")
	return nil
}

func (t *AutomationTrigger) runOnce() {
	if t.baseCtx.Err() != nil {
		return
	}
	summary := t.runner.Run(t.baseCtx)
	if len(summary.Errors) > 0 {
		logger.Warn("自動処理で一部エラー", zap.Strings("errors", summary.Errors))
	}
}
