package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/audit"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/loan"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/notification"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/reservation"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/metrics"
)

// 自動処理の種類
const (
	SweepReminders  = "reminders"
	SweepLoanAlerts = "loan_alerts"
	SweepNoShows    = "no_shows"
)

// RunSummary は自動処理1回分の結果
type RunSummary struct {
	RemindersSent   int      `json:"remindersSent"`
	LoanAlertsSent  int      `json:"loanAlertsSent"`
	NoShowsReleased int      `json:"noShowsReleased"`
	Errors          []string `json:"errors"`
}

// AutomationScheduler はリマインダー・返却期限アラート・無断欠席の回収を行う
// 各処理は独立しており、1つが失敗しても他は実行される
type AutomationScheduler struct {
	txManager  transaction.Manager
	repos      Repositories
	dispatcher dispatcher
	policy     Policy
	now        func() time.Time
}

func NewAutomationScheduler(txm transaction.Manager, repos Repositories, policy Policy, opts ...Option) *AutomationScheduler {
	o := buildOptions(opts)
	return &AutomationScheduler{
		txManager:  txm,
		repos:      repos,
		dispatcher: o.dispatcher(),
		policy:     policy,
		now:        o.now,
	}
}

type sweepResult struct {
	count int
	errs  []error
}

// Run は3種類の処理を並行に実行し、件数とエラーを集計する
func (s *AutomationScheduler) Run(ctx context.Context) RunSummary {
	started := time.Now()
	now := s.now()

	sweeps := []struct {
		name string
		run  func(context.Context, time.Time) (int, []error)
	}{
		{SweepReminders, s.sendCheckInReminders},
		{SweepLoanAlerts, s.sendLoanAlerts},
		{SweepNoShows, s.releaseNoShows},
	}

	results := make([]sweepResult, len(sweeps))
	var wg sync.WaitGroup
	for i, sw := range sweeps {
		wg.Add(1)
		go func(i int, run func(context.Context, time.Time) (int, []error)) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i].errs = append(results[i].errs, fmt.Errorf("panic: %v", r))
				}
			}()
			results[i].count, results[i].errs = run(ctx, now)
		}(i, sw.run)
	}
	wg.Wait()

	summary := RunSummary{Errors: []string{}}
	for i, r := range results {
		name := sweeps[i].name
		switch name {
		case SweepReminders:
			summary.RemindersSent = r.count
		case SweepLoanAlerts:
			summary.LoanAlertsSent = r.count
		case SweepNoShows:
			summary.NoShowsReleased = r.count
		}
		for _, err := range r.errs {
			summary.Errors = append(summary.Errors, name+": "+err.Error())
			logger.Error("自動処理でエラー", logger.Sweep(name), zap.Error(err))
		}
		metrics.Get().ObserveSweep(name, r.count, len(r.errs))
	}
	metrics.Get().ObserveRun(started)

	logger.Info("自動処理完了",
		zap.Int("reminders_sent", summary.RemindersSent),
		zap.Int("loan_alerts_sent", summary.LoanAlertsSent),
		zap.Int("no_shows_released", summary.NoShowsReleased),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary
}

// sendCheckInReminders は開始が [now+lead_min, now+lead_max] の確定予約にリマインダーを送る
// 同じ利用者に当日すでにリマインダーを送っている場合は送らない
func (s *AutomationScheduler) sendCheckInReminders(ctx context.Context, now time.Time) (int, []error) {
	from, to, ok := s.policy.reminderWindow(now)
	if !ok {
		return 0, nil
	}
	today := s.policy.Today(now)
	candidates, err := readWithRetry(ctx, func(ctx context.Context) ([]*reservation.Reservation, error) {
		return s.repos.Reservations.ListConfirmedStartingBetween(ctx, today, from, to)
	})
	if err != nil {
		return 0, []error{fmt.Errorf("リマインダー対象の取得に失敗: %w", err)}
	}

	sent := 0
	var errs []error
	for _, r := range candidates {
		if ctx.Err() != nil {
			return sent, append(errs, ctx.Err())
		}
		already, err := s.repos.Notifications.Exists(ctx, notification.Query{
			UserID: r.UserID,
			Kind:   notification.KindCheckInReminder,
			Since:  today,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("送信履歴の確認に失敗 (%s): %w", r.ID, err))
			continue
		}
		if already {
			continue
		}

		fx := &effects{}
		err = inTx(ctx, s.txManager, func(tx transaction.Tx) error {
			ev := audit.NewEvent(&audit.CheckInReminder{
				Start:         r.Start.String(),
				MinutesBefore: int(r.StartsAt().Sub(now).Minutes()),
			}, now).ForReservation(r.ID, r.UserID, r.SeatID)
			if err := appendAudit(ctx, tx, s.repos, ev); err != nil {
				return err
			}
			return recordNotice(ctx, tx, s.repos, fx, reminderNotice(r, s.policy.CheckInWindow, now))
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("リマインダーの記録に失敗 (%s): %w", r.ID, err))
			continue
		}
		s.dispatcher.dispatch(ctx, fx)
		sent++
	}
	return sent, errs
}

// sendLoanAlerts は返却期限が3日後・1日後の貸出に段階ごとのアラートを送る
// 同じ貸出・同じ段階のアラートは1日1回まで
func (s *AutomationScheduler) sendLoanAlerts(ctx context.Context, now time.Time) (int, []error) {
	today := s.policy.Today(now)
	sent := 0
	var errs []error
	for _, tier := range loanAlertTiers {
		due := today.AddDate(0, 0, tier.daysLeft)
		loans, err := readWithRetry(ctx, func(ctx context.Context) ([]*loan.Loan, error) {
			return s.repos.Loans.ListActiveDueOn(ctx, due)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("貸出の取得に失敗 (%s): %w", tier.kind, err))
			continue
		}
		for _, l := range loans {
			if !l.IsActive() || l.DaysUntilDue(today) != tier.daysLeft {
				continue
			}
			already, err := s.repos.Notifications.Exists(ctx, notification.Query{
				Kind:      tier.kind,
				ActionRef: loanRef(l.ID),
				Since:     today,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("送信履歴の確認に失敗 (%s): %w", l.ID, err))
				continue
			}
			if already {
				continue
			}

			fx := &effects{}
			err = inTx(ctx, s.txManager, func(tx transaction.Tx) error {
				ev := audit.NewEvent(&audit.LoanDueAlert{
					Tier:      string(tier.kind),
					DueOn:     l.DueOn.Format(time.DateOnly),
					DaysLeft:  tier.daysLeft,
					BookTitle: l.BookTitle,
				}, now).ForLoan(l.ID, l.UserID)
				if err := appendAudit(ctx, tx, s.repos, ev); err != nil {
					return err
				}
				return recordNotice(ctx, tx, s.repos, fx, loanAlertNotice(l, tier, now))
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("アラートの記録に失敗 (%s): %w", l.ID, err))
				continue
			}
			s.dispatcher.dispatch(ctx, fx)
			sent++
		}
	}
	return sent, errs
}

// releaseNoShows は開始から猶予を過ぎてもチェックインのない確定予約を無断欠席にする
// 予約ごとに個別のトランザクションで行ロックを取り、状態を再確認してから遷移させる
func (s *AutomationScheduler) releaseNoShows(ctx context.Context, now time.Time) (int, []error) {
	today := s.policy.Today(now)
	candidates, err := readWithRetry(ctx, func(ctx context.Context) ([]*reservation.Reservation, error) {
		return s.repos.Reservations.ListConfirmedUntil(ctx, today)
	})
	if err != nil {
		return 0, []error{fmt.Errorf("無断欠席候補の取得に失敗: %w", err)}
	}

	released := 0
	var errs []error
	for _, r := range candidates {
		if !r.IsNoShowCandidate(now, s.policy.NoShowGrace) {
			continue
		}
		if ctx.Err() != nil {
			return released, append(errs, ctx.Err())
		}
		ok, err := s.releaseNoShow(ctx, r.ID, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("無断欠席の処理に失敗 (%s): %w", r.ID, err))
			continue
		}
		if ok {
			released++
		}
	}
	return released, errs
}

// releaseNoShow は1件の予約を無断欠席にする。並行してチェックインされた場合は false を返す
func (s *AutomationScheduler) releaseNoShow(ctx context.Context, id string, now time.Time) (bool, error) {
	fx := &effects{}
	err := inTx(ctx, s.txManager, func(tx transaction.Tx) error {
		res, err := s.repos.Reservations.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := res.MarkNoShow(now, s.policy.NoShowGrace); err != nil {
			return err
		}
		if err := s.repos.Reservations.Update(ctx, tx, res); err != nil {
			return fmt.Errorf("予約の更新に失敗: %w", err)
		}
		st, err := s.repos.Seats.GetByIDForUpdate(ctx, tx, res.SeatID)
		if err != nil {
			return err
		}
		change, err := syncSeatState(ctx, tx, s.repos, st, now)
		if err != nil {
			return err
		}
		fx.seatChanged(change)
		ev := audit.NewEvent(&audit.NoShowReleased{
			Automatic:    true,
			Start:        res.Start.String(),
			GraceMinutes: int(s.policy.NoShowGrace.Minutes()),
		}, now).ForReservation(res.ID, res.UserID, res.SeatID)
		if err := appendAudit(ctx, tx, s.repos, ev); err != nil {
			return err
		}
		return recordNotice(ctx, tx, s.repos, fx, noShowNotice(res, s.policy.NoShowGrace, now))
	})
	if errors.Is(err, reservation.ErrInvalidTransition) {
		logger.Debug("無断欠席の対象外になったためスキップ", logger.ReservationID(id))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.dispatcher.dispatch(ctx, fx)
	logger.Info("無断欠席として座席を解放", logger.ReservationID(id))
	return true, nil
}
