package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/api"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/api/handler"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/api/middleware"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/application"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/config"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/transaction"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/infrastructure/memory"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/infrastructure/postgres"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/infrastructure/rabbitmq"
	redisinfra "github.com/mariocelzo/biblioflow-app-sub000/internal/infrastructure/redis"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/logger"
	"github.com/mariocelzo/biblioflow-app-sub000/internal/pkg/metrics"
)

// Server は設定から組み立てた HTTP サーバーと自動処理一式
type Server struct {
	Echo       *echo.Echo
	Automation *application.AutomationScheduler
	Policy     application.Policy

	// どちらか一方のみ設定される
	Store *memory.Store
	DB    *sqlx.DB

	closers []func() error
}

// PolicyFrom は予約設定からポリシーを作る
func PolicyFrom(cfg config.ReservationConfig) application.Policy {
	return application.Policy{
		CheckInWindow:   cfg.CheckInWindow,
		NoShowGrace:     cfg.NoShowGrace,
		MaxDuration:     cfg.MaxDuration,
		ReminderLeadMin: cfg.ReminderLeadMin,
		ReminderLeadMax: cfg.ReminderLeadMax,
		ExtensionStep:   cfg.ExtensionStep,
		LockTTL:         cfg.LockTTL,
		Location:        cfg.Location(),
	}
}

// New は設定に従ってストア・外部連携・サービス・ルーティングを組み立てる
// m が nil の場合はメトリクスを収集しない。extra はサービスに追加で渡す
func New(cfg *config.Config, m *metrics.Metrics, extra ...application.Option) (*Server, error) {
	s := &Server{Policy: PolicyFrom(cfg.Reservation)}

	txm, repos, deps, err := s.openStore(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	opts := make([]application.Option, 0, 4+len(extra))
	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(&redisinfra.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("Redisに接続できないためストアのロックのみで動作します", zap.Error(err))
		} else {
			s.closers = append(s.closers, client.Close)
			opts = append(opts,
				application.WithLockManager(redisinfra.NewLockManager(client)),
				application.WithSeatBroadcaster(redisinfra.NewSeatBroadcaster(client)),
			)
			deps = append(deps, handler.Dependency{Name: "redis", Ping: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}})
		}
	}
	if cfg.RabbitMQ.URL != "" {
		publisher := rabbitmq.NewNotificationPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		s.closers = append(s.closers, publisher.Close)
		opts = append(opts, application.WithNotificationPublisher(publisher))
	}
	opts = append(opts, extra...)

	reservationService := application.NewReservationService(txm, repos, s.Policy, opts...)
	seatService := application.NewSeatService(txm, repos, s.Policy, opts...)
	s.Automation = application.NewAutomationScheduler(txm, repos, s.Policy, opts...)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e, m)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))
	}

	handler.RegisterRoutes(e, handler.Handlers{
		Health:      handler.NewHealthHandler(deps...),
		Reservation: handler.NewReservationHandler(reservationService, s.Policy.Location),
		Seat:        handler.NewSeatHandler(seatService, s.Policy.Location),
		Automation:  handler.NewAutomationHandler(s.Automation),
	}, middleware.JWTAuth([]byte(cfg.Auth.JWTSecret)))
	s.Echo = e

	return s, nil
}

func (s *Server) openStore(cfg *config.Config) (transaction.Manager, application.Repositories, []handler.Dependency, error) {
	loc := s.Policy.Location
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return nil, application.Repositories{}, nil, err
		}
		s.DB = db
		s.closers = append(s.closers, db.Close)
		if err := postgres.RunMigrations(db.DB, cfg.Store.MigrationsPath); err != nil {
			return nil, application.Repositories{}, nil, err
		}
		repos := application.Repositories{
			Reservations:  postgres.NewReservationRepository(db, loc),
			Seats:         postgres.NewSeatRepository(db),
			Rooms:         postgres.NewRoomRepository(db),
			Users:         postgres.NewUserRepository(db),
			Loans:         postgres.NewLoanRepository(db, loc),
			Audit:         postgres.NewAuditRepository(db),
			Notifications: postgres.NewNotificationRepository(db),
		}
		deps := []handler.Dependency{{Name: "postgres", Ping: func(ctx context.Context) error {
			return postgres.Ping(ctx, db)
		}}}
		return postgres.NewTxManager(db), repos, deps, nil

	case config.StoreMemory:
		store := memory.NewStore()
		if cfg.Store.SeedDemo {
			memory.SeedDemo(store)
		}
		s.Store = store
		repos := application.Repositories{
			Reservations:  store.Reservations(),
			Seats:         store.Seats(),
			Rooms:         store.Rooms(),
			Users:         store.Users(),
			Loans:         store.Loans(),
			Audit:         store.Audit(),
			Notifications: store.Notifications(),
		}
		return store, repos, nil, nil
	}
	return nil, application.Repositories{}, nil, fmt.Errorf("未対応のストアです: %q", cfg.Store.Driver)
}

// Close は外部接続を開いた逆順で閉じる
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
