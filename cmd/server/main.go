package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authapp "respa-server/internal/application/auth"
	"respa-server/internal/application/notify"
	purchaseapp "respa-server/internal/application/purchase"
	reservationapp "respa-server/internal/application/reservation"
	sweeperapp "respa-server/internal/application/sweeper"
	"respa-server/internal/domain/reservation"
	redisinfra "respa-server/internal/infrastructure/cache/redis"
	"respa-server/internal/infrastructure/ceepos"
	"respa-server/internal/infrastructure/config"
	"respa-server/internal/infrastructure/mail"
	"respa-server/internal/infrastructure/messaging/rabbitmq"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
	"respa-server/internal/infrastructure/persistence/mysql"
	grpcserver "respa-server/internal/presentation/grpc"
	"respa-server/internal/presentation/rest"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("respa-server: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer shutdownWithTimeout("tracer", tracerShutdown)

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	defer shutdownWithTimeout("meter", meterShutdown)

	logger := otelinfra.NewLogger(otelinfra.Tracer("respa-server"))
	metrics, err := otelinfra.NewMetrics("respa-server")
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// リポジトリ
	reservationRepo := mysql.NewReservationRepository(db)
	resourceRepo := mysql.NewResourceRepository(db)
	purchaseRepo := mysql.NewPurchaseRepository(db)
	userRepo := mysql.NewUserRepository(db)
	templateRepo := mysql.NewNotificationTemplateRepository(db)
	txManager := mysql.NewTransactionManager(db)

	// 外部サービス
	ceeposClient := ceepos.NewClient(&cfg.Ceepos, logger, metrics)
	mailer := mail.NewSender(&cfg.Mail, logger)

	var publisher reservation.EventPublisher = rabbitmq.NoopPublisher{}
	if cfg.RabbitMQ.Enabled {
		p, err := rabbitmq.Connect(&cfg.RabbitMQ, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		defer p.Close()
		publisher = p
	}

	var locker sweeperapp.Locker
	if cfg.Redis.Enabled {
		client := redisinfra.NewClient(&cfg.Redis)
		defer client.Close()
		l := redisinfra.NewLocker(client)
		if err := l.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		locker = l
	}

	// アプリケーションサービス
	authService := authapp.NewAuthApplicationService(&cfg.JWT, logger)

	notifyService := notify.NewNotificationApplicationService(
		templateRepo,
		userRepo,
		mailer,
		logger,
		metrics,
		cfg.Locale.DefaultLanguage,
		cfg.Locale.Location(),
	)

	purchaseService := purchaseapp.NewPurchaseApplicationService(
		purchaseRepo,
		reservationRepo,
		resourceRepo,
		txManager,
		ceeposClient,
		ceeposClient.Signer(),
		notifyService,
		logger,
		metrics,
		cfg.Ceepos.NotificationAddress,
	)

	reservationService := reservationapp.NewReservationApplicationService(
		reservationRepo,
		resourceRepo,
		purchaseRepo,
		txManager,
		purchaseService,
		notifyService,
		publisher,
		logger,
		metrics,
	)

	sweeperService := sweeperapp.NewSweeperApplicationService(
		purchaseRepo,
		reservationRepo,
		resourceRepo,
		purchaseService,
		locker,
		sweeperapp.Options{
			Expiration:     cfg.Payment.Expiration,
			LongExpiration: cfg.Payment.LongExpiration,
			LockTTL:        cfg.Sweeper.LockTTL,
		},
		logger,
		metrics,
	)

	// プレゼンテーション
	router, err := rest.NewRouter(
		cfg,
		logger,
		metrics,
		authService,
		reservationService,
		purchaseService,
		sweeperService,
		notifyService,
	)
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	grpcSrv, err := grpcserver.NewServer(cfg, logger, authService, reservationService, sweeperService)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		address := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info(gctx, "REST API server starting", map[string]interface{}{
			"address": address,
		})
		if err := router.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("REST API server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return grpcSrv.Start()
	})

	if cfg.Sweeper.Enabled && cfg.Payment.Enabled {
		g.Go(func() error {
			return sweeperService.Run(gctx, cfg.Sweeper.Interval)
		})
	}

	// シグナルまたはいずれかのサーバーの停止で全体を終了
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down servers", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := router.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("REST API server shutdown: %w", err))
		}
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("gRPC server shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info(context.Background(), "Servers stopped", nil)
	return nil
}

func shutdownWithTimeout(name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown %s: %v", name, err)
	}
}
