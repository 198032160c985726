package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"respa-server/internal/application/notify"
	purchaseapp "respa-server/internal/application/purchase"
	sweeperapp "respa-server/internal/application/sweeper"
	redisinfra "respa-server/internal/infrastructure/cache/redis"
	"respa-server/internal/infrastructure/ceepos"
	"respa-server/internal/infrastructure/config"
	"respa-server/internal/infrastructure/mail"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
	"respa-server/internal/infrastructure/persistence/mysql"
)

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Cancel expired payments and delete their reservations once",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}

	cmd.Flags().Bool("no-lock", false, "Run without the Redis lock even when Redis is enabled")

	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	noLock, _ := cmd.Flags().GetBool("no-lock")

	logger := otelinfra.NewLogger(otelinfra.Tracer("respactl"), otelinfra.WithOutput(cmd.ErrOrStderr()))
	metrics, err := otelinfra.NewMetrics("respactl")
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	reservationRepo := mysql.NewReservationRepository(db)
	resourceRepo := mysql.NewResourceRepository(db)
	purchaseRepo := mysql.NewPurchaseRepository(db)
	txManager := mysql.NewTransactionManager(db)
	ceeposClient := ceepos.NewClient(&cfg.Ceepos, logger, metrics)

	notifyService := notify.NewNotificationApplicationService(
		mysql.NewNotificationTemplateRepository(db),
		mysql.NewUserRepository(db),
		mail.NewSender(&cfg.Mail, logger),
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

	var locker sweeperapp.Locker
	if cfg.Redis.Enabled && !noLock {
		client := redisinfra.NewClient(&cfg.Redis)
		defer client.Close()
		locker = redisinfra.NewLocker(client)
	}

	sweeper := sweeperapp.NewSweeperApplicationService(
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

	result, err := sweeper.SweepOnce(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
