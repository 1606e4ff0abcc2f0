package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"spacehub/internal/app/commands"
	"spacehub/internal/app/dto"
	appbooking "spacehub/internal/app/handlers/booking"
	"spacehub/internal/app/handlers/me"
	"spacehub/internal/app/middleware"
	appoutbox "spacehub/internal/app/outbox"
	"spacehub/internal/app/policies"
	"spacehub/internal/app/queries"
	"spacehub/internal/app/uow"
	"spacehub/internal/domain/escrow"
	"spacehub/internal/infra/broker/kafka"
	"spacehub/internal/infra/config"
	mongodb "spacehub/internal/infra/db/mongo"
	"spacehub/internal/infra/escrowsvc"
	"spacehub/internal/infra/fixtures"
	ginserver "spacehub/internal/infra/http/gin"
	"spacehub/internal/infra/notify"
	"spacehub/internal/infra/obs"
	infraoutbox "spacehub/internal/infra/outbox"
	"spacehub/internal/infra/pricing"
	"spacehub/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(slog.Default())
	log := obs.NewLogger(cfg.Env)
	slog.SetDefault(log)

	var (
		factory    uow.UoWFactory
		escrowRepo escrow.Repository
		box        appoutbox.Outbox
		idemStore  middleware.IdempotencyStore
		notifStore notify.Store
		wallet     policies.WalletPort
		readiness  = map[string]obs.ReadinessCheck{}
		claimStore infraoutbox.ClaimStore
		inboxStore kafka.InboxStore
	)

	switch cfg.StorageDriver {
	case "mongo":
		db, disconnect, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Error("mongo connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = disconnect(context.Background()) }()

		factory = mongodb.NewFactory(db)
		escrowRepo = mongodb.NewEscrowRepository(db)
		store := infraoutbox.NewMongoStore(db)
		box = store
		claimStore = store
		idemStore = mongodb.NewIdempotencyStore(db, cfg.IdempotencyTTL)
		notifStore = mongodb.NewNotificationStore(db)
		wallet = mongodb.NewWalletLedger(db)
		inboxStore = mongodb.NewInboxStore(db)
		readiness["mongo"] = func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		}
	default:
		factory = memory.NewFactory()
		escrowRepo = memory.NewEscrowRepository()
		box = memory.NewOutbox()
		idemStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		notifStore = memory.NewNotificationStore()
		wallet = memory.NewWallet()
	}

	if err := fixtures.Load(ctx, cfg.FixturesPath, cfg.CurrencyCode, factory, log); err != nil {
		log.Error("fixture load failed", slog.Any("error", err))
		os.Exit(1)
	}

	notifier := notify.NewInApp(notifStore, log)
	escrowPort := escrowsvc.New(escrowRepo)
	pricingEngine := pricing.NewEngine(cfg.ServiceFeePercent, cfg.CurrencyCode)
	encoder := appoutbox.JSONEventEncoder{IDGenerator: uuid.NewString}

	cmdBase := commands.NewInMemoryBus()
	commands.RegisterHandler[appbooking.RequestBookingCommand, *appbooking.RequestBookingResult](
		cmdBase, "booking.request", &appbooking.RequestBookingHandler{
			Pricing:  pricingEngine,
			Notifier: notifier,
			Outbox:   box,
			Encoder:  encoder,
		})
	commands.RegisterHandler[appbooking.CancelBookingCommand, *appbooking.CancelBookingResult](
		cmdBase, "booking.cancel", &appbooking.CancelBookingHandler{
			Escrow:   escrowPort,
			Wallet:   wallet,
			Notifier: notifier,
			Outbox:   box,
			Encoder:  encoder,
			Log:      log,
		})
	commands.RegisterHandler[appbooking.CancelGroupCommand, *appbooking.CancelGroupResult](
		cmdBase, "booking.cancel_group", &appbooking.CancelGroupHandler{
			Escrow:   escrowPort,
			Wallet:   wallet,
			Notifier: notifier,
			Outbox:   box,
			Encoder:  encoder,
			Log:      log,
		})
	cmdBus := middleware.ChainCommands(cmdBase,
		middleware.Idempotency(idemStore, middleware.JSONResultCodec{}),
		middleware.Validation(),
		middleware.OutboxFlush(box),
		middleware.Transaction(factory, nil),
	)

	qryBase := queries.NewInMemoryBus()
	queries.RegisterHandler[appbooking.GetCancellationQuoteQuery, dto.CancellationQuote](
		qryBase, "booking.cancellation_quote", &appbooking.GetCancellationQuoteHandler{UoW: factory})
	queries.RegisterHandler[appbooking.GetGroupCancellationQuoteQuery, dto.GroupCancellationQuote](
		qryBase, "booking.group_cancellation_quote", &appbooking.GetGroupCancellationQuoteHandler{UoW: factory})
	queries.RegisterHandler[me.ListMyBookingsQuery, []dto.BookingSummary](
		qryBase, "me.bookings", &me.ListMyBookingsHandler{UoW: factory})
	qryBus := middleware.ChainQueries(qryBase, middleware.QueryValidation())

	if len(cfg.KafkaBrokers) > 0 && claimStore != nil {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Error("kafka producer init failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer producer.Close()

		worker := &infraoutbox.Worker{
			Store:        claimStore,
			Publisher:    producer,
			TopicPrefix:  cfg.KafkaTopicPrefix,
			PollInterval: cfg.OutboxPollInterval,
			Log:          log,
		}
		go worker.Run(ctx)

		consumer, err := kafka.NewSettlementConsumer(
			cfg.KafkaBrokers,
			"spacehub-settlements",
			[]string{cfg.KafkaTopicPrefix + ".escrow.settlements"},
			escrowRepo,
			inboxStore,
			log,
		)
		if err != nil {
			log.Error("kafka consumer init failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer consumer.Close()
		go consumer.Run(ctx)
	}

	srv := ginserver.NewServer(cfg.HTTPAddr, ginserver.ServerDeps{
		Booking:         &ginserver.BookingHandler{Commands: cmdBus, Queries: qryBus},
		Me:              &ginserver.MeHandler{Queries: qryBus, Notifications: notifStore},
		ReadinessChecks: readiness,
		Log:             log,
		Production:      cfg.IsProduction(),
	})

	go func() {
		log.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", slog.Any("error", err))
	}
}
