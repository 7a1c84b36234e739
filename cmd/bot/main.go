package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance_tracker_bot/internal/app"
	"finance_tracker_bot/internal/domain/pagination"
	"finance_tracker_bot/internal/infra/config"
	idb "finance_tracker_bot/internal/infra/database"
	"finance_tracker_bot/internal/infra/logger"
	"finance_tracker_bot/internal/infra/scheduler"
	"finance_tracker_bot/internal/infra/suggester"
	"finance_tracker_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Could not load application configuration")
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"timezone":    cfg.Location.String(),
	}).Info("Finance tracker bot starting")

	if err := idb.RunMigrations(cfg.DatabaseURL); err != nil {
		mainLogger.WithError(err).Fatal("Could not apply database migrations")
	}

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established")

	companyRepo := idb.NewPostgresCompanyRepository(db)
	operationRepo := idb.NewPostgresOperationRepository(db, cfg.Location)

	windower, err := pagination.NewWindower(cfg.PaginationWindow)
	if err != nil {
		mainLogger.WithError(err).Fatal("Invalid pagination window")
	}
	keywords := suggester.NewKeywords(nil)
	clock := app.SystemClock{Location: cfg.Location}

	companyService := app.NewCompanyService(companyRepo, logger.Component("company_service"))
	operationService := app.NewOperationService(
		operationRepo,
		operationRepo,
		companyService,
		keywords,
		clock,
		windower,
		cfg.PageSize,
		logger.Component("operation_service"),
	)

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	notifier := telegram.NewNotifier(telegram.NewBotSender(bot))
	regularService := app.NewRegularService(
		operationRepo,
		operationRepo,
		companyService,
		keywords,
		notifier,
		clock,
		logger.Component("regular_service"),
	)

	regularScheduler := scheduler.NewRegularScheduler(
		regularService,
		logger.Component("scheduler"),
		cfg.Location,
		cfg.CronSpecMaterialize,
		cfg.CronSpecReminder,
	)
	if err := regularScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}
	// Catch up on regular operations missed while the bot was down.
	go regularScheduler.RunNow()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegram.NewHandlers(operationService, companyService, logger.Component("telegram")).Register(ctx, bot)
	mainLogger.Info("Handlers registered, bot and scheduler are running")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bot.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		mainLogger.Info("Shutting down")
		bot.Stop()
		regularScheduler.Stop()
		return nil
	})
	if err := g.Wait(); err != nil {
		mainLogger.WithError(err).Error("Shutdown finished with error")
	}
	mainLogger.Info("Application shut down gracefully")
}
