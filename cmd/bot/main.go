package main

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vip-access-bot/internal/bot"
	"vip-access-bot/internal/config"
	"vip-access-bot/internal/db"
	"vip-access-bot/internal/files"
	"vip-access-bot/internal/health"
	"vip-access-bot/internal/referral"
	"vip-access-bot/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.New(cfg)
	if err != nil {
		logger.Fatal("cannot connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := db.RunMigrations(database.Conn, "db_scripts/init.sql"); err != nil {
		logger.Fatal("cannot run migrations", zap.Error(err))
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("cannot create telegram bot", zap.Error(err))
	}

	// Clear any stale webhook and drop updates queued while we were down.
	if _, err := botAPI.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		logger.Fatal("cannot reset webhook", zap.Error(err))
	}

	health.Start(cfg.HealthPort, logger)

	userRepo := db.NewUserRepository(database.Conn)
	inviteRepo := db.NewInviteRepository(database.Conn)
	requestRepo := db.NewRequestRepository(database.Conn)
	claimRepo := db.NewRewardClaimRepository(database.Conn)

	fileService, err := files.NewFileService(botAPI, cfg.DocDir)
	if err != nil {
		logger.Fatal("cannot create file service", zap.Error(err))
	}

	ledger := referral.NewLedger(inviteRepo, requestRepo, claimRepo, logger)

	botService := bot.New(
		bot.NewTelegramClient(botAPI, logger),
		cfg,
		userRepo,
		requestRepo,
		inviteRepo,
		ledger,
		session.NewMemoryStore(),
		fileService,
		logger,
	)

	logger.Info("bot started", zap.String("username", botAPI.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	botService.Start(botAPI.GetUpdatesChan(u))
}
